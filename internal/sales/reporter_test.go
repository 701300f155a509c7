package sales_test

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ariefcatur/go-pos-sales/internal/clock"
	"github.com/ariefcatur/go-pos-sales/internal/money"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
	"github.com/ariefcatur/go-pos-sales/internal/testutil"
)

type reportFixture struct {
	clock    *clock.Mock
	store    *testutil.Store
	cache    *testutil.Cache
	recorder *sales.Recorder
	reporter *sales.Reporter
}

func newReportFixture(t *testing.T) reportFixture {
	t.Helper()
	cat := testutil.NewCatalog(
		testutil.Product("A", "FreshGlow Shampoo", 10000),
		testutil.Product("B", "PureCare Soap", 5500),
	)
	clk := clock.NewMock(time.Time{})
	store := testutil.NewStore()
	cache := testutil.NewCache()
	logger := zaptest.NewLogger(t)
	return reportFixture{
		clock:    clk,
		store:    store,
		cache:    cache,
		recorder: sales.NewRecorder(cat, store, clk, logger),
		reporter: sales.NewReporter(store, cache, time.UTC, logger),
	}
}

func (f reportFixture) sellAt(t *testing.T, at time.Time, lines ...sales.CartLine) *sales.Receipt {
	t.Helper()
	f.clock.Set(at)
	r, err := f.recorder.RecordSale(context.Background(), lines, "cash")
	require.NoError(t, err)
	return r
}

func TestMonthlySales_OnlyThatMonthNewestFirst(t *testing.T) {
	f := newReportFixture(t)
	f.sellAt(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), sales.CartLine{ProductID: "A", Quantity: 1})
	first := f.sellAt(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "A", Quantity: 2})
	last := f.sellAt(t, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		sales.CartLine{ProductID: "A", Quantity: 1}, sales.CartLine{ProductID: "B", Quantity: 4})
	f.sellAt(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "B", Quantity: 1})

	m, err := sales.ParseMonth("2024-03")
	require.NoError(t, err)
	recs, err := f.reporter.MonthlySales(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, last.ID, recs[0].ID)
	assert.Equal(t, int64(5), recs[0].ItemCount)
	assert.Equal(t, money.FromCents(10000+4*5500), recs[0].Total)
	assert.Equal(t, first.ID, recs[1].ID)
	assert.Equal(t, int64(2), recs[1].ItemCount)
}

func TestMonthlySales_ShortMonthIncludesLastDay(t *testing.T) {
	f := newReportFixture(t)
	r := f.sellAt(t, time.Date(2023, 2, 28, 18, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "B", Quantity: 1})
	f.sellAt(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "B", Quantity: 1})

	recs, err := f.reporter.MonthlySales(context.Background(), sales.Month{Year: 2023, Month: time.February})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, r.ID, recs[0].ID)
}

func TestMonthlySales_UsesCacheUntilInvalidated(t *testing.T) {
	f := newReportFixture(t)
	march := sales.Month{Year: 2024, Month: time.March}
	f.sellAt(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "A", Quantity: 1})

	_, err := f.reporter.MonthlySales(context.Background(), march)
	require.NoError(t, err)
	_, err = f.reporter.MonthlySales(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.ReadCalls)
	assert.True(t, f.cache.Has(march))

	second := f.sellAt(t, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "B", Quantity: 1})
	f.reporter.Invalidate(context.Background(), second.CreatedAt)
	assert.Equal(t, []sales.Month{march}, f.cache.Invalidated)

	recs, err := f.reporter.MonthlySales(context.Background(), march)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, 2, f.store.ReadCalls)
}

// gatedReader reads the store on its first MonthlySales call, then holds the
// result until released.
type gatedReader struct {
	sales.SaleReader
	calls   atomic.Int32
	read    chan struct{}
	release chan struct{}
}

func (g *gatedReader) MonthlySales(ctx context.Context, from, to time.Time) ([]sales.MonthlyRecord, error) {
	recs, err := g.SaleReader.MonthlySales(ctx, from, to)
	if g.calls.Add(1) == 1 {
		close(g.read)
		<-g.release
	}
	return recs, err
}

func TestMonthlySales_SlowReadDoesNotHideLaterSale(t *testing.T) {
	f := newReportFixture(t)
	march := sales.Month{Year: 2024, Month: time.March}
	gated := &gatedReader{SaleReader: f.store, read: make(chan struct{}), release: make(chan struct{})}
	reporter := sales.NewReporter(gated, f.cache, time.UTC, zaptest.NewLogger(t))

	type result struct {
		recs []sales.MonthlyRecord
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		recs, err := reporter.MonthlySales(context.Background(), march)
		slow <- result{recs, err}
	}()
	<-gated.read

	sale := f.sellAt(t, time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "A", Quantity: 1})
	reporter.Invalidate(context.Background(), sale.CreatedAt)
	close(gated.release)

	stale := <-slow
	require.NoError(t, stale.err)
	assert.Empty(t, stale.recs)

	recs, err := reporter.MonthlySales(context.Background(), march)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, sale.ID, recs[0].ID)
	assert.True(t, f.cache.Has(march))
}

func TestMonthlySales_CheckoutsAcrossMonthBoundary(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	lines := []sales.CartLine{{ProductID: "A", Quantity: 1}}

	f.clock.Set(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	before, err := f.recorder.RecordSale(ctx, lines, "cash")
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	after, err := f.recorder.RecordSale(ctx, lines, "cash")
	require.NoError(t, err)

	march, err := f.reporter.MonthlySales(ctx, sales.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)
	april, err := f.reporter.MonthlySales(ctx, sales.Month{Year: 2024, Month: time.April})
	require.NoError(t, err)

	require.Len(t, march, 1)
	assert.Equal(t, before.ID, march[0].ID)
	require.Len(t, april, 1)
	assert.Equal(t, after.ID, april[0].ID)
}

func TestMonthlySales_CacheFailureFallsBackToStore(t *testing.T) {
	f := newReportFixture(t)
	f.cache.Err = errors.New("redis: connection refused")
	f.sellAt(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "A", Quantity: 1})

	recs, err := f.reporter.MonthlySales(context.Background(), sales.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestMonthlySales_StoreFailure(t *testing.T) {
	f := newReportFixture(t)
	f.store.ReadErr = errors.New("timeout")

	_, err := f.reporter.MonthlySales(context.Background(), sales.Month{Year: 2024, Month: time.March})
	assert.Error(t, err)
}

func TestMonthlySales_ReportLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	store := testutil.NewStore()
	clk := clock.NewMock(time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)) // 1 April 01:30 IST
	rec := sales.NewRecorder(testutil.NewCatalog(testutil.Product("A", "Soap", 100)), store, clk, nil)
	_, err := rec.RecordSale(context.Background(), []sales.CartLine{{ProductID: "A", Quantity: 1}}, "cash")
	require.NoError(t, err)

	reporter := sales.NewReporter(store, nil, loc, nil)
	march, err := reporter.MonthlySales(context.Background(), sales.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)
	april, err := reporter.MonthlySales(context.Background(), sales.Month{Year: 2024, Month: time.April})
	require.NoError(t, err)

	assert.Empty(t, march)
	assert.Len(t, april, 1)
	assert.Equal(t, sales.Month{Year: 2024, Month: time.April}, reporter.MonthOf(clk.Now()))
}

func TestSaleItems_RoundTrip(t *testing.T) {
	f := newReportFixture(t)
	r := f.sellAt(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		sales.CartLine{ProductID: "B", Quantity: 3}, sales.CartLine{ProductID: "A", Quantity: 0})

	items, err := f.reporter.SaleItems(context.Background(), r.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var total money.Money
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	assert.Equal(t, r.Total, total)
	assert.Equal(t, "FreshGlow Shampoo", items[0].Name)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 3, items[1].Quantity)
}

func TestSaleItems_NotFound(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.reporter.SaleItems(context.Background(), "missing")
	assert.ErrorIs(t, err, sales.ErrSaleNotFound)
}

func TestDelimitedText_ReparsesToSameTotals(t *testing.T) {
	f := newReportFixture(t)
	f.sellAt(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "B", Quantity: 3})
	f.sellAt(t, time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC), sales.CartLine{ProductID: "A", Quantity: 1})

	recs, err := f.reporter.MonthlySales(context.Background(), sales.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)

	text, err := sales.ToDelimitedText(recs)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(recs)+1)
	assert.Equal(t, []string{"Sale ID", "Total", "Payment Method", "Created At", "Items"}, rows[0])
	for i, rec := range recs {
		row := rows[i+1]
		assert.Equal(t, rec.ID, row[0])
		parsed, err := money.Parse(row[1])
		require.NoError(t, err)
		assert.Equal(t, rec.Total, parsed)
		assert.Equal(t, rec.Total.String(), row[1])
	}
}
