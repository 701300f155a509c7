package sales

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SaleReader is the read side of the sales store.
type SaleReader interface {
	MonthlySales(ctx context.Context, from, to time.Time) ([]MonthlyRecord, error)
	SaleItems(ctx context.Context, saleID string) ([]LineItem, error)
}

// ReportCache stores rendered monthly reports keyed by month and generation.
// Invalidate bumps the month's generation, so a report computed before the
// bump can only be stored under a generation nobody reads any more.
// Get reports a miss as (nil, false, nil).
type ReportCache interface {
	Generation(ctx context.Context, m Month) (int64, error)
	Get(ctx context.Context, m Month, gen int64) ([]MonthlyRecord, bool, error)
	Set(ctx context.Context, m Month, gen int64, recs []MonthlyRecord) error
	Invalidate(ctx context.Context, m Month) error
}

type Reporter struct {
	store  SaleReader
	cache  ReportCache
	loc    *time.Location
	logger *zap.Logger
}

// NewReporter builds a reporter whose month boundaries are taken in loc. A nil
// cache disables caching.
func NewReporter(store SaleReader, cache ReportCache, loc *time.Location, logger *zap.Logger) *Reporter {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{store: store, cache: cache, loc: loc, logger: logger}
}

// MonthOf returns the report month containing t.
func (r *Reporter) MonthOf(t time.Time) Month { return MonthOf(t, r.loc) }

// MonthlySales lists one summary per sale created during m, newest first.
func (r *Reporter) MonthlySales(ctx context.Context, m Month) ([]MonthlyRecord, error) {
	gen, ok := r.generation(ctx, m)
	if ok {
		recs, hit, err := r.cache.Get(ctx, m, gen)
		if err != nil {
			r.logger.Warn("report cache get", zap.String("month", m.String()), zap.Error(err))
		} else if hit {
			return recs, nil
		}
	}
	return r.load(ctx, m, gen, ok)
}

// Refresh recomputes m from storage and replaces the cached copy.
func (r *Reporter) Refresh(ctx context.Context, m Month) ([]MonthlyRecord, error) {
	gen, ok := r.generation(ctx, m)
	return r.load(ctx, m, gen, ok)
}

// generation must be read before the store query so that an invalidation
// racing the query makes the result unreachable.
func (r *Reporter) generation(ctx context.Context, m Month) (int64, bool) {
	if r.cache == nil {
		return 0, false
	}
	gen, err := r.cache.Generation(ctx, m)
	if err != nil {
		r.logger.Warn("report cache generation", zap.String("month", m.String()), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (r *Reporter) load(ctx context.Context, m Month, gen int64, cacheable bool) ([]MonthlyRecord, error) {
	from, to := m.Range(r.loc)
	recs, err := r.store.MonthlySales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := r.cache.Set(ctx, m, gen, recs); err != nil {
			r.logger.Warn("report cache set", zap.String("month", m.String()), zap.Error(err))
		}
	}
	return recs, nil
}

// Invalidate retires the cached report for the month containing t.
func (r *Reporter) Invalidate(ctx context.Context, t time.Time) {
	if r.cache == nil {
		return
	}
	m := r.MonthOf(t)
	if err := r.cache.Invalidate(ctx, m); err != nil {
		r.logger.Warn("report cache invalidate", zap.String("month", m.String()), zap.Error(err))
	}
}

// SaleItems returns the recorded lines of one sale, or ErrSaleNotFound.
func (r *Reporter) SaleItems(ctx context.Context, saleID string) ([]LineItem, error) {
	items, err := r.store.SaleItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrSaleNotFound
	}
	return items, nil
}
