package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/ariefcatur/go-pos-sales/internal/money"
)

type RepoTestSuite struct {
	suite.Suite
	mock  pgxmock.PgxPoolIface
	repo  *Repo
	ctx   context.Context
	sale  Sale
	items []SaleItem
}

func (s *RepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = &Repo{DB: mock}
	s.ctx = context.Background()

	s.items = []SaleItem{
		{ID: "i-1", SaleID: "s-1", ProductID: "A", ProductName: "FreshGlow Shampoo", Price: money.FromCents(10000), Quantity: 2},
		{ID: "i-2", SaleID: "s-1", ProductID: "B", ProductName: "PureCare Soap", Price: money.FromCents(5500), Quantity: 1},
	}
	s.sale = Sale{
		ID:            "s-1",
		Total:         money.FromCents(25500),
		PaymentMethod: "cash",
		CreatedAt:     time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func (s *RepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RepoTestSuite))
}

func (s *RepoTestSuite) expectSaleInsert() *pgxmock.ExpectedExec {
	return s.mock.ExpectExec(`INSERT INTO sales\(id, total_cents, payment_method, created_at\)`).
		WithArgs(s.sale.ID, int64(25500), "cash", s.sale.CreatedAt)
}

func (s *RepoTestSuite) expectItemInsert(it SaleItem) *pgxmock.ExpectedExec {
	return s.mock.ExpectExec(`INSERT INTO sale_items\(id, sale_id, product_id, product_name, price_cents, quantity\)`).
		WithArgs(it.ID, s.sale.ID, it.ProductID, it.ProductName, it.Price.Cents(), it.Quantity)
}

func (s *RepoTestSuite) TestCreateSale_CommitsSaleAndItems() {
	s.mock.ExpectBegin()
	s.expectSaleInsert().WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.expectItemInsert(s.items[0]).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.expectItemInsert(s.items[1]).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.CreateSale(s.ctx, s.sale, s.items))
}

func (s *RepoTestSuite) TestCreateSale_ItemFailureRollsBack() {
	s.mock.ExpectBegin()
	s.expectSaleInsert().WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.expectItemInsert(s.items[0]).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.expectItemInsert(s.items[1]).WillReturnError(errors.New("violates check constraint"))
	s.mock.ExpectRollback()

	err := s.repo.CreateSale(s.ctx, s.sale, s.items)
	s.ErrorContains(err, "insert sale item B")
}

func (s *RepoTestSuite) TestCreateSale_SaleFailureRollsBack() {
	s.mock.ExpectBegin()
	s.expectSaleInsert().WillReturnError(errors.New("duplicate key"))
	s.mock.ExpectRollback()

	err := s.repo.CreateSale(s.ctx, s.sale, s.items)
	s.ErrorContains(err, "insert sale")
}

func (s *RepoTestSuite) TestCreateSale_CommitFailure() {
	s.mock.ExpectBegin()
	s.expectSaleInsert().WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.expectItemInsert(s.items[0]).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.expectItemInsert(s.items[1]).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := s.repo.CreateSale(s.ctx, s.sale, s.items)
	s.ErrorContains(err, "commit sale s-1")
}

func (s *RepoTestSuite) TestCreateSale_RejectsMismatchedTotalWithoutTouchingDB() {
	s.sale.Total = money.FromCents(1)

	err := s.repo.CreateSale(s.ctx, s.sale, s.items)
	s.ErrorContains(err, "does not match")
}

func (s *RepoTestSuite) TestCreateSale_RejectsEmptyItems() {
	err := s.repo.CreateSale(s.ctx, s.sale, nil)
	s.ErrorIs(err, ErrEmptyCart)
}

func (s *RepoTestSuite) TestMonthlySales() {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(`(?s)SELECT s.id, s.total_cents, s.payment_method, s.created_at,.*COALESCE\(SUM\(si.quantity\), 0\).*WHERE s.created_at >= \$1 AND s.created_at < \$2.*ORDER BY s.created_at DESC`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "total_cents", "payment_method", "created_at", "item_count"}).
			AddRow("s-2", int64(20000), "qr", later, int64(2)).
			AddRow("s-1", int64(5500), "cash", earlier, int64(0)))

	recs, err := s.repo.MonthlySales(s.ctx, from, to)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(MonthlyRecord{ID: "s-2", Total: money.FromCents(20000), PaymentMethod: "qr", CreatedAt: later, ItemCount: 2}, recs[0])
	s.Equal(int64(0), recs[1].ItemCount)
}

func (s *RepoTestSuite) TestMonthlySales_QueryError() {
	s.mock.ExpectQuery(`FROM sales s`).WillReturnError(errors.New("canceling statement"))

	_, err := s.repo.MonthlySales(s.ctx, time.Now(), time.Now())
	s.ErrorContains(err, "monthly sales")
}

func (s *RepoTestSuite) TestSaleItems() {
	s.mock.ExpectQuery(`SELECT product_id, product_name, price_cents, quantity\s+FROM sale_items\s+WHERE sale_id = \$1\s+ORDER BY product_name`).
		WithArgs("s-1").
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "product_name", "price_cents", "quantity"}).
			AddRow("A", "FreshGlow Shampoo", int64(10000), 2).
			AddRow("B", "PureCare Soap", int64(5500), 1))

	items, err := s.repo.SaleItems(s.ctx, "s-1")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(LineItem{ProductID: "A", Name: "FreshGlow Shampoo", Price: money.FromCents(10000), Quantity: 2, LineTotal: money.FromCents(20000)}, items[0])
}

func (s *RepoTestSuite) TestSaleItems_Unknown() {
	s.mock.ExpectQuery(`FROM sale_items`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "product_name", "price_cents", "quantity"}))

	items, err := s.repo.SaleItems(s.ctx, "nope")
	s.NoError(err)
	s.Empty(items)
}
