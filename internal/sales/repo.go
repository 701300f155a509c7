package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ariefcatur/go-pos-sales/internal/money"
)

// DB is the subset of *pgxpool.Pool used by Repo; pgxmock pools satisfy it too.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repo struct{ DB DB }

// CreateSale inserts the sale row and every item row in a single transaction.
// On any failure the transaction is rolled back and no row survives.
func (r *Repo) CreateSale(ctx context.Context, sale Sale, items []SaleItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	if got := Total(items); got != sale.Total {
		return fmt.Errorf("sale %s total %s does not match items %s", sale.ID, sale.Total, got)
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := insertSale(ctx, tx, sale, items); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sale %s: %w", sale.ID, err)
	}
	return nil
}

func insertSale(ctx context.Context, tx pgx.Tx, sale Sale, items []SaleItem) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO sales(id, total_cents, payment_method, created_at)
		VALUES ($1, $2, $3, $4)`,
		sale.ID, sale.Total.Cents(), sale.PaymentMethod, sale.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sale_items(id, sale_id, product_id, product_name, price_cents, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, sale.ID, it.ProductID, it.ProductName, it.Price.Cents(), it.Quantity,
		); err != nil {
			return fmt.Errorf("insert sale item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

// MonthlySales summarises sales created in [from, to), newest first.
func (r *Repo) MonthlySales(ctx context.Context, from, to time.Time) ([]MonthlyRecord, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.id, s.total_cents, s.payment_method, s.created_at,
		       COALESCE(SUM(si.quantity), 0) AS item_count
		  FROM sales s
		  LEFT JOIN sale_items si ON si.sale_id = s.id
		 WHERE s.created_at >= $1 AND s.created_at < $2
		 GROUP BY s.id
		 ORDER BY s.created_at DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	defer rows.Close()

	out := []MonthlyRecord{}
	for rows.Next() {
		var (
			rec   MonthlyRecord
			cents int64
		)
		if err := rows.Scan(&rec.ID, &cents, &rec.PaymentMethod, &rec.CreatedAt, &rec.ItemCount); err != nil {
			return nil, err
		}
		rec.Total = money.FromCents(cents)
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaleItems returns the frozen lines of a sale ordered by product name.
func (r *Repo) SaleItems(ctx context.Context, saleID string) ([]LineItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, product_name, price_cents, quantity
		  FROM sale_items
		 WHERE sale_id = $1
		 ORDER BY product_name`, saleID)
	if err != nil {
		return nil, fmt.Errorf("sale items %s: %w", saleID, err)
	}
	defer rows.Close()

	out := []LineItem{}
	for rows.Next() {
		var (
			li    LineItem
			cents int64
		)
		if err := rows.Scan(&li.ProductID, &li.Name, &cents, &li.Quantity); err != nil {
			return nil, err
		}
		li.Price = money.FromCents(cents)
		li.LineTotal = li.Price.Times(li.Quantity)
		out = append(out, li)
	}
	return out, rows.Err()
}
