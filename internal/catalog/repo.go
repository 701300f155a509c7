package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-pos-sales/internal/money"
)

// Querier is satisfied by *pgxpool.Pool and pgxmock pools.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo is the read-only view of the catalog.
type Repo struct{ DB Querier }

const productColumns = `id, name, category, price_cents, image_url, active, created_at`

// ActiveProduct returns the product only when it exists and is sellable.
func (r *Repo) ActiveProduct(ctx context.Context, id string) (Product, error) {
	return r.one(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 AND active`, id)
}

// Get returns a product regardless of its active flag.
func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	return r.one(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) one(ctx context.Context, sql, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		cents int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &cents, &p.ImageURL, &p.Active, &p.CreatedAt); err != nil {
		return Product{}, err
	}
	p.Price = money.FromCents(cents)
	return p, nil
}
