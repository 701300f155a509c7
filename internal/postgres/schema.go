package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of pgxpool.Pool used to bootstrap the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		category    TEXT NOT NULL,
		price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
		image_url   TEXT NOT NULL DEFAULT '',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id             TEXT PRIMARY KEY,
		total_cents    BIGINT NOT NULL,
		payment_method TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id           TEXT PRIMARY KEY,
		sale_id      TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id   TEXT NOT NULL,
		product_name TEXT NOT NULL,
		price_cents  BIGINT NOT NULL CHECK (price_cents >= 0),
		quantity     INTEGER NOT NULL CHECK (quantity >= 1)
	)`,
	`CREATE INDEX IF NOT EXISTS sales_created_at_idx ON sales (created_at)`,
	`CREATE INDEX IF NOT EXISTS sale_items_sale_id_idx ON sale_items (sale_id)`,
}

// EnsureSchema creates the products, sales and sale_items tables if missing.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

type seedProduct struct {
	name, category string
	priceCents     int64
	imageURL       string
}

var catalogSeed = []seedProduct{
	{"FreshGlow Shampoo", "Shampoo", 24900, "https://images.unsplash.com/photo-1585386959984-a4155224a1ad?auto=format&fit=crop&w=400&q=80"},
	{"PureCare Soap", "Soap", 5500, "https://images.unsplash.com/photo-1521572267360-ee0c2909d518?auto=format&fit=crop&w=400&q=80"},
	{"HydraWash Face Wash", "Face Wash", 19900, "https://images.unsplash.com/photo-1585577529540-a8095ea25427?auto=format&fit=crop&w=400&q=80"},
	{"SilkSkin Face Cream", "Face Cream", 32900, "https://images.unsplash.com/photo-1522335789203-aabd1fc54bc9?auto=format&fit=crop&w=400&q=80"},
	{"Kinder Bites", "Kids Snacks", 14900, "https://images.unsplash.com/photo-1512058564366-18510be2db19?auto=format&fit=crop&w=400&q=80"},
	{"ChocoDelight", "Chocolate", 9900, "https://images.unsplash.com/photo-1497051788611-2c64812349a7?auto=format&fit=crop&w=400&q=80"},
}

// SeedCatalog inserts the starter catalog when the products table is empty.
// It reports whether anything was inserted.
func SeedCatalog(ctx context.Context, db Execer) (bool, error) {
	var n int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range catalogSeed {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products(id, name, category, price_cents, image_url)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), p.name, p.category, p.priceCents, p.imageURL,
		); err != nil {
			_ = tx.Rollback(ctx)
			return false, fmt.Errorf("seed product %s: %w", p.name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
