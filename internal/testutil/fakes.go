// Package testutil holds in-memory stand-ins for the catalog, the sales store
// and the report cache.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/go-pos-sales/internal/catalog"
	"github.com/ariefcatur/go-pos-sales/internal/money"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

type Catalog struct {
	mu       sync.Mutex
	products map[string]catalog.Product
	Err      error
}

func NewCatalog(ps ...catalog.Product) *Catalog {
	c := &Catalog{products: map[string]catalog.Product{}}
	for _, p := range ps {
		c.Put(p)
	}
	return c
}

func (c *Catalog) Put(p catalog.Product) {
	c.mu.Lock()
	c.products[p.ID] = p
	c.mu.Unlock()
}

// Reprice edits a product in place, as an admin would after a sale.
func (c *Catalog) Reprice(id, name string, price money.Money) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[id]
	p.Name = name
	p.Price = price
	c.products[id] = p
}

func (c *Catalog) ActiveProduct(_ context.Context, id string) (catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return catalog.Product{}, c.Err
	}
	p, ok := c.products[id]
	if !ok || !p.Active {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (c *Catalog) Get(_ context.Context, id string) (catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (c *Catalog) List(_ context.Context) ([]catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Store is an in-memory sales store that writes a sale and its items together.
type Store struct {
	mu        sync.Mutex
	sales     map[string]sales.Sale
	items     map[string][]sales.SaleItem
	WriteErr  error
	ReadErr   error
	ReadCalls int
}

func NewStore() *Store {
	return &Store{sales: map[string]sales.Sale{}, items: map[string][]sales.SaleItem{}}
}

func (s *Store) CreateSale(_ context.Context, sale sales.Sale, items []sales.SaleItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.sales[sale.ID] = sale
	s.items[sale.ID] = append([]sales.SaleItem(nil), items...)
	return nil
}

// Counts returns the number of stored sale and item rows.
func (s *Store) Counts() (salesRows, itemRows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, its := range s.items {
		itemRows += len(its)
	}
	return len(s.sales), itemRows
}

func (s *Store) Sale(id string) (sales.Sale, []sales.SaleItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	return sale, s.items[id], ok
}

func (s *Store) MonthlySales(_ context.Context, from, to time.Time) ([]sales.MonthlyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReadCalls++
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	out := []sales.MonthlyRecord{}
	for id, sale := range s.sales {
		if sale.CreatedAt.Before(from) || !sale.CreatedAt.Before(to) {
			continue
		}
		var n int64
		for _, it := range s.items[id] {
			n += int64(it.Quantity)
		}
		out = append(out, sales.MonthlyRecord{
			ID:            sale.ID,
			Total:         sale.Total,
			PaymentMethod: sale.PaymentMethod,
			CreatedAt:     sale.CreatedAt,
			ItemCount:     n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SaleItems(_ context.Context, saleID string) ([]sales.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	out := []sales.LineItem{}
	for _, it := range s.items[saleID] {
		out = append(out, sales.LineItem{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.Price,
			Quantity:  it.Quantity,
			LineTotal: it.Price.Times(it.Quantity),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Cache is an in-memory sales.ReportCache. Like the Redis one, Invalidate
// only bumps the generation; entries of older generations stay behind.
type Cache struct {
	mu          sync.Mutex
	gens        map[sales.Month]int64
	entries     map[cacheKey][]sales.MonthlyRecord
	Err         error
	Invalidated []sales.Month
}

type cacheKey struct {
	month sales.Month
	gen   int64
}

func NewCache() *Cache {
	return &Cache{gens: map[sales.Month]int64{}, entries: map[cacheKey][]sales.MonthlyRecord{}}
}

func (c *Cache) Generation(_ context.Context, m sales.Month) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.gens[m], nil
}

func (c *Cache) Get(_ context.Context, m sales.Month, gen int64) ([]sales.MonthlyRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, false, c.Err
	}
	recs, ok := c.entries[cacheKey{m, gen}]
	return recs, ok, nil
}

func (c *Cache) Set(_ context.Context, m sales.Month, gen int64, recs []sales.MonthlyRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.entries[cacheKey{m, gen}] = recs
	return nil
}

func (c *Cache) Invalidate(_ context.Context, m sales.Month) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidated = append(c.Invalidated, m)
	if c.Err != nil {
		return c.Err
	}
	c.gens[m]++
	return nil
}

// Has reports whether m is cached under its current generation.
func (c *Cache) Has(m sales.Month) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[cacheKey{m, c.gens[m]}]
	return ok
}

// Product builds an active catalog product priced in cents.
func Product(id, name string, cents int64) catalog.Product {
	return catalog.Product{ID: id, Name: name, Category: "General", Price: money.FromCents(cents), Active: true}
}
