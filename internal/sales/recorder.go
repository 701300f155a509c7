package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-pos-sales/internal/catalog"
	"github.com/ariefcatur/go-pos-sales/internal/clock"
	"github.com/ariefcatur/go-pos-sales/internal/money"
)

// Catalog resolves a product id to its current sellable state.
// Missing and inactive products both report catalog.ErrNotFound.
type Catalog interface {
	ActiveProduct(ctx context.Context, id string) (catalog.Product, error)
}

// SaleWriter persists a sale and all of its items atomically.
type SaleWriter interface {
	CreateSale(ctx context.Context, sale Sale, items []SaleItem) error
}

type Recorder struct {
	catalog Catalog
	store   SaleWriter
	clock   clock.Clock
	logger  *zap.Logger
	newID   func() string
}

func NewRecorder(cat Catalog, store SaleWriter, clk clock.Clock, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		catalog: cat,
		store:   store,
		clock:   clk,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// RecordSale prices every cart line from the catalog, totals them and writes
// the sale with its items in one transaction. Any unavailable product rejects
// the whole cart before anything is written.
func (r *Recorder) RecordSale(ctx context.Context, lines []CartLine, paymentMethod string) (*Receipt, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	sale := Sale{
		ID:            r.newID(),
		PaymentMethod: normalizePaymentMethod(paymentMethod),
	}
	items := make([]SaleItem, 0, len(lines))
	receiptLines := make([]LineItem, 0, len(lines))

	for _, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" {
			return nil, productUnavailable(line.ProductID)
		}
		p, err := r.catalog.ActiveProduct(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, productUnavailable(id)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", id, err)
		}
		if !p.Active {
			return nil, productUnavailable(id)
		}

		qty := int(line.Quantity.Clamp())
		lineTotal := p.Price.Times(qty)
		sale.Total = sale.Total.Add(lineTotal)

		items = append(items, SaleItem{
			ID:          r.newID(),
			SaleID:      sale.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    qty,
		})
		receiptLines = append(receiptLines, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
			LineTotal: lineTotal,
		})
	}

	// TIMESTAMPTZ keeps microseconds; the receipt must match the stored row
	sale.CreatedAt = r.clock.Now().UTC().Truncate(time.Microsecond)
	if err := r.store.CreateSale(ctx, sale, items); err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}

	r.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("total", sale.Total.String()),
		zap.String("payment_method", sale.PaymentMethod),
		zap.Int("lines", len(items)),
	)

	return &Receipt{
		ID:            sale.ID,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		CreatedAt:     sale.CreatedAt,
		Items:         receiptLines,
	}, nil
}

func normalizePaymentMethod(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return DefaultPaymentMethod
	}
	return s
}

// Total sums price × quantity over items.
func Total(items []SaleItem) money.Money {
	var t money.Money
	for _, it := range items {
		t = t.Add(it.Price.Times(it.Quantity))
	}
	return t
}
