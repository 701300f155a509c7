package sales

import (
	"encoding/json"
	"time"
)

const (
	EventSaleRecorded = "SaleRecorded"

	TopicSaleRecorded = "pos.sale.recorded"
)

// Partition key = sale_id, so every event about one sale stays ordered.
func PartitionKey(saleID string) []byte { return []byte(saleID) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

type SaleRecordedPayload struct {
	SaleID        string    `json:"sale_id"`
	TotalCents    int64     `json:"total_cents"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	Items         []ItemQty `json:"items"`
}

// RecordedPayload is the event body describing a receipt.
func RecordedPayload(r *Receipt) SaleRecordedPayload {
	items := make([]ItemQty, 0, len(r.Items))
	for _, li := range r.Items {
		items = append(items, ItemQty{ProductID: li.ProductID, Quantity: li.Quantity, PriceCents: li.Price.Cents()})
	}
	return SaleRecordedPayload{
		SaleID:        r.ID,
		TotalCents:    r.Total.Cents(),
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt,
		Items:         items,
	}
}
