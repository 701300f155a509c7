package sales

import (
	"time"

	"github.com/ariefcatur/go-pos-sales/internal/money"
)

const DefaultPaymentMethod = "cash"

type Sale struct {
	ID            string
	Total         money.Money
	PaymentMethod string
	CreatedAt     time.Time
}

// SaleItem is one line of a Sale. ProductName and Price are copied from the
// catalog when the sale is recorded and never follow later catalog edits.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	Price       money.Money
	Quantity    int
}

// CartLine is a requested product and quantity at checkout.
type CartLine struct {
	ProductID string   `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

type CheckoutRequest struct {
	Items         []CartLine `json:"items"`
	PaymentMethod string     `json:"paymentMethod"`
}

type LineItem struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Price     money.Money `json:"price"`
	Quantity  int         `json:"quantity"`
	LineTotal money.Money `json:"lineTotal"`
}

// Receipt is returned to the register after a successful checkout.
type Receipt struct {
	ID            string      `json:"id"`
	Total         money.Money `json:"total"`
	PaymentMethod string      `json:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt"`
	Items         []LineItem  `json:"items"`
}

// MonthlyRecord summarises one sale for the monthly report.
type MonthlyRecord struct {
	ID            string      `json:"id"`
	Total         money.Money `json:"total"`
	PaymentMethod string      `json:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt"`
	ItemCount     int64       `json:"itemCount"`
}
