package catalog

import (
	"errors"
	"time"

	"github.com/ariefcatur/go-pos-sales/internal/money"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Price     money.Money `json:"price"`
	ImageURL  string      `json:"imageUrl"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
}
