package sales

import "errors"

// ValidationError is a rejected checkout or report request. Its message is safe
// to show to the cashier.
type ValidationError struct {
	Message   string
	ProductID string
}

func (e *ValidationError) Error() string {
	if e.ProductID != "" {
		return e.Message + " (product " + e.ProductID + ")"
	}
	return e.Message
}

// Is matches any ValidationError with the same message, so a product-specific
// error still compares equal to its sentinel.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Message == e.Message
}

var (
	ErrEmptyCart          = &ValidationError{Message: "cart is empty"}
	ErrProductUnavailable = &ValidationError{Message: "selected product is unavailable"}
	ErrInvalidPayload     = &ValidationError{Message: "invalid request payload"}
	ErrInvalidMonth       = &ValidationError{Message: "month must be formatted as YYYY-MM"}

	ErrSaleNotFound = errors.New("sale not found")
)

func productUnavailable(id string) error {
	return &ValidationError{Message: ErrProductUnavailable.Message, ProductID: id}
}
