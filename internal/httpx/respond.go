package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-pos-sales/internal/catalog"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

type errorResp struct {
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Only validation and not-found
// messages reach the client; anything else is logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	log = orNop(log)
	var ve *sales.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResp{Message: ve.Message, ProductID: ve.ProductID})
	case errors.Is(err, sales.ErrSaleNotFound), errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Message: err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp{Message: "internal server error"})
	}
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
