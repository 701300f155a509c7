package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-pos-sales/internal/kafka"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

const (
	maxCheckoutBody   = 1 << 20
	postCommitTimeout = 2 * time.Second
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

type SalesHandler struct {
	Recorder *sales.Recorder
	Reporter *sales.Reporter
	Events   EventPublisher // optional
	Service  string
	Log      *zap.Logger
}

func (h *SalesHandler) Register(r chi.Router) {
	r.Post("/sales/checkout", h.checkout)
	r.Get("/sales/{saleId}", h.getSale)
}

// decodeCheckout reads exactly one JSON object into a CheckoutRequest.
func decodeCheckout(body io.Reader) (sales.CheckoutRequest, error) {
	var req sales.CheckoutRequest
	b, err := io.ReadAll(io.LimitReader(body, maxCheckoutBody+1))
	if err != nil || len(b) > maxCheckoutBody {
		return req, sales.ErrInvalidPayload
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return req, sales.ErrInvalidPayload
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&req); err != nil {
		return req, sales.ErrInvalidPayload
	}
	if dec.More() {
		return req, sales.ErrInvalidPayload
	}
	return req, nil
}

func (h *SalesHandler) checkout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCheckout(r.Body)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	receipt, err := h.Recorder.RecordSale(ctx, req.Items, req.PaymentMethod)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	// the sale is committed; cache and event failures only get logged. They get
	// their own deadline so a slow write cannot starve them.
	after, cancelAfter := context.WithTimeout(context.WithoutCancel(r.Context()), postCommitTimeout)
	defer cancelAfter()
	h.Reporter.Invalidate(after, receipt.CreatedAt)
	h.publishRecorded(after, receipt, middleware.GetReqID(r.Context()))

	writeJSON(w, http.StatusCreated, receipt)
}

func (h *SalesHandler) publishRecorded(ctx context.Context, receipt *sales.Receipt, trace string) {
	if h.Events == nil {
		return
	}
	ev := sales.Envelope{
		EventID:       uuid.NewString(),
		EventType:     sales.EventSaleRecorded,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: receipt.ID,
		Payload:       kafkax.MustMarshal(sales.RecordedPayload(receipt)),
	}
	err := h.Events.Publish(ctx, sales.PartitionKey(receipt.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(sales.EventSaleRecorded)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
	if err != nil {
		orNop(h.Log).Warn("publish sale recorded", zap.String("sale_id", receipt.ID), zap.Error(err))
	}
}

type saleItemsResp struct {
	Items []sales.LineItem `json:"items"`
}

func (h *SalesHandler) getSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "saleId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Reporter.SaleItems(ctx, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, saleItemsResp{Items: items})
}
