package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-pos-sales/internal/clock"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

var errInvalidFormat = &sales.ValidationError{Message: "format must be json or csv"}

type ReportsHandler struct {
	Reporter *sales.Reporter
	Clock    clock.Clock
	Log      *zap.Logger
}

func (h *ReportsHandler) Register(r chi.Router) {
	r.Get("/reports/monthly", h.monthly)
}

type monthlyResp struct {
	Month   string                `json:"month"`
	Records []sales.MonthlyRecord `json:"records"`
}

// monthly serves ?month=YYYY-MM, defaulting to the current month in the
// report time zone. format=csv returns a download instead of JSON.
func (h *ReportsHandler) monthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var m sales.Month
	if s := strings.TrimSpace(q.Get("month")); s != "" {
		var err error
		if m, err = sales.ParseMonth(s); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
	} else {
		m = h.Reporter.MonthOf(h.now())
	}

	format := strings.ToLower(q.Get("format"))
	if format != "" && format != "json" && format != "csv" {
		writeError(w, r, h.Log, errInvalidFormat)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	recs, err := h.Reporter.MonthlySales(ctx, m)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if recs == nil {
		recs = []sales.MonthlyRecord{}
	}

	if format == "csv" {
		text, err := sales.ToDelimitedText(recs)
		if err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-%s.csv"`, m))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}
	writeJSON(w, http.StatusOK, monthlyResp{Month: m.String(), Records: recs})
}

func (h *ReportsHandler) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock.Now()
}
