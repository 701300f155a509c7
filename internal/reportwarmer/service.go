// Package reportwarmer rebuilds cached monthly reports as sales are recorded,
// so the first report request after a checkout does not pay for the query.
package reportwarmer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-pos-sales/internal/kafka"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

// Refresher is satisfied by *sales.Reporter.
type Refresher interface {
	MonthOf(t time.Time) sales.Month
	Refresh(ctx context.Context, m sales.Month) ([]sales.MonthlyRecord, error)
}

// Deduper is satisfied by *redisx.Dedup.
type Deduper interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

type Service struct {
	Reports Refresher
	Dedup   Deduper // optional
	Log     *zap.Logger
}

// HandleSaleRecorded is installed as the consumer handler. Undecodable
// messages are logged and skipped; a failed refresh is returned, with the
// dedup mark released, so the consumer retries it.
func (s *Service) HandleSaleRecorded(ctx context.Context, m kafkago.Message) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	var env sales.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Warn("skip undecodable event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != sales.EventSaleRecorded {
		return nil
	}

	if s.Dedup != nil && env.EventID != "" {
		first, err := s.Dedup.FirstSeen(ctx, env.EventID)
		switch {
		case err != nil:
			// refreshing twice is harmless
			log.Warn("dedup check", zap.String("event_id", env.EventID), zap.Error(err))
		case !first:
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[sales.SaleRecordedPayload](env.Payload)
	if err != nil {
		log.Warn("skip event payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	month := s.Reports.MonthOf(p.CreatedAt)
	recs, err := s.Reports.Refresh(ctx, month)
	if err != nil {
		if s.Dedup != nil && env.EventID != "" {
			_ = s.Dedup.Forget(ctx, env.EventID)
		}
		return fmt.Errorf("refresh report %s: %w", month, err)
	}

	log.Info("report refreshed",
		zap.String("month", month.String()),
		zap.String("sale_id", p.SaleID),
		zap.String("trace_id", env.TraceID),
		zap.Int("records", len(recs)),
	)
	return nil
}
