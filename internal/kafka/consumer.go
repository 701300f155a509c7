package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns an error to have the message retried with backoff.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r        *kafka.Reader
	workers  int
	attempts int
	backoff  time.Duration
	log      *zap.Logger
}

const (
	defaultAttempts = 5
	defaultBackoff  = 200 * time.Millisecond
)

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{r: r, workers: workers, attempts: defaultAttempts, backoff: defaultBackoff, log: log}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for m := range jobs {
				if err := handleWithRetry(ctx, h, m, c.attempts, c.backoff); err != nil {
					// later commits move the group offset past m anyway, so it is
					// dropped here rather than left pending
					c.log.Error("drop message",
						zap.Int("worker", id),
						zap.Int("partition", m.Partition),
						zap.Int64("offset", m.Offset),
						zap.Error(err))
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					c.log.Warn("commit offset", zap.Int64("offset", m.Offset), zap.Error(err))
				}
			}
		}(i)
	}

	stop := func(err error) error {
		close(jobs)
		wg.Wait()
		return err
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return stop(nil)
			}
			return stop(err)
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return stop(nil)
		}
	}
}

// handleWithRetry runs h up to attempts times, backing off linearly between
// tries. It stops early when ctx is done.
func handleWithRetry(ctx context.Context, h Handler, m kafka.Message, attempts int, backoff time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = h(ctx, m); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(i) * backoff):
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
