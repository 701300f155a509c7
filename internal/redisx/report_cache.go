package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

// ReportCache keeps rendered monthly reports in Redis. Keys include the report
// time zone because month boundaries depend on it, and the month's generation
// so that a report computed before an invalidation is never served after it.
type ReportCache struct {
	rdb redis.Cmdable
	tz  string
	ttl time.Duration
}

func NewReportCache(rdb redis.Cmdable, tz string, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = TTLReport
	}
	return &ReportCache{rdb: rdb, tz: tz, ttl: ttl}
}

func (c *ReportCache) Generation(ctx context.Context, m sales.Month) (int64, error) {
	gen, err := c.rdb.Get(ctx, ReportGenerationKey(c.tz, m.String())).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *ReportCache) Get(ctx context.Context, m sales.Month, gen int64) ([]sales.MonthlyRecord, bool, error) {
	b, err := c.rdb.Get(ctx, MonthlyReportKey(c.tz, m.String(), gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var recs []sales.MonthlyRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, false, err
	}
	return recs, true, nil
}

func (c *ReportCache) Set(ctx context.Context, m sales.Month, gen int64, recs []sales.MonthlyRecord) error {
	if recs == nil {
		recs = []sales.MonthlyRecord{}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, MonthlyReportKey(c.tz, m.String(), gen), b, c.ttl).Err()
}

// Invalidate bumps the month's generation. Entries of older generations are
// left to expire.
func (c *ReportCache) Invalidate(ctx context.Context, m sales.Month) error {
	key := ReportGenerationKey(c.tz, m.String())
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, key)
		p.Expire(ctx, key, TTLGeneration)
		return nil
	})
	return err
}

// Dedup records processed event ids for a consumer.
type Dedup struct {
	rdb     redis.Cmdable
	service string
	ttl     time.Duration
}

func NewDedup(rdb redis.Cmdable, service string) *Dedup {
	return &Dedup{rdb: rdb, service: service, ttl: TTLDedup}
}

// FirstSeen marks id as processed and reports whether this call was the first.
func (d *Dedup) FirstSeen(ctx context.Context, id string) (bool, error) {
	return d.rdb.SetNX(ctx, DedupKey(d.service, id), "1", d.ttl).Result()
}

// Forget removes the mark so a failed event can be retried.
func (d *Dedup) Forget(ctx context.Context, id string) error {
	return d.rdb.Del(ctx, DedupKey(d.service, id)).Err()
}
