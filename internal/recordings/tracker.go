// Package recordings remembers the last status the voice provider reported
// for each recording, so staff can tell whether audio is ready to play.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL bounds how long a reported status is kept.
const TTL = 24 * time.Hour

const keyPrefix = "ivr:recording:"

// ErrDisabled is returned by lookups when no tracker backend is configured.
var ErrDisabled = errors.New("recording tracking is disabled")

type Status struct {
	SID       string    `json:"recordingSid"`
	Status    string    `json:"recordingStatus"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Tracker interface {
	Record(ctx context.Context, sid, status string) error
	// Get returns nil when the recording is unknown or expired.
	Get(ctx context.Context, sid string) (*Status, error)
}

type RedisTracker struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisTracker(rdb *redis.Client) *RedisTracker {
	return &RedisTracker{rdb: rdb, now: time.Now}
}

func (t *RedisTracker) Record(ctx context.Context, sid, status string) error {
	if sid == "" {
		return errors.New("recording sid is required")
	}
	key := keyPrefix + sid
	_, err := t.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "status", status, "updatedAt", t.now().UTC().Format(time.RFC3339Nano))
		p.Expire(ctx, key, TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record %s: %w", sid, err)
	}
	return nil
}

func (t *RedisTracker) Get(ctx context.Context, sid string) (*Status, error) {
	vals, err := t.rdb.HGetAll(ctx, keyPrefix+sid).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(vals) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sid, err)
	}
	s := &Status{SID: sid, Status: vals["status"]}
	if ts, err := time.Parse(time.RFC3339Nano, vals["updatedAt"]); err == nil {
		s.UpdatedAt = ts
	}
	return s, nil
}

// Nop is used when redis is not configured. Writes are dropped.
type Nop struct{}

func (Nop) Record(context.Context, string, string) error { return nil }

func (Nop) Get(context.Context, string) (*Status, error) { return nil, ErrDisabled }
