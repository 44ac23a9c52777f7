package recordings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	tr := NewRedisTracker(rdb)
	tr.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	return tr, mr
}

func TestRecordAndGet(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "RE123", "in-progress"))
	require.NoError(t, tr.Record(ctx, "RE123", "completed"))

	got, err := tr.Get(ctx, "RE123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "RE123", got.SID)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), got.UpdatedAt)
	assert.Equal(t, TTL, mr.TTL(keyPrefix+"RE123"))
}

func TestGetExpires(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "RE1", "completed"))
	mr.FastForward(TTL + time.Second)

	got, err := tr.Get(ctx, "RE1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetUnknown(t *testing.T) {
	tr, _ := newTracker(t)
	got, err := tr.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordRequiresSID(t *testing.T) {
	tr, _ := newTracker(t)
	assert.Error(t, tr.Record(context.Background(), "", "completed"))
}

func TestNop(t *testing.T) {
	var tr Tracker = Nop{}
	assert.NoError(t, tr.Record(context.Background(), "RE1", "completed"))
	_, err := tr.Get(context.Background(), "RE1")
	assert.ErrorIs(t, err, ErrDisabled)
}
