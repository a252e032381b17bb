package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisLocker(rdb, time.Minute, zap.NewNop()), mr
}

func TestRedisLocker_LockAndUnlock(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "application:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:application:1"))
	assert.Equal(t, time.Minute, mr.TTL("lock:application:1"))

	unlock()
	assert.False(t, mr.Exists("lock:application:1"))

	// calling unlock twice is harmless
	unlock()
}

func TestRedisLocker_SecondLockWaits(t *testing.T) {
	locker, _ := newTestRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "application:1")
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		second, err := locker.Lock(ctx, "application:1")
		if err == nil {
			acquired <- second
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(150 * time.Millisecond):
	}

	unlock()
	select {
	case second := <-acquired:
		second()
	case <-time.After(2 * time.Second):
		t.Fatal("second lock was not acquired after release")
	}
}

func TestRedisLocker_ContextTimeout(t *testing.T) {
	locker, _ := newTestRedisLocker(t)

	unlock, err := locker.Lock(context.Background(), "dashboard:1:daily")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "dashboard:1:daily")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLocker_UnlockKeepsForeignLease(t *testing.T) {
	locker, mr := newTestRedisLocker(t)

	unlock, err := locker.Lock(context.Background(), "application:7")
	require.NoError(t, err)

	// lease expired and another holder took over
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set("lock:application:7", "other-holder"))

	unlock()
	got, err := mr.Get("lock:application:7")
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestRedisLocker_DistinctKeys(t *testing.T) {
	locker, _ := newTestRedisLocker(t)
	ctx := context.Background()

	a, err := locker.Lock(ctx, "application:1")
	require.NoError(t, err)
	defer a()
	b, err := locker.Lock(ctx, "application:2")
	require.NoError(t, err)
	defer b()
}

func TestLocalLocker(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "application:1")
	require.NoError(t, err)

	other, err := locker.Lock(ctx, "application:2")
	require.NoError(t, err)
	other()

	timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(timeout, "application:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done := make(chan struct{})
	go func() {
		second, err := locker.Lock(ctx, "application:1")
		if err == nil {
			second()
		}
		close(done)
	}()
	unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}

	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Empty(t, locker.locks)
}
