package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*DistLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	l := NewDistLock(client)
	l.Retry = 5 * time.Millisecond
	return l, mr
}

func TestAcquireRelease(t *testing.T) {
	l, mr := newTestLock(t)
	ctx := context.Background()

	got, err := l.Acquire(ctx, "1:10", "a")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = l.Acquire(ctx, "1:10", "b")
	require.NoError(t, err)
	assert.False(t, got)

	// 非持有者释放无效
	require.NoError(t, l.Release(ctx, "1:10", "b"))
	assert.True(t, mr.Exists(LockKeyPrefix+"1:10"))

	require.NoError(t, l.Release(ctx, "1:10", "a"))
	assert.False(t, mr.Exists(LockKeyPrefix+"1:10"))
}

func TestLockTimesOut(t *testing.T) {
	l, _ := newTestLock(t)
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestLockSerializesHolders(t *testing.T) {
	l, _ := newTestLock(t)
	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			unlock, err := l.Lock(ctx, "shared")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestNewClientPingFailure(t *testing.T) {
	_, err := NewClient(context.Background(), Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
