package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	LockTTL       = 5 * time.Second
	LockRetry     = 25 * time.Millisecond
	LockKeyPrefix = "lock:vote:"
)

var ErrLockTimeout = errors.New("lock acquire timeout")

// 只有持有者才能删除
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// DistLock 基于 SETNX 的分布式互斥锁，多个进程对同一 votee 投票时串行
type DistLock struct {
	RDB   *redis.Client
	TTL   time.Duration
	Retry time.Duration
}

func NewDistLock(rdb *redis.Client) *DistLock {
	return &DistLock{RDB: rdb, TTL: LockTTL, Retry: LockRetry}
}

// Acquire 尝试一次加锁
func (l *DistLock) Acquire(ctx context.Context, key, token string) (bool, error) {
	return l.RDB.SetNX(ctx, LockKeyPrefix+key, token, l.TTL).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.RDB, []string{LockKeyPrefix + key}, token).Err()
}

// Lock 阻塞直到拿到锁或 ctx 结束，返回释放函数
func (l *DistLock) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	t := time.NewTicker(l.Retry)
	defer t.Stop()
	for {
		got, err := l.Acquire(ctx, key, token)
		if err != nil {
			return nil, err
		}
		if got {
			return func() {
				// 请求 ctx 可能已经取消，释放用独立的短超时
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = l.Release(rctx, key, token)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockTimeout, ctx.Err())
		case <-t.C:
		}
	}
}
