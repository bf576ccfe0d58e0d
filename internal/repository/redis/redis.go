package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options 连接参数
type Options struct {
	Addr     string // 例如 "127.0.0.1:6379"
	Password string // 无密码则留空
	DB       int
}

// NewClient 创建 Redis 客户端并做一次 Ping 健康检查，由调用方负责 Close
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
