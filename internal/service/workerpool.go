package service

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed Close 之后再 Submit
var ErrPoolClosed = errors.New("worker pool closed")

// Job 提交给 WorkerPool 的任务
type Job func(ctx context.Context) error

// WorkerPool 固定数量的 goroutine 处理任务，用于批量回填消息
type WorkerPool struct {
	jobs    chan Job
	stop    chan struct{}
	workers int

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{
		jobs:    make(chan Job, queue),
		stop:    make(chan struct{}),
		workers: workers,
	}
}

// Start 启动 worker；ctx 取消或 Close 后退出
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					// 错误由任务自己记录
					_ = job(ctx)
				}
			}
		}()
	}
}

// Submit 入队；队列满时阻塞，直到有空位、ctx 取消或 pool 关闭
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.stop:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 不再接收任务，等待已入队的任务执行完
func (p *WorkerPool) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
