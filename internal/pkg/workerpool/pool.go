package workerpool

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Config 池配置
type Config struct {
	Size        int  // 最大并发 worker 数
	Nonblocking bool // 满载时 Submit 是否直接返回错误
}

// DefaultConfig 返回默认池配置
func DefaultConfig() *Config {
	return &Config{
		Size: 8,
	}
}

// Statistics 池的累计统计
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

// Pool 基于 ants 的 goroutine 池，用于并发执行批处理任务
type Pool struct {
	pool   *ants.Pool
	logger *logger.Logger

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64

	mu     sync.Mutex
	closed bool
}

// New 创建 goroutine 池
func New(cfg *Config, log *logger.Logger) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Size <= 0 {
		cfg.Size = DefaultConfig().Size
	}
	if log == nil {
		log = logger.L()
	}

	antsPool, err := ants.NewPool(cfg.Size, ants.WithNonblocking(cfg.Nonblocking))
	if err != nil {
		return nil, err
	}

	log.Debug("worker pool created", zap.Int("size", cfg.Size))

	return &Pool{
		pool:   antsPool,
		logger: log,
	}, nil
}

// Submit 提交一个任务。池满且配置为非阻塞时返回错误
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	p.submitted.Add(1)

	return p.pool.Submit(func() {
		task()
		p.completed.Add(1)
	})
}

// Run 并发执行一组任务并等待全部完成，返回首个非 nil 错误
func (p *Pool) Run(tasks []func() error) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, task := range tasks {
		task := task
		wg.Add(1)

		err := p.Submit(func() {
			defer wg.Done()
			if err := task(); err != nil {
				p.failed.Add(1)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			return err
		}
	}

	wg.Wait()
	return firstErr
}

// Running 返回正在执行任务的 worker 数
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free 返回空闲 worker 数
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Stats 返回累计统计快照
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Shutdown 关闭池并拒绝后续提交
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.pool.Release()
}
