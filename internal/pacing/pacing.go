package pacing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/news_insight/internal/config"
)

// Pacer 批处理中每次远程调用前调用 Wait
type Pacer interface {
	Wait(ctx context.Context) error
}

// Fixed 固定间隔：第一次调用不等待，之后每次调用前阻塞 interval
type Fixed struct {
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	started bool
}

// NewFixed 创建固定间隔 Pacer
func NewFixed(interval time.Duration) *Fixed {
	return &Fixed{interval: interval, sleep: sleepCtx}
}

// WithSleep 替换等待函数，测试使用
func (f *Fixed) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Fixed {
	f.sleep = sleep
	return f
}

// Wait 见 Fixed
func (f *Fixed) Wait(ctx context.Context) error {
	f.mu.Lock()
	first := !f.started
	f.started = true
	f.mu.Unlock()

	if first || f.interval <= 0 {
		return ctx.Err()
	}
	return f.sleep(ctx, f.interval)
}

// TokenBucket 基于令牌桶的节奏控制
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket 每 interval 补充一个令牌，最多积攒 burst 个
func NewTokenBucket(interval time.Duration, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &TokenBucket{limiter: rate.NewLimiter(limit, burst)}
}

// Wait 见 TokenBucket
func (t *TokenBucket) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// New 按配置创建 Pacer，策略为空时使用固定间隔
func New(cfg config.PacingConfig) Pacer {
	if cfg.Strategy == config.PacingTokenBucket {
		return NewTokenBucket(cfg.Interval, cfg.Burst)
	}
	return NewFixed(cfg.Interval)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
