package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrFatal 不可重试的失败
	ErrFatal = errors.New("fatal error")
	// ErrExhausted 重试次数耗尽
	ErrExhausted = errors.New("retries exhausted")
)

// Error 最终失败，Attempts 为实际调用次数
type Error struct {
	Attempts int
	Fatal    bool
	Err      error
}

func (e *Error) Error() string {
	if e.Fatal {
		return fmt.Sprintf("fatal error after %d attempt(s): %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("retries exhausted after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap 同时暴露哨兵错误和原始错误
func (e *Error) Unwrap() []error {
	if e.Fatal {
		return []error{ErrFatal, e.Err}
	}
	return []error{ErrExhausted, e.Err}
}

// Policy 重试与指数退避参数，零值字段使用默认值
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	// MaxDelay 单次等待上限，0 表示不限制
	MaxDelay time.Duration

	// Sleep 可替换的等待函数，测试中注入
	Sleep      func(ctx context.Context, d time.Duration) error
	Classifier Classifier
	// OnRetry 每次决定重试前回调，attempt 从 1 开始
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Delay 第 attempt 次失败后的等待时间：BaseDelay * Multiplier^(attempt-1)
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 2
	}
	d := time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do 在策略下执行 op，成功立即返回；致命错误不再重试
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	classify := p.Classifier
	if classify == nil {
		classify = Classify
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &Error{Attempts: attempt - 1, Fatal: true, Err: err}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if classify(err) == Fatal {
			return zero, &Error{Attempts: attempt, Fatal: true, Err: err}
		}
		if attempt == attempts {
			break
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, &Error{Attempts: attempt, Fatal: true, Err: err}
		}
	}
	return zero, &Error{Attempts: attempts, Err: lastErr}
}

// Sleep 可被 ctx 取消的等待
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
