package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_insight/internal/config"
)

func TestFixed_SkipsFirstWait(t *testing.T) {
	var waits []time.Duration
	p := NewFixed(2 * time.Second).WithSleep(func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, waits)
}

func TestFixed_CanceledContext(t *testing.T) {
	p := NewFixed(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Wait(ctx))

	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestTokenBucket_Burst(t *testing.T) {
	p := NewTokenBucket(time.Hour, 2)
	ctx := context.Background()
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))

	// 第三个令牌需要等待一小时，超时的 ctx 会让 Wait 立即失败
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, p.Wait(short))
}

func TestNew(t *testing.T) {
	assert.IsType(t, &Fixed{}, New(config.PacingConfig{Interval: time.Second}))
	assert.IsType(t, &TokenBucket{}, New(config.PacingConfig{Strategy: config.PacingTokenBucket, Interval: time.Second}))
}
