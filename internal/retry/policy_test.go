package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	delays []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testPolicy(r *recorder) Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Sleep:       r.sleep,
	}
}

func TestDo_RetryableThenSuccess(t *testing.T) {
	rec := &recorder{}
	calls := 0
	v, err := Do(context.Background(), testPolicy(rec), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("status code: 429, too many requests")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
	assert.Less(t, rec.delays[0], rec.delays[1])
}

func TestDo_FatalNoRetry(t *testing.T) {
	rec := &recorder{}
	calls := 0
	cause := errors.New("error, status code: 401, message: invalid api key")
	_, err := Do(context.Background(), testPolicy(rec), func(ctx context.Context) (int, error) {
		calls++
		return 0, cause
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
	assert.ErrorIs(t, err, ErrFatal)
	assert.ErrorIs(t, err, cause)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Attempts)
}

func TestDo_Exhausted(t *testing.T) {
	rec := &recorder{}
	calls := 0
	var retried []int
	p := testPolicy(rec)
	p.OnRetry = func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }

	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, rec.delays, 2)
	assert.Equal(t, []int{1, 2}, retried)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.NotErrorIs(t, err, ErrFatal)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_ContextCanceledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Hour,
		Multiplier:  2,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return Sleep(ctx, d)
		},
	}

	_, err := Do(ctx, p, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("service unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: 500 * time.Millisecond, Multiplier: 3, MaxDelay: 10 * time.Second}
	assert.Equal(t, 500*time.Millisecond, p.Delay(1))
	assert.Equal(t, 1500*time.Millisecond, p.Delay(2))
	assert.Equal(t, 4500*time.Millisecond, p.Delay(3))
	assert.Equal(t, 10*time.Second, p.Delay(5))
}
