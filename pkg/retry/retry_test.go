package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	cause := errors.New("still down")
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return cause
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, cause)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	cause := errors.New("permanent")
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return cause
	}, func(error) bool { return false })

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, cause, err, "non-retryable errors surface unwrapped")
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(), func() error {
		calls++
		return nil
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_TotalTimeout(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 100
	cfg.InitialDelay = 20 * time.Millisecond
	cfg.MaxDelay = 20 * time.Millisecond
	cfg.MaxTotalTimeout = 50 * time.Millisecond

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return errors.New("transient")
	}, nil)

	require.Error(t, err)
	assert.Less(t, calls, 100)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoWithLog_ReportsEachRetry(t *testing.T) {
	var attempts []int
	calls := 0
	err := DoWithLog(context.Background(), fastConfig(), "upstream", func() error {
		calls++
		return errors.New("transient")
	}, nil, func(attempt int, err error, nextDelay time.Duration) {
		attempts = append(attempts, attempt)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	// the final failed attempt is not followed by a delay, so not logged
	assert.Equal(t, []int{1, 2}, attempts)
}
