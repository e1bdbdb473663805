package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       4 * time.Millisecond,
		BackoffFactor:  2.0,
		AttemptTimeout: time.Second,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryableExhaustsAllAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func(ctx context.Context) error {
		calls++
		return errors.New("connection reset")
	})

	assert.Equal(t, 3, calls)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.ErrorContains(t, err, "op")
}

func TestDo_RecoversMidway(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("status 503")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_FatalStopsImmediately(t *testing.T) {
	calls := 0
	fatal := apperrors.NewProviderNotFoundError("op", "place xyz")
	err := Do(context.Background(), fastConfig(), "op", func(ctx context.Context) error {
		calls++
		return fatal
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, fatal, err)
}

func TestDo_AuthErrorIsFatal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), "op", func(ctx context.Context) error {
		calls++
		return apperrors.NewProviderAuthError("op")
	})

	assert.Equal(t, 1, calls)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestDo_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDo_CancellationDuringAttemptPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, fastConfig(), "op", func(attemptCtx context.Context) error {
		calls++
		cancel()
		return errors.New("aborted mid flight")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_AttemptTimeoutIsRetryable(t *testing.T) {
	cfg := fastConfig()
	cfg.AttemptTimeout = 5 * time.Millisecond

	calls := 0
	err := Do(context.Background(), cfg, "op", func(attemptCtx context.Context) error {
		calls++
		<-attemptCtx.Done()
		return attemptCtx.Err()
	})

	assert.Equal(t, 3, calls)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestDoWithLog_ReportsBackoffDelays(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig()

	err := DoWithLog(context.Background(), cfg, "op", func(ctx context.Context) error {
		return errors.New("status 429")
	}, func(attempt int, err error, nextDelay time.Duration) {
		delays = append(delays, nextDelay)
	})

	assert.Error(t, err)
	// Two sleeps for three attempts, doubling from the initial delay.
	assert.Len(t, delays, 2)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestDefaultClassifier(t *testing.T) {
	assert.Equal(t, Fatal, DefaultClassifier(apperrors.NewProviderAuthError("op")))
	assert.Equal(t, Fatal, DefaultClassifier(apperrors.NewProviderNotFoundError("op", "res")))
	assert.Equal(t, Retryable, DefaultClassifier(errors.New("status 500")))
	assert.Equal(t, Retryable, DefaultClassifier(apperrors.NewProviderUnavailableError("op", nil)))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 2*time.Second, cfg.MaxDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.JitterMax)
	assert.Equal(t, 5*time.Second, cfg.AttemptTimeout)
}
