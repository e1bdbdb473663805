package retry

import (
	"context"
	"math/rand"
	"time"

	apperrors "github.com/gatherly/venuescout/backend/pkg/errors"
)

// Classification decides what happens to a failed attempt.
type Classification int

const (
	// Retryable errors consume one attempt and back off.
	Retryable Classification = iota
	// Fatal errors are surfaced immediately without further attempts.
	Fatal
)

// Classifier maps an attempt error to a Classification.
type Classifier func(error) Classification

// Config holds retry configuration
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterMax      time.Duration
	AttemptTimeout time.Duration
	Classify       Classifier
}

// DefaultConfig returns the retry configuration used for outbound provider
// calls: 3 attempts, 100ms initial delay doubling up to 2s, up to 100ms of
// jitter per delay, 5s per-attempt timeout.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   100 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		BackoffFactor:  2.0,
		JitterMax:      100 * time.Millisecond,
		AttemptTimeout: 5 * time.Second,
		Classify:       DefaultClassifier,
	}
}

// DefaultClassifier treats provider auth failures and not-found as fatal and
// everything else as retryable. Transient 429/5xx/network failures arrive
// here as plain errors and fall into the retryable default.
func DefaultClassifier(err error) Classification {
	if apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) ||
		apperrors.IsType(err, apperrors.ErrorTypeNotFound) ||
		apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		return Fatal
	}
	return Retryable
}

// Do executes fn with exponential backoff retry. Each attempt runs under its
// own timeout derived from ctx. Caller cancellation propagates immediately
// and is never converted into a provider failure.
func Do(ctx context.Context, cfg Config, operation string, fn func(ctx context.Context) error) error {
	return DoWithLog(ctx, cfg, operation, fn, nil)
}

// DoWithLog executes fn with retry and invokes logFn before each backoff
// sleep with the attempt index and the computed delay.
func DoWithLog(ctx context.Context, cfg Config, operation string, fn func(ctx context.Context) error, logFn func(attempt int, err error, nextDelay time.Duration)) error {
	classify := cfg.Classify
	if classify == nil {
		classify = DefaultClassifier
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := runAttempt(ctx, cfg.AttemptTimeout, fn)
		if err == nil {
			return nil
		}

		// The caller going away wins over whatever the attempt reported.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if classify(err) == Fatal {
			return err
		}

		lastErr = err
		if attempt == cfg.MaxAttempts {
			break
		}

		totalDelay := delay + jitter(cfg.JitterMax)
		if logFn != nil {
			logFn(attempt, err, totalDelay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(totalDelay):
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return apperrors.NewProviderUnavailableError(operation, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	// An attempt that only hits its own deadline surfaces as a transient
	// error; caller cancellation is detected separately on the parent ctx.
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
