// Package retry runs single remote attempts under a rate-limit-aware
// exponential backoff budget.
package retry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"tasksync/internal/metrics"
	"tasksync/internal/taskerr"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
)

// Config controls the retry budget and backoff curve. The zero value
// uses the defaults above.
type Config struct {
	// MaxAttempts is the total attempt budget, first call included.
	MaxAttempts int

	// BaseDelay and MaxDelay bound the backoff curve. The delay before
	// attempt k+1 is min(MaxDelay, BaseDelay*2^(k-1)) scaled by a
	// jitter factor in [0.5, 1.0).
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// OnRetry, when set, is observed before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Logger logs retried attempts at debug level. Nil uses the default.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget runs out. Only errors the classifier marks retryable
// (rate limited, transport) are retried. A server-suggested retry-after
// carried by the error overrides the computed backoff for that attempt.
//
// On a spent budget the last error is returned wrapped as
// KindRetryBudgetExceeded; on context cancellation the result is a
// KindCancelled error. Already-running attempts are bounded by ctx.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()
	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, taskerr.FromTransport(err)
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !taskerr.Retryable(err) {
			return zero, err
		}
		kind := taskerr.KindOf(err)
		metrics.RetriesTotal.WithLabelValues(string(kind)).Inc()
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoff(cfg, attempt)
		if ra := taskerr.RetryAfterOf(err); ra > 0 {
			delay = ra
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}
		cfg.Logger.Debug("retrying after error",
			"attempt", attempt, "delay", delay, "kind", string(kind), "err", err)

		if err := sleep(ctx, delay); err != nil {
			return zero, taskerr.FromTransport(err)
		}
	}

	return zero, taskerr.Exhausted(lastErr, cfg.MaxAttempts)
}

// backoff computes the jittered delay after attempt k (1-based).
func backoff(cfg Config, attempt int) time.Duration {
	d := float64(cfg.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= float64(cfg.MaxDelay) {
			d = float64(cfg.MaxDelay)
			break
		}
	}
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(d * jitter)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
