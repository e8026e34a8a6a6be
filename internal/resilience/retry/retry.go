// Package retry retries operations that fail with transient connection errors,
// using exponential backoff with jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration

	// JitterFraction spreads each delay by up to +/- this fraction (0.0 to 1.0).
	// Delays double between attempts.
	JitterFraction float64
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		JitterFraction: 0.1,
	}
}

// DBConnectConfig is used while waiting for the database at startup, when the
// server may come up before the database accepts connections.
func DBConnectConfig() Config {
	return Config{
		MaxAttempts:    5,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		JitterFraction: 0.1,
	}
}

// WithBackoff executes fn until it succeeds, returns a non-retryable error,
// or MaxAttempts is reached. It returns the last error.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt := 0
	var lastErr error
	err := goretry.Do(ctx, newBackoff(cfg, maxAttempts), func(context.Context) error {
		attempt++
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt < maxAttempts {
			slog.Warn("operation failed, retrying",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", maxAttempts),
				slog.Any("error", lastErr))
		}
		return goretry.RetryableError(lastErr)
	})

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return fmt.Errorf("retry aborted: %w", err)
	case IsRetryable(lastErr):
		return fmt.Errorf("max retry attempts (%d) exceeded: %w", maxAttempts, lastErr)
	default:
		return err
	}
}

// newBackoff doubles from InitialDelay, caps at MaxDelay and stops after
// maxAttempts-1 retries.
func newBackoff(cfg Config, maxAttempts int) goretry.Backoff {
	b := goretry.NewExponential(cfg.InitialDelay)
	if cfg.MaxDelay > 0 {
		b = goretry.WithCappedDuration(cfg.MaxDelay, b)
	}
	if pct := jitterPercent(cfg.JitterFraction); pct > 0 {
		b = goretry.WithJitterPercent(pct, b)
	}
	return goretry.WithMaxRetries(uint64(maxAttempts-1), b) // #nosec G115 -- maxAttempts >= 1
}

func jitterPercent(fraction float64) uint64 {
	if fraction <= 0 {
		return 0
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	return uint64(fraction * 100)
}

// IsRetryable reports whether err looks like a transient connection failure.
// Context cancellation never is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH)
}
