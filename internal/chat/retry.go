package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// RetryConfig controls retry behavior for model calls.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// retryablePatterns groups error message fragments that indicate a
// transient failure worth retrying.
var retryablePatterns = [][]string{
	{"rate limit", "quota exceeded", "429"},
	{"500", "502", "503", "504", "unavailable"},
	{"connection reset", "timeout", "temporary"},
}

// retryableError reports whether err looks transient.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, group := range retryablePatterns {
		if containsAny(msg, group) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// executeWithRetry runs fn with rate limiting and exponential backoff.
// Non-retryable errors abort immediately.
func executeWithRetry(ctx context.Context, cfg RetryConfig, limiter *rate.Limiter, logger *slog.Logger, fn func() error) error {
	start := time.Now()
	delay := cfg.InitialInterval

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				logger.Info("model call succeeded after retry",
					"attempts", attempt+1,
					"elapsed", time.Since(start),
				)
			}
			return nil
		}
		if !retryableError(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxRetries {
			break
		}

		logger.Warn("model call failed, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > cfg.MaxInterval {
			delay = cfg.MaxInterval
		}
	}

	return fmt.Errorf("exhausted %d retries after %s: %w", cfg.MaxRetries, time.Since(start), lastErr)
}
