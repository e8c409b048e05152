package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"quota", errors.New("quota exceeded for project"), true},
		{"http 429", errors.New("got 429 from upstream"), true},
		{"http 503", errors.New("503 service unavailable"), true},
		{"timeout", errors.New("request timeout"), true},
		{"connection reset", errors.New("connection reset by peer"), true},
		{"bad request", errors.New("invalid argument"), false},
		{"auth", errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func retryLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := executeWithRetry(context.Background(), fastRetryConfig(), nil, retryLogger(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("503 service unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("executeWithRetry() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteWithRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := errors.New("invalid argument")
	err := executeWithRetry(context.Background(), fastRetryConfig(), nil, retryLogger(), func() error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("error = %v, want permanent error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for a permanent error", attempts)
	}
}

func TestExecuteWithRetryExhaustsRetries(t *testing.T) {
	attempts := 0
	transient := errors.New("request timeout")
	err := executeWithRetry(context.Background(), fastRetryConfig(), nil, retryLogger(), func() error {
		attempts++
		return transient
	})
	if !errors.Is(err, transient) {
		t.Errorf("error = %v, want wrapped transient error", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want initial try plus 3 retries", attempts)
	}
}

func TestExecuteWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{
		MaxRetries:      5,
		InitialInterval: time.Hour,
		MaxInterval:     time.Hour,
	}

	done := make(chan error, 1)
	go func() {
		done <- executeWithRetry(ctx, cfg, nil, retryLogger(), func() error {
			return errors.New("503 service unavailable")
		})
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("executeWithRetry did not return after cancellation")
	}
}
