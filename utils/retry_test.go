package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"
)

func quietLogger() *Logger {
	l := NewLogger()
	l.SetOutput(io.Discard)
	return l
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: quietLogger()}

	calls := 0
	err := r.Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: quietLogger()}

	sentinel := errors.New("still broken")
	err := r.Do(context.Background(), "broken", func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, Logger: quietLogger()}

	calls := 0
	err := r.Do(context.Background(), "auth", func() error {
		calls++
		return fmt.Errorf("bad key: %w", ErrPermanent)
	})
	if !errors.Is(err, ErrPermanent) {
		t.Errorf("expected ErrPermanent, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: quietLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, "cancelled", func() error { return errors.New("nope") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
