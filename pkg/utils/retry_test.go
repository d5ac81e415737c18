package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryConfig{Attempts: 3, Base: time.Millisecond}, func(error) bool { return true }, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	sentinel := errors.New("not found")
	calls := 0
	err := Retry(context.Background(), RetryConfig{Attempts: 5, Base: time.Millisecond}, func(err error) bool { return !errors.Is(err, sentinel) }, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryConfig{Attempts: 4, Base: time.Millisecond}, func(error) bool { return true }, func(ctx context.Context) error {
		calls++
		return errors.New("still down")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if calls != 4 {
		t.Fatalf("calls = %d, want 4", calls)
	}
}

func TestRetry_RespectsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, RetryConfig{Attempts: 3, Base: 10 * time.Second}, func(error) bool { return true }, func(ctx context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
