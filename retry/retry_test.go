package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	ctx := context.Background()
	calls := 0

	err := Do(ctx, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, MaxAttempts(5), Backoff(FixedBackoff(time.Millisecond)))

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	calls := 0

	err := Do(ctx, func() error {
		calls++
		return errors.New("always fails")
	}, MaxAttempts(3), Backoff(FixedBackoff(time.Millisecond)))

	if err == nil {
		t.Fatal("Do() expected error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if GetAttempts(err) != 3 {
		t.Errorf("GetAttempts() = %d, want 3", GetAttempts(err))
	}
}

func TestDoWithData_ReturnsResult(t *testing.T) {
	ctx := context.Background()

	got, err := DoWithData(ctx, func() (string, error) {
		return "hello_world.mp3", nil
	})
	if err != nil {
		t.Fatalf("DoWithData() error = %v", err)
	}
	if got != "hello_world.mp3" {
		t.Errorf("DoWithData() = %q", got)
	}
}

func TestDo_ConditionStopsRetry(t *testing.T) {
	ctx := context.Background()
	permanent := errors.New("permanent")
	calls := 0

	err := Do(ctx, func() error {
		calls++
		return permanent
	}, MaxAttempts(5), Condition(RetryOnCondition(func(err error) bool {
		return !errors.Is(err, permanent)
	})))

	if err == nil {
		t.Fatal("Do() expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (condition rejected retry)", calls)
	}
	if !errors.Is(err, permanent) {
		t.Error("MultiError should unwrap to the permanent error")
	}
}

func TestDo_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error { return errors.New("x") }, MaxAttempts(3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestExponentialBackoff_Caps(t *testing.T) {
	b := ExponentialBackoff(time.Second, WithMultiplier(10), WithMaxDelay(2*time.Second), WithJitter(0))
	if got := b.Next(5); got != 2*time.Second {
		t.Errorf("Next(5) = %v, want capped 2s", got)
	}
	if got := b.Next(1); got != time.Second {
		t.Errorf("Next(1) = %v, want 1s", got)
	}
}
