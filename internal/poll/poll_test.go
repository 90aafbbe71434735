package poll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestUntilSucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := Until(context.Background(), Config{}, func(int) (bool, error) {
		attempts++
		return true, nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestUntilPollsAtFixedInterval(t *testing.T) {
	attempts := 0
	var sleeps []time.Duration
	err := Until(context.Background(), Config{
		Interval: 100 * time.Millisecond,
		Sleeper: func(d time.Duration) {
			sleeps = append(sleeps, d)
		},
	}, func(int) (bool, error) {
		attempts++
		return attempts == 3, nil
	})
	if err != nil {
		t.Fatalf("expected success after polling, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	wantSleeps := []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}
	if len(sleeps) != len(wantSleeps) {
		t.Fatalf("expected %d sleeps, got %d", len(wantSleeps), len(sleeps))
	}
	for i, got := range sleeps {
		if got != wantSleeps[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, wantSleeps[i], got)
		}
	}
}

func TestUntilDefaultInterval(t *testing.T) {
	var sleeps []time.Duration
	_ = Until(context.Background(), Config{
		MaxAttempts: 2,
		Sleeper:     func(d time.Duration) { sleeps = append(sleeps, d) },
	}, func(int) (bool, error) {
		return false, nil
	})
	if len(sleeps) != 1 || sleeps[0] != DefaultInterval {
		t.Fatalf("expected one sleep of %v, got %v", DefaultInterval, sleeps)
	}
}

func TestUntilStopsOnPermanentError(t *testing.T) {
	attempts := 0
	errBoom := errors.New("boom")
	err := Until(context.Background(), Config{Sleeper: func(time.Duration) {}}, func(int) (bool, error) {
		attempts++
		return false, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected no further polling, got %d attempts", attempts)
	}
}

func TestUntilKeepsPollingOnTransientError(t *testing.T) {
	attempts := 0
	err := Until(context.Background(), Config{Sleeper: func(time.Duration) {}}, func(int) (bool, error) {
		attempts++
		if attempts < 3 {
			return false, &TransientError{Err: errors.New("not yet")}
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestUntilExhausted(t *testing.T) {
	lastErr := errors.New("last")
	attempts := 0
	err := Until(context.Background(), Config{
		MaxAttempts: 3,
		Sleeper:     func(time.Duration) {},
	}, func(int) (bool, error) {
		attempts++
		return false, &TransientError{Err: lastErr}
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected the last transient error to be wrapped, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestUntilStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Until(ctx, Config{Interval: time.Millisecond}, func(int) (bool, error) {
		attempts++
		cancel()
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected stop after first attempt due to cancel, got %d", attempts)
	}
}

func TestUntilPassesAttemptNumber(t *testing.T) {
	var seen []int
	_ = Until(context.Background(), Config{MaxAttempts: 3, Sleeper: func(time.Duration) {}}, func(attempt int) (bool, error) {
		seen = append(seen, attempt)
		return false, nil
	})
	if fmt.Sprint(seen) != "[0 1 2]" {
		t.Fatalf("unexpected attempts: %v", seen)
	}
}

func TestIsTransient(t *testing.T) {
	base := errors.New("base")
	tr := &TransientError{Err: base}
	if !IsTransient(tr) {
		t.Fatalf("expected transient")
	}
	if !IsTransient(fmt.Errorf("wrap: %w", tr)) {
		t.Fatalf("expected wrapped transient")
	}
	if IsTransient(base) {
		t.Fatalf("expected non-transient base")
	}
	if !errors.Is(tr, base) {
		t.Fatalf("expected unwrap to reach base")
	}
}
