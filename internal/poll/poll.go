package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config controls polling behavior.
type Config struct {
	// Interval is the pause between checks. If zero, DefaultInterval is used.
	Interval time.Duration

	// MaxAttempts caps the number of checks. Zero or negative polls until the
	// context is done.
	MaxAttempts int

	// Sleeper allows tests to override sleeping. If nil, a timer honoring ctx
	// cancellation is used.
	Sleeper func(time.Duration)
}

const DefaultInterval = 3 * time.Second

// ErrExhausted is returned when MaxAttempts checks ran without success.
var ErrExhausted = errors.New("poll: attempts exhausted")

// TransientError marks a check failure that should not stop polling.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err or any wrapped error is a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// Until calls check every Interval until it reports done, returns a
// non-transient error, attempts run out, or ctx is canceled.
func Until(ctx context.Context, cfg Config, check func(attempt int) (bool, error)) error {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	var lastErr error
	for attempt := 0; cfg.MaxAttempts <= 0 || attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, cfg.Sleeper, interval); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err := check(attempt)
		if err != nil && !IsTransient(err) {
			return err
		}
		lastErr = err
		if done && err == nil {
			return nil
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %w", ErrExhausted, lastErr)
	}
	return ErrExhausted
}

func wait(ctx context.Context, sleeper func(time.Duration), d time.Duration) error {
	if sleeper != nil {
		sleeper(d)
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
