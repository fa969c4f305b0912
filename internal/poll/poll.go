// Package poll implements the bounded retry loop used to wait for
// eventually consistent state: database rows, API side effects and DOM
// changes
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultInterval suits generic existence checks
	DefaultInterval = 300 * time.Millisecond
	// FastInterval suits low-latency checks such as ban status
	FastInterval = 100 * time.Millisecond
)

// ErrInvalidOptions is returned when the timeout or interval is unusable
var ErrInvalidOptions = errors.New("poll: invalid options")

// Condition is one evaluation of the awaited state. ok reports success;
// a non-nil error aborts polling immediately
type Condition[T any] func(ctx context.Context) (value T, ok bool, err error)

// Options configures a single Until call
type Options struct {
	Timeout  time.Duration
	Interval time.Duration // zero means DefaultInterval
	Message  string
}

// TimeoutError is returned when the condition never held before the deadline
type TimeoutError struct {
	Message  string
	Timeout  time.Duration
	Elapsed  time.Duration
	Attempts int
}

func (e *TimeoutError) Error() string {
	return e.Message
}

// Until evaluates cond until it reports success or the timeout elapses.
// The deadline is checked after each evaluation, so a condition that holds
// exactly at the deadline still succeeds
func Until[T any](ctx context.Context, cond Condition[T], opts Options) (T, error) {
	var zero T

	if opts.Timeout <= 0 {
		return zero, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidOptions, opts.Timeout)
	}
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	if interval < 0 {
		return zero, fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidOptions, interval)
	}

	start := time.Now()
	deadline := start.Add(opts.Timeout)
	attempts := 0

	for {
		attempts++
		value, ok, err := cond(ctx)
		if err != nil {
			return zero, err
		}
		if ok {
			return value, nil
		}

		now := time.Now()
		if now.After(deadline) {
			msg := opts.Message
			if msg == "" {
				msg = fmt.Sprintf("condition not met within %s", opts.Timeout)
			}
			return zero, &TimeoutError{
				Message:  msg,
				Timeout:  opts.Timeout,
				Elapsed:  now.Sub(start),
				Attempts: attempts,
			}
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// First adapts a query returning a list into a Condition that succeeds with
// the first element once the list is non-empty
func First[T any](query func(ctx context.Context) ([]T, error)) Condition[T] {
	return func(ctx context.Context) (T, bool, error) {
		var zero T
		items, err := query(ctx)
		if err != nil {
			return zero, false, err
		}
		if len(items) == 0 {
			return zero, false, nil
		}
		return items[0], true, nil
	}
}

// NonEmpty adapts a query returning a list into a Condition that succeeds
// with the whole list once it is non-empty
func NonEmpty[T any](query func(ctx context.Context) ([]T, error)) Condition[[]T] {
	return func(ctx context.Context) ([]T, bool, error) {
		items, err := query(ctx)
		if err != nil {
			return nil, false, err
		}
		return items, len(items) > 0, nil
	}
}

// Present adapts a query returning an optional value
func Present[T any](query func(ctx context.Context) (*T, error)) Condition[*T] {
	return func(ctx context.Context) (*T, bool, error) {
		item, err := query(ctx)
		if err != nil {
			return nil, false, err
		}
		return item, item != nil, nil
	}
}

// True adapts a boolean check
func True(check func(ctx context.Context) (bool, error)) Condition[struct{}] {
	return func(ctx context.Context) (struct{}, bool, error) {
		ok, err := check(ctx)
		return struct{}{}, ok, err
	}
}
