package poll_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/poll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil_ReturnsImmediatelyWhenConditionHolds(t *testing.T) {
	var calls int32
	cond := func(ctx context.Context) (string, bool, error) {
		atomic.AddInt32(&calls, 1)
		return "row", true, nil
	}

	got, err := poll.Until(context.Background(), cond, poll.Options{Timeout: time.Second, Interval: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "row", got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUntil_ObservesConditionWithinOneInterval(t *testing.T) {
	const interval = 20 * time.Millisecond
	becomesTrue := time.Now().Add(100 * time.Millisecond)

	cond := func(ctx context.Context) (time.Time, bool, error) {
		now := time.Now()
		return now, !now.Before(becomesTrue), nil
	}

	observed, err := poll.Until(context.Background(), cond, poll.Options{Timeout: time.Second, Interval: interval})
	require.NoError(t, err)
	assert.False(t, observed.Before(becomesTrue), "observed before the condition became true")
	// one interval plus scheduler slack
	assert.Less(t, observed.Sub(becomesTrue), interval+30*time.Millisecond)
}

func TestUntil_TimesOutWithinOneExtraInterval(t *testing.T) {
	const (
		timeout  = 120 * time.Millisecond
		interval = 40 * time.Millisecond
	)
	never := func(ctx context.Context) (int, bool, error) { return 0, false, nil }

	start := time.Now()
	_, err := poll.Until(context.Background(), never, poll.Options{
		Timeout:  timeout,
		Interval: interval,
		Message:  "Post 'T-1' not found in DB within 0.12 seconds",
	})
	elapsed := time.Since(start)

	var timeoutErr *poll.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "Post 'T-1' not found in DB within 0.12 seconds", err.Error())
	assert.Equal(t, timeout, timeoutErr.Timeout)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+interval+30*time.Millisecond)
	assert.GreaterOrEqual(t, timeoutErr.Attempts, 3)
}

func TestUntil_SucceedsWhenConditionHoldsAtDeadlineCheck(t *testing.T) {
	// condition is false until the deadline has passed, then true on the next evaluation
	const timeout = 50 * time.Millisecond
	start := time.Now()
	cond := func(ctx context.Context) (bool, bool, error) {
		return true, time.Since(start) > timeout, nil
	}

	_, err := poll.Until(context.Background(), cond, poll.Options{Timeout: timeout, Interval: 60 * time.Millisecond})
	// first evaluation at t=0 fails, deadline not yet passed, sleep 60ms,
	// second evaluation is past the deadline but succeeds before the check
	require.NoError(t, err)
}

func TestUntil_PropagatesConditionError(t *testing.T) {
	boom := errors.New("SQL query failed: relation \"posts\" does not exist")
	var calls int32
	cond := func(ctx context.Context) (int, bool, error) {
		atomic.AddInt32(&calls, 1)
		return 0, false, boom
	}

	_, err := poll.Until(context.Background(), cond, poll.Options{Timeout: time.Second, Interval: 10 * time.Millisecond})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUntil_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	never := func(ctx context.Context) (int, bool, error) { return 0, false, nil }
	_, err := poll.Until(ctx, never, poll.Options{Timeout: 5 * time.Second, Interval: 10 * time.Millisecond})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUntil_InvalidOptions(t *testing.T) {
	never := func(ctx context.Context) (int, bool, error) { return 0, false, nil }

	_, err := poll.Until(context.Background(), never, poll.Options{Timeout: 0})
	require.ErrorIs(t, err, poll.ErrInvalidOptions)

	_, err = poll.Until(context.Background(), never, poll.Options{Timeout: time.Second, Interval: -time.Millisecond})
	require.ErrorIs(t, err, poll.ErrInvalidOptions)
}

func TestFirst(t *testing.T) {
	var calls int32
	query := func(ctx context.Context) ([]string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, nil
		}
		return []string{"newest", "older"}, nil
	}

	got, err := poll.Until(context.Background(), poll.First(query), poll.Options{Timeout: time.Second, Interval: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "newest", got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNonEmptyAndPresent(t *testing.T) {
	rows, err := poll.Until(context.Background(), poll.NonEmpty(func(ctx context.Context) ([]int, error) {
		return []int{1, 2}, nil
	}), poll.Options{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rows)

	value := 7
	got, err := poll.Until(context.Background(), poll.Present(func(ctx context.Context) (*int, error) {
		return &value, nil
	}), poll.Options{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 7, *got)

	_, err = poll.Until(context.Background(), poll.True(func(ctx context.Context) (bool, error) {
		return false, nil
	}), poll.Options{Timeout: 20 * time.Millisecond, Interval: 5 * time.Millisecond, Message: "never"})
	var timeoutErr *poll.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}
