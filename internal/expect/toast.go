// Package expect holds the UI-side reconciliation checks: the single-toast
// assertion and the named expectations built on it
package expect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/poll"
	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/nanoreddit-ui-autotests/internal/ui/pages"
)

var (
	// ErrToastMissing means no visible toast carried the message in time
	ErrToastMissing = errors.New("toast missing")
	// ErrToastDuplicated means more than one rendered toast carried the message
	ErrToastDuplicated = errors.New("toast duplicated")
)

// DefaultRecheck bounds the second, exact-count phase of SingleToast
const DefaultRecheck = 100 * time.Millisecond

// ToastError reports a failed single-toast check. Count is the number of
// matching toasts rendered when the check gave up
type ToastError struct {
	Message string
	Count   int
	Timeout time.Duration
	kind    error
}

func (e *ToastError) Error() string {
	if errors.Is(e.kind, ErrToastMissing) {
		return fmt.Sprintf("Expected a visible toast with message '%s' within %s, but none appeared", e.Message, e.Timeout)
	}
	return fmt.Sprintf("Expected exactly one toast with message '%s', but %d toast(s) found", e.Message, e.Count)
}

func (e *ToastError) Unwrap() error {
	return e.kind
}

// ToastOptions overrides the two phase timeouts; zero values use the view
// timeout and DefaultRecheck
type ToastOptions struct {
	Timeout time.Duration
	Recheck time.Duration
}

// SingleToast waits for the newest toast to show message, then checks that
// exactly one rendered toast contains it. The second phase only observes
// the current DOM, so it runs under a short timeout
func SingleToast(ctx context.Context, v *ui.View, message string, opts ToastOptions) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = v.Timeout()
	}
	recheck := opts.Recheck
	if recheck <= 0 {
		recheck = DefaultRecheck
	}
	surface := v.Surface()
	last := pages.Toasts().Last()
	matching := pages.Toasts().Filter(message)

	v.Log().Info().Str("step", "single_toast").Str("message", message).Msg("Ensure toast contains message")

	err := v.Eventually(ctx, timeout, "", func(ctx context.Context) (bool, error) {
		text, err := surface.Text(ctx, last)
		if errors.Is(err, ui.ErrNoMatch) {
			return false, nil
		}
		if err != nil || !strings.Contains(text, message) {
			return false, err
		}
		return surface.Visible(ctx, last)
	})
	if err != nil {
		if !isTimeout(err) {
			return err
		}
		count, _ := surface.Count(ctx, matching)
		return &ToastError{Message: message, Count: count, Timeout: timeout, kind: ErrToastMissing}
	}

	var count int
	err = v.Eventually(ctx, recheck, "", func(ctx context.Context) (bool, error) {
		var err error
		count, err = surface.Count(ctx, matching)
		return count == 1, err
	})
	if err != nil {
		if !isTimeout(err) {
			return err
		}
		return &ToastError{Message: message, Count: count, Timeout: recheck, kind: ErrToastDuplicated}
	}
	return nil
}

func isTimeout(err error) bool {
	var timeoutErr *poll.TimeoutError
	return errors.As(err, &timeoutErr)
}
