package ui

import (
	"context"
	"errors"
)

// ErrNoMatch is returned by Surface reads and actions when the locator
// matches no element
var ErrNoMatch = errors.New("no element matches locator")

// Surface is the UI capability the page objects are written against. Reads
// and actions address the first element the locator matches; Count and the
// boolean probes report zero or false instead of ErrNoMatch
type Surface interface {
	Count(ctx context.Context, loc Locator) (int, error)
	Text(ctx context.Context, loc Locator) (string, error)
	Value(ctx context.Context, loc Locator) (string, error)
	Visible(ctx context.Context, loc Locator) (bool, error)
	Enabled(ctx context.Context, loc Locator) (bool, error)

	Click(ctx context.Context, loc Locator) error
	DoubleClick(ctx context.Context, loc Locator) error
	Fill(ctx context.Context, loc Locator, value string) error

	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	URL(ctx context.Context) (string, error)
}
