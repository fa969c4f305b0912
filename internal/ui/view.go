package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/poll"
	"github.com/rs/zerolog"
)

// View is one open page: the Surface plus the timing and base URL every
// component on it shares
type View struct {
	surface    Surface
	baseURL    string
	timeout    time.Duration
	navTimeout time.Duration
	interval   time.Duration
	log        zerolog.Logger
}

// NewView wraps surface for the application at app.BaseURL
func NewView(surface Surface, app config.AppConfig, browser config.BrowserConfig, log zerolog.Logger) *View {
	timeout := browser.DefaultTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	navTimeout := browser.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 15 * time.Second
	}
	return &View{
		surface:    surface,
		baseURL:    strings.TrimRight(app.BaseURL, "/"),
		timeout:    timeout,
		navTimeout: navTimeout,
		interval:   poll.FastInterval,
		log:        log.With().Str("component", "ui").Logger(),
	}
}

// Surface returns the underlying capability
func (v *View) Surface() Surface {
	return v.surface
}

// Timeout is how long assertions wait by default
func (v *View) Timeout() time.Duration {
	return v.timeout
}

// Log returns the view's logger
func (v *View) Log() *zerolog.Logger {
	return &v.log
}

// URL joins path to the application base URL
func (v *View) URL(path string) string {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return v.baseURL
	}
	return v.baseURL + "/" + path
}

// Visit opens path relative to the base URL and waits for the load event
func (v *View) Visit(ctx context.Context, path string) error {
	target := v.URL(path)
	v.log.Info().Str("step", "visit").Str("url", target).Msg("Opening page")

	navCtx, cancel := context.WithTimeout(ctx, v.navTimeout)
	defer cancel()
	if err := v.surface.Navigate(navCtx, target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// Reload reloads the current page
func (v *View) Reload(ctx context.Context) error {
	v.log.Info().Str("step", "reload").Msg("Reloading page")

	navCtx, cancel := context.WithTimeout(ctx, v.navTimeout)
	defer cancel()
	return v.surface.Reload(navCtx)
}

// Eventually polls check at the DOM interval until it holds or timeout
// passes. A zero timeout means the view default. message is used verbatim on
// failure
func (v *View) Eventually(ctx context.Context, timeout time.Duration, message string, check func(ctx context.Context) (bool, error)) error {
	if timeout <= 0 {
		timeout = v.timeout
	}
	_, err := poll.Until(ctx, poll.True(check), poll.Options{
		Timeout:  timeout,
		Interval: v.interval,
		Message:  message,
	})
	return err
}

// ShouldHaveURL waits until the current URL contains fragment
func (v *View) ShouldHaveURL(ctx context.Context, fragment string) error {
	var last string
	err := v.WaitForURL(ctx, func(u string) bool {
		last = u
		return strings.Contains(u, fragment)
	})
	if err != nil {
		return fmt.Errorf("expected URL containing %q, got %q: %w", fragment, last, err)
	}
	return nil
}

// WaitForURL waits until match accepts the current URL
func (v *View) WaitForURL(ctx context.Context, match func(url string) bool) error {
	return v.Eventually(ctx, 0, fmt.Sprintf("URL did not match within %s", v.timeout), func(ctx context.Context) (bool, error) {
		current, err := v.surface.URL(ctx)
		if err != nil {
			return false, err
		}
		return match(current), nil
	})
}

// Button returns a clickable component
func (v *View) Button(loc Locator, name, section string) *Component {
	return v.component(KindButton, loc, name, section)
}

// Link returns a navigation component
func (v *View) Link(loc Locator, name, section string) *Component {
	return v.component(KindLink, loc, name, section)
}

// Input returns a text input component
func (v *View) Input(loc Locator, name, section string) *Component {
	return v.component(KindInput, loc, name, section)
}

// Textarea returns a multi-line input component
func (v *View) Textarea(loc Locator, name, section string) *Component {
	return v.component(KindTextarea, loc, name, section)
}

// Text returns a read-only text component
func (v *View) Text(loc Locator, name, section string) *Component {
	return v.component(KindText, loc, name, section)
}

// ListItem returns a container component such as a feed card
func (v *View) ListItem(loc Locator, name, section string) *Component {
	return v.component(KindListItem, loc, name, section)
}

func (v *View) component(kind Kind, loc Locator, name, section string) *Component {
	return &Component{view: v, loc: loc, kind: kind, name: name, section: section}
}
