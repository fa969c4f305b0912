// Package browser drives Chrome through chromedp and exposes each tab as a
// ui.Surface
package browser

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/rs/zerolog"
)

// Browser is one Chrome process shared by every test of a run. Tests get
// isolated state through NewContext
type Browser struct {
	cfg config.BrowserConfig
	app config.AppConfig
	log zerolog.Logger

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Launch starts Chrome with the configured window size and headless mode
func Launch(ctx context.Context, app config.AppConfig, cfg config.BrowserConfig, log zerolog.Logger) (*Browser, error) {
	logger := log.With().Str("component", "browser").Logger()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.Headless),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug().Msgf(format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			logger.Warn().Msgf(format, args...)
		}),
	)

	// the first Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info().
		Bool("headless", cfg.Headless).
		Int("width", cfg.WindowWidth).
		Int("height", cfg.WindowHeight).
		Msg("Browser started")

	return &Browser{
		cfg:         cfg,
		app:         app,
		log:         logger,
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		ctx:         browserCtx,
		cancel:      cancel,
	}, nil
}

// NewContext creates an isolated browser context with its own storage
func (b *Browser) NewContext() (*Context, error) {
	return b.newContext("")
}

// NewAuthenticatedContext creates an isolated context whose pages start
// with token in the application's localStorage
func (b *Browser) NewAuthenticatedContext(token string) (*Context, error) {
	if token == "" {
		return nil, fmt.Errorf("authenticated context needs a token")
	}
	return b.newContext(token)
}

func (b *Browser) newContext(token string) (*Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("browser is closed")
	}

	origin, err := originOf(b.app.BaseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(b.ctx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &Context{
		browser: b,
		ctx:     ctx,
		cancel:  cancel,
		origin:  origin,
		token:   token,
		log:     b.log.With().Bool("authenticated", token != "").Logger(),
	}, nil
}

// Close shuts Chrome down
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.cancelAlloc()
	b.log.Info().Msg("Browser closed")
	return err
}

func originOf(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
