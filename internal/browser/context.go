package browser

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Context is an isolated browser context: pages opened from it share
// cookies and storage with each other and nothing else
type Context struct {
	browser *Browser
	ctx     context.Context
	cancel  context.CancelFunc
	origin  string
	token   string
	log     zerolog.Logger

	mu    sync.Mutex
	pages []*Page
}

// NewPage opens a tab in the context, paired with its console log sink
func (c *Context) NewPage() (*Page, error) {
	tabCtx, cancel := chromedp.NewContext(c.ctx)
	console := newConsoleLog()
	chromedp.ListenTarget(tabCtx, console.listen)

	actions := []chromedp.Action{
		chromedp.EmulateViewport(int64(c.browser.cfg.WindowWidth), int64(c.browser.cfg.WindowHeight)),
	}
	if c.token != "" {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(tokenScript(c.origin, c.browser.cfg.TokenStorageKey, c.token)).Do(ctx)
			return err
		}))
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	p := &Page{
		ctx:     tabCtx,
		cancel:  cancel,
		console: console,
		timeout: c.browser.cfg.DefaultTimeout,
		log:     c.log,
	}

	c.mu.Lock()
	c.pages = append(c.pages, p)
	c.mu.Unlock()
	return p, nil
}

// Close closes every page and the context itself
func (c *Context) Close() error {
	c.mu.Lock()
	pages := c.pages
	c.pages = nil
	c.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
	err := chromedp.Cancel(c.ctx)
	c.cancel()
	return err
}

// tokenScript stores the bearer token before any application script runs,
// only on the application's origin
func tokenScript(origin, key, token string) string {
	if key == "" {
		key = "token"
	}
	return fmt.Sprintf(`(() => { if (window.location.origin === %s) { window.localStorage.setItem(%s, %s); } })();`,
		strconv.Quote(origin), strconv.Quote(key), strconv.Quote(token))
}
