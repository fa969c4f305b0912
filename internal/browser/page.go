package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/rs/zerolog"
)

// Page is one browser tab. It resolves locators against a snapshot of the
// live DOM and acts on the matched element through its CSS path
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	console *ConsoleLog
	timeout time.Duration
	log     zerolog.Logger
}

// Verify interface compliance
var _ ui.Surface = (*Page)(nil)

// Console returns the log of console messages and uncaught exceptions
func (p *Page) Console() *ConsoleLog {
	return p.console
}

// run executes actions on the tab, bounded by ctx as well as the tab itself
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *Page) snapshot(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to read DOM: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *Page) resolve(ctx context.Context, loc ui.Locator) (*goquery.Selection, error) {
	doc, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return loc.Resolve(doc.Selection), nil
}

// path returns the CSS path of the first element loc matches
func (p *Page) path(ctx context.Context, loc ui.Locator) (string, error) {
	sel, err := p.resolve(ctx, loc)
	if err != nil {
		return "", err
	}
	if sel.Length() == 0 {
		return "", fmt.Errorf("%s: %w", loc, ui.ErrNoMatch)
	}
	return ui.CSSPath(sel.First()), nil
}

func (p *Page) Count(ctx context.Context, loc ui.Locator) (int, error) {
	sel, err := p.resolve(ctx, loc)
	if err != nil {
		return 0, err
	}
	return sel.Length(), nil
}

func (p *Page) Text(ctx context.Context, loc ui.Locator) (string, error) {
	sel, err := p.resolve(ctx, loc)
	if err != nil {
		return "", err
	}
	if sel.Length() == 0 {
		return "", fmt.Errorf("%s: %w", loc, ui.ErrNoMatch)
	}
	return ui.NormalizeText(sel.First().Text()), nil
}

func (p *Page) Value(ctx context.Context, loc ui.Locator) (string, error) {
	path, err := p.path(ctx, loc)
	if err != nil {
		return "", err
	}
	var value string
	if err := p.run(ctx, chromedp.Value(path, &value, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read value of %s: %w", loc, err)
	}
	return value, nil
}

func (p *Page) Visible(ctx context.Context, loc ui.Locator) (bool, error) {
	return p.probe(ctx, loc, visibleScript)
}

func (p *Page) Enabled(ctx context.Context, loc ui.Locator) (bool, error) {
	return p.probe(ctx, loc, enabledScript)
}

// probe evaluates script against the element, reporting false when nothing
// matches or the element detached in between
func (p *Page) probe(ctx context.Context, loc ui.Locator, script string) (bool, error) {
	sel, err := p.resolve(ctx, loc)
	if err != nil {
		return false, err
	}
	if sel.Length() == 0 {
		return false, nil
	}

	var ok bool
	expr := fmt.Sprintf(script, strconv.Quote(ui.CSSPath(sel.First())))
	if err := p.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", loc, err)
	}
	return ok, nil
}

func (p *Page) Click(ctx context.Context, loc ui.Locator) error {
	path, err := p.path(ctx, loc)
	if err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.Click(path, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %s: %w", loc, err)
	}
	return nil
}

func (p *Page) DoubleClick(ctx context.Context, loc ui.Locator) error {
	path, err := p.path(ctx, loc)
	if err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.DoubleClick(path, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to double click %s: %w", loc, err)
	}
	return nil
}

// Fill replaces the field's content by typing, so the application sees
// real input events
func (p *Page) Fill(ctx context.Context, loc ui.Locator, value string) error {
	path, err := p.path(ctx, loc)
	if err != nil {
		return err
	}

	keys := value
	if keys == "" {
		keys = kb.Backspace
	}
	err = p.run(ctx,
		chromedp.Focus(path, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(selectScript, strconv.Quote(path)), nil),
		chromedp.SendKeys(path, keys, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", loc, err)
	}
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.log.Debug().Str("url", url).Msg("Navigating")
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *Page) Reload(ctx context.Context) error {
	return p.run(ctx, chromedp.Reload())
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var location string
	if err := p.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Screenshot captures the full page as PNG
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// HTML returns the serialized DOM
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read DOM: %w", err)
	}
	return html, nil
}

// ConsoleLines returns the console messages captured so far
func (p *Page) ConsoleLines() []string {
	return p.console.Lines()
}

// Close closes the tab
func (p *Page) Close() {
	if err := chromedp.Cancel(p.ctx); err != nil {
		p.log.Debug().Err(err).Msg("Page already closed")
	}
	p.cancel()
}

const visibleScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.visibility === 'hidden' || style.display === 'none') return false;
	const rect = el.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
})()`

const enabledScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	return !el.disabled && el.getAttribute('aria-disabled') !== 'true';
})()`

const selectScript = `(() => {
	const el = document.querySelector(%s);
	if (el && typeof el.select === 'function') el.select();
})()`
