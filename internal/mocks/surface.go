package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nanoreddit-ui-autotests/internal/ui"
)

// StaticSurface is a ui.Surface over an in-memory HTML document. Pages are
// registered per URL; click handlers and timers mutate the document to
// simulate the application reacting
type StaticSurface struct {
	mu       sync.Mutex
	doc      *goquery.Document
	url      string
	pages    map[string]string
	handlers map[string][]func(s *StaticSurface)
	timers   []*time.Timer

	// Clicks records the locator of every click, double clicks twice
	Clicks []string
}

// Verify interface compliance
var _ ui.Surface = (*StaticSurface)(nil)

// NewStaticSurface creates a surface showing html at about:blank
func NewStaticSurface(html string) *StaticSurface {
	s := &StaticSurface{
		url:      "about:blank",
		pages:    make(map[string]string),
		handlers: make(map[string][]func(s *StaticSurface)),
	}
	s.doc = mustParse(html)
	return s
}

func mustParse(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(fmt.Sprintf("static surface: invalid html: %v", err))
	}
	return doc
}

// AddPage registers the html served at url
func (s *StaticSurface) AddPage(url, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = html
}

// OnClick runs fn whenever a locator with the same description is clicked
func (s *StaticSurface) OnClick(loc ui.Locator, fn func(s *StaticSurface)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := loc.String()
	s.handlers[key] = append(s.handlers[key], fn)
}

// After runs fn once d has passed
func (s *StaticSurface) After(d time.Duration, fn func(s *StaticSurface)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, time.AfterFunc(d, func() { fn(s) }))
}

// Stop cancels pending timers
func (s *StaticSurface) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

// SetHTML replaces the whole document
func (s *StaticSurface) SetHTML(html string) {
	doc := mustParse(html)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// Append adds html as the last child of every element matching selector
func (s *StaticSurface) Append(selector, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Find(selector).AppendHtml(html)
}

// Remove deletes every element loc matches
func (s *StaticSurface) Remove(loc ui.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc.Resolve(s.doc.Selection).Remove()
}

// SetURL changes the current URL without loading a page
func (s *StaticSurface) SetURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
}

// HTML returns the current document
func (s *StaticSurface) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	html, _ := s.doc.Html()
	return html
}

func (s *StaticSurface) first(loc ui.Locator) (*goquery.Selection, error) {
	sel := loc.Resolve(s.doc.Selection)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", loc, ui.ErrNoMatch)
	}
	return sel.First(), nil
}

func (s *StaticSurface) Count(ctx context.Context, loc ui.Locator) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loc.Resolve(s.doc.Selection).Length(), nil
}

func (s *StaticSurface) Text(ctx context.Context, loc ui.Locator) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.first(loc)
	if err != nil {
		return "", err
	}
	return ui.NormalizeText(el.Text()), nil
}

func (s *StaticSurface) Value(ctx context.Context, loc ui.Locator) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.first(loc)
	if err != nil {
		return "", err
	}
	if goquery.NodeName(el) == "textarea" {
		return el.Text(), nil
	}
	return el.AttrOr("value", ""), nil
}

func (s *StaticSurface) Visible(ctx context.Context, loc ui.Locator) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.first(loc)
	if err != nil {
		return false, nil
	}
	for cur := el; cur.Length() > 0 && goquery.NodeName(cur) != "#document"; cur = cur.Parent() {
		if _, hidden := cur.Attr("hidden"); hidden {
			return false, nil
		}
		style := strings.ReplaceAll(cur.AttrOr("style", ""), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false, nil
		}
	}
	return true, nil
}

func (s *StaticSurface) Enabled(ctx context.Context, loc ui.Locator) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.first(loc)
	if err != nil {
		return false, nil
	}
	if _, disabled := el.Attr("disabled"); disabled {
		return false, nil
	}
	return el.AttrOr("aria-disabled", "false") != "true", nil
}

func (s *StaticSurface) click(loc ui.Locator) error {
	s.mu.Lock()
	if _, err := s.first(loc); err != nil {
		s.mu.Unlock()
		return err
	}
	key := loc.String()
	s.Clicks = append(s.Clicks, key)
	handlers := append([]func(*StaticSurface){}, s.handlers[key]...)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(s)
	}
	return nil
}

func (s *StaticSurface) Click(ctx context.Context, loc ui.Locator) error {
	return s.click(loc)
}

func (s *StaticSurface) DoubleClick(ctx context.Context, loc ui.Locator) error {
	if err := s.click(loc); err != nil {
		return err
	}
	return s.click(loc)
}

func (s *StaticSurface) Fill(ctx context.Context, loc ui.Locator, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.first(loc)
	if err != nil {
		return err
	}
	if goquery.NodeName(el) == "textarea" {
		el.SetText(value)
		return nil
	}
	el.SetAttr("value", value)
	return nil
}

func (s *StaticSurface) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	html, ok := s.pages[url]
	if !ok {
		return fmt.Errorf("navigate %s: no page registered", url)
	}
	s.doc = mustParse(html)
	s.url = url
	return nil
}

func (s *StaticSurface) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if html, ok := s.pages[s.url]; ok {
		s.doc = mustParse(html)
	}
	return nil
}

func (s *StaticSurface) URL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}
