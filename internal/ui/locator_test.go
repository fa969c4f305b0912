package ui_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedHTML = `<html><body>
<nav><span qa-data="navbar-user-info">alice@example.com</span></nav>
<div qa-data="home-post-list">
  <div qa-data="home-post-item"><a qa-data="home-post-link"><h3 qa-data="home-post-title">First   post</h3></a></div>
  <div qa-data="home-post-item"><a qa-data="home-post-link"><h3 qa-data="home-post-title">Second post</h3></a></div>
  <div qa-data="home-post-item"><a qa-data="home-post-link"><h3 qa-data="home-post-title">Third post</h3></a></div>
</div>
<div role="menuitem">Главная</div><div role="menuitem">Войти</div>
<input placeholder="Секунды бана" value="60">
</body></html>`

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestLocator_ChainFilterAndPick(t *testing.T) {
	doc := parse(t, feedHTML)
	cards := ui.Locate("[qa-data='home-post-item']")

	assert.Equal(t, 3, cards.Resolve(doc.Selection).Length())
	assert.Equal(t, "First post", ui.NormalizeText(cards.First().Resolve(doc.Selection).Text()))
	assert.Equal(t, "Third post", ui.NormalizeText(cards.Last().Resolve(doc.Selection).Text()))
	assert.Equal(t, "Second post", ui.NormalizeText(cards.Nth(1).Resolve(doc.Selection).Text()))
	assert.Equal(t, 0, cards.Nth(7).Resolve(doc.Selection).Length())

	second := cards.Filter("Second").Locate("[qa-data='home-post-title']")
	assert.Equal(t, "Second post", second.Resolve(doc.Selection).Text())

	// whitespace in the DOM does not defeat text filters
	assert.Equal(t, 1, cards.Filter("First post").Resolve(doc.Selection).Length())
	assert.Equal(t, 0, cards.Filter("post").Filter("Fourth").Resolve(doc.Selection).Length())
	assert.Equal(t, 1, cards.Filter("post").Filter("Third").Resolve(doc.Selection).Length())
}

func TestLocator_IsImmutable(t *testing.T) {
	doc := parse(t, feedHTML)
	base := ui.Locate("[qa-data='home-post-item']")
	_ = base.First()
	_ = base.Filter("Second")
	_ = base.Locate("a")

	assert.Equal(t, 3, base.Resolve(doc.Selection).Length())
	assert.Equal(t, "[qa-data='home-post-item']", base.String())
}

func TestLocator_RoleAndPlaceholder(t *testing.T) {
	doc := parse(t, feedHTML)

	assert.Equal(t, "Войти", ui.ByRole("menuitem", "Войти").Resolve(doc.Selection).Text())
	assert.Equal(t, "60", ui.ByPlaceholder("Секунды бана").Resolve(doc.Selection).AttrOr("value", ""))
}

func TestLocator_String(t *testing.T) {
	loc := ui.Locate(".n-message__content").Filter("Успешный вход").Last()
	assert.Equal(t, `.n-message__content >> has-text="Успешный вход" >> last`, loc.String())
	assert.True(t, ui.Locator{}.IsZero())
}

func TestCSSPath_AddressesTheSameElement(t *testing.T) {
	doc := parse(t, feedHTML)
	target := ui.Locate("[qa-data='home-post-title']").Nth(2).Resolve(doc.Selection)
	require.Equal(t, 1, target.Length())

	path := ui.CSSPath(target)
	assert.True(t, strings.HasPrefix(path, "html > body:nth-child(2) > "), path)

	found := doc.Find(path)
	require.Equal(t, 1, found.Length())
	assert.Equal(t, "Third post", found.Text())
}
