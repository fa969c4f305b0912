// Package pages holds one page object per route of the forum web app
package pages

import (
	"context"

	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/nanoreddit-ui-autotests/internal/ui/widgets"
)

// ToastSelector matches the text of a notification toast
const ToastSelector = ".n-message__content"

// Base is embedded by every page. path is relative to the base URL
type Base struct {
	View   *ui.View
	Navbar *widgets.Navbar
	path   string
}

func newBase(v *ui.View, path string) Base {
	return Base{View: v, Navbar: widgets.NewNavbar(v), path: path}
}

// URL is the absolute address of the page
func (b *Base) URL() string {
	return b.View.URL(b.path)
}

// Visit opens the page
func (b *Base) Visit(ctx context.Context) error {
	return b.View.Visit(ctx, b.path)
}

func (b *Base) Reload(ctx context.Context) error {
	return b.View.Reload(ctx)
}

func (b *Base) ShouldHaveURL(ctx context.Context, fragment string) error {
	return b.View.ShouldHaveURL(ctx, fragment)
}

// Toasts matches every rendered toast
func Toasts() ui.Locator {
	return ui.Locate(ToastSelector)
}

// LastToast matches the most recent toast
func (b *Base) LastToast() ui.Locator {
	return Toasts().Last()
}
