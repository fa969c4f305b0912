package widgets

import (
	"context"

	"github.com/nanoreddit-ui-autotests/internal/ui"
)

// Navbar is the top navigation bar. Its links depend on whether a user is
// logged in
type Navbar struct {
	view *ui.View

	Nav         *ui.Component
	Logo        *ui.Component
	Home        *ui.Component
	Login       *ui.Component
	Register    *ui.Component
	CreatePost  *ui.Component
	ThemeSwitch *ui.Component
	Logout      *ui.Component
	UserEmail   *ui.Component
}

func NewNavbar(v *ui.View) *Navbar {
	const section = "Navbar"
	return &Navbar{
		view:        v,
		Nav:         v.ListItem(ui.Locate("nav"), "Navigation", section),
		Logo:        v.Link(ui.Locate("[qa-data='navbar-logo']"), "Logo", section),
		Home:        v.Link(ui.ByRole("menuitem", "Главная"), "Главная", section),
		Login:       v.Link(ui.ByRole("menuitem", "Войти"), "Войти", section),
		Register:    v.Link(ui.ByRole("menuitem", "Регистрация"), "Регистрация", section),
		CreatePost:  v.Link(ui.ByRole("menuitem", "Создать пост"), "Создать пост", section),
		ThemeSwitch: v.Button(ui.Locate("nav .navbar-right [role='switch']"), "Theme switch", section),
		Logout:      v.Button(ui.ByRole("button", "Выйти"), "Logout", section),
		UserEmail:   v.Link(ui.Locate("[qa-data='navbar-user-info']"), "User email", section),
	}
}

func (n *Navbar) GoHome(ctx context.Context) error       { return n.Home.Click(ctx) }
func (n *Navbar) OpenLogin(ctx context.Context) error    { return n.Login.Click(ctx) }
func (n *Navbar) OpenRegister(ctx context.Context) error { return n.Register.Click(ctx) }
func (n *Navbar) ToggleTheme(ctx context.Context) error  { return n.ThemeSwitch.Click(ctx) }

func (n *Navbar) ShouldBeVisible(ctx context.Context) error {
	return n.Nav.ShouldBeVisible(ctx)
}

// ShouldBeGuestNav checks the logged-out menu
func (n *Navbar) ShouldBeGuestNav(ctx context.Context) error {
	for _, check := range []func(context.Context) error{
		n.Login.ShouldBeVisible,
		n.Register.ShouldBeVisible,
		func(ctx context.Context) error { return n.Logout.ShouldHaveCount(ctx, 0) },
		func(ctx context.Context) error { return n.CreatePost.ShouldHaveCount(ctx, 0) },
	} {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ShouldBeUserNav checks the logged-in menu, and the shown email when given
func (n *Navbar) ShouldBeUserNav(ctx context.Context, email string) error {
	for _, c := range []*ui.Component{n.CreatePost, n.Logout, n.UserEmail} {
		if err := c.ShouldBeVisible(ctx); err != nil {
			return err
		}
	}
	if email != "" {
		return n.UserEmail.ShouldContainText(ctx, email)
	}
	return nil
}

// OpenProfile opens the current user's profile modal
func (n *Navbar) OpenProfile(ctx context.Context) (*UserProfileModal, error) {
	if err := n.UserEmail.Click(ctx); err != nil {
		return nil, err
	}
	modal := NewUserProfileModal(n.view)
	if err := modal.ShouldBeVisible(ctx); err != nil {
		return nil, err
	}
	return modal, nil
}
