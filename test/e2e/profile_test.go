//go:build e2e

package e2e

import (
	"testing"

	"github.com/nanoreddit-ui-autotests/internal/ui/pages"
	"github.com/stretchr/testify/require"
)

func TestProfileModal_ShowsUser(t *testing.T) {
	creds := user(t)
	stored, err := suite.services.Reconcile.FetchSingleUser(t.Context(), creds.Email)
	require.NoError(t, err)

	s := newUserSession(t, creds)
	home := pages.NewHomePage(s.view)
	require.NoError(t, home.Open(s.ctx))

	modal, err := home.Navbar.OpenProfile(s.ctx)
	require.NoError(t, err)
	require.NoError(t, modal.ShouldShowEmail(s.ctx, stored.Email))
	require.NoError(t, modal.ShouldShowUsername(s.ctx, stored.Username))
	require.NoError(t, modal.ShouldShowID(s.ctx, stored.ID))
	require.NoError(t, modal.ShouldShowRole(s.ctx, stored.DisplayRole()))
}

func TestProfileModal_Closes(t *testing.T) {
	creds := user(t)
	s := newUserSession(t, creds)
	home := pages.NewHomePage(s.view)
	require.NoError(t, home.Open(s.ctx))

	for i := 0; i < 2; i++ {
		modal, err := home.Navbar.OpenProfile(s.ctx)
		require.NoError(t, err)
		require.NoError(t, modal.CloseModal(s.ctx))
		require.NoError(t, modal.Dialog.ShouldBeHidden(s.ctx))
		require.NoError(t, home.Navbar.ShouldBeUserNav(s.ctx, creds.Email))
	}
}

func TestNavbar_GuestAndThemeSwitch(t *testing.T) {
	s := newSession(t)
	login := pages.NewLoginPage(s.view)
	require.NoError(t, login.Open(s.ctx))
	require.NoError(t, login.Navbar.ShouldBeGuestNav(s.ctx))

	require.NoError(t, login.Navbar.ThemeSwitch.ShouldBeVisible(s.ctx))
	require.NoError(t, login.Navbar.ToggleTheme(s.ctx))
	require.NoError(t, login.Navbar.ToggleTheme(s.ctx))
	require.NoError(t, login.Navbar.ShouldBeGuestNav(s.ctx))
}
