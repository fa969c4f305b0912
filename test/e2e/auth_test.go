//go:build e2e

package e2e

import (
	"strings"
	"testing"

	"github.com/nanoreddit-ui-autotests/internal/expect"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/repository"
	"github.com/nanoreddit-ui-autotests/internal/ui/pages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_UserReachesStore(t *testing.T) {
	s := newSession(t)
	register := pages.NewRegisterPage(s.view)
	newUser := models.RandomUser()

	require.NoError(t, register.Open(s.ctx))
	require.NoError(t, register.RegisterUser(s.ctx, newUser))
	require.NoError(t, expect.RegistrationSuccess(s.ctx, register))

	stored, err := suite.services.Reconcile.FetchSingleUser(s.ctx, newUser.Email)
	require.NoError(t, err)
	assert.Equal(t, newUser.Username, stored.Username)
	assert.Equal(t, newUser.Email, stored.Email)
}

func TestRegister_ThenLogin(t *testing.T) {
	s := newSession(t)
	register := pages.NewRegisterPage(s.view)
	login := pages.NewLoginPage(s.view)
	newUser := models.RandomUser()

	require.NoError(t, register.Open(s.ctx))
	require.NoError(t, register.RegisterUser(s.ctx, newUser))
	require.NoError(t, expect.RegistrationSuccess(s.ctx, register))

	require.NoError(t, login.Open(s.ctx))
	require.NoError(t, login.Submit(s.ctx, newUser.Email, newUser.Password))
	require.NoError(t, expect.LoginSuccess(s.ctx, login, newUser.Email))
}

func TestRegister_MinimalValues(t *testing.T) {
	s := newSession(t)
	register := pages.NewRegisterPage(s.view)
	minimal := models.MinimalUser()

	_, err := suite.services.Reconcile.DeleteUserByEmail(s.ctx, minimal.Email)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = suite.services.Reconcile.DeleteUserByEmail(s.ctx, minimal.Email)
	})

	require.NoError(t, register.Open(s.ctx))
	require.NoError(t, register.RegisterUser(s.ctx, minimal))
	require.NoError(t, expect.RegistrationSuccess(s.ctx, register))
}

func TestRegister_ValidationErrors(t *testing.T) {
	existing := user(t)

	tests := []struct {
		name   string
		modify func(u *models.RegisterUser)
	}{
		{"empty_email", func(u *models.RegisterUser) { u.Email = "" }},
		{"empty_username", func(u *models.RegisterUser) { u.Username = "" }},
		{"empty_password", func(u *models.RegisterUser) { u.Password = "" }},
		{"mismatched_passwords", func(u *models.RegisterUser) { u.PasswordConfirmation = models.RandomUser().Password }},
		{"username_too_long", func(u *models.RegisterUser) { u.Username = strings.Repeat("u", 256) }},
		{"short_password", func(u *models.RegisterUser) { u.Password, u.PasswordConfirmation = "short", "short" }},
		{"digits_only_password", func(u *models.RegisterUser) { u.Password, u.PasswordConfirmation = "12345678", "12345678" }},
		{"existing_email", func(u *models.RegisterUser) { u.Email = existing.Email }},
		{"existing_email_upper_case", func(u *models.RegisterUser) { u.Email = strings.ToUpper(existing.Email) }},
		{"existing_username", func(u *models.RegisterUser) { u.Username = existing.Username }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			register := pages.NewRegisterPage(s.view)
			candidate := models.RandomUser()
			tt.modify(candidate)

			require.NoError(t, register.Open(s.ctx))
			require.NoError(t, register.RegisterUser(s.ctx, candidate))
			require.NoError(t, expect.RegistrationError(s.ctx, register, ""))
		})
	}
}

func TestRegister_InvalidEmailShowsFeedback(t *testing.T) {
	for _, email := range []string{"plainaddress", "missingatsign.com", "@missinglocal.com", "local@domain"} {
		t.Run(email, func(t *testing.T) {
			s := newSession(t)
			register := pages.NewRegisterPage(s.view)
			candidate := models.RandomUser()
			candidate.Email = email
			t.Cleanup(func() {
				_, _ = suite.services.Reconcile.DeleteUserByEmail(s.ctx, email)
			})

			require.NoError(t, register.Open(s.ctx))
			require.NoError(t, register.RegisterUser(s.ctx, candidate))
			require.NoError(t, register.Form.Feedback.ShouldBeVisible(s.ctx))
			require.NoError(t, register.Form.Feedback.ShouldContainText(s.ctx, "email"))
			require.NoError(t, register.ShouldHaveURL(s.ctx, "register"))
		})
	}
}

func TestRegister_DoubleClickCreatesOneUser(t *testing.T) {
	s := newSession(t)
	register := pages.NewRegisterPage(s.view)
	newUser := models.RandomUser()
	form := register.Form

	require.NoError(t, register.Open(s.ctx))
	require.NoError(t, form.Email.Fill(s.ctx, newUser.Email))
	require.NoError(t, form.Username.Fill(s.ctx, newUser.Username))
	require.NoError(t, form.Password.Fill(s.ctx, newUser.Password))
	require.NoError(t, form.PasswordConfirmation.Fill(s.ctx, newUser.PasswordConfirmation))
	require.NoError(t, form.Submit.DoubleClick(s.ctx))
	require.NoError(t, expect.RegistrationSuccess(s.ctx, register))

	count, err := suite.services.Reconcile.Count(s.ctx, repository.TableUsers, map[string]interface{}{"email": newUser.Email})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "double click created duplicate users")
}

func TestLogin_Errors(t *testing.T) {
	existing := user(t)
	other := models.RandomUser()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong_password", existing.Email, other.Password},
		{"unknown_email", other.Email, other.Password},
		{"empty_email", "", other.Password},
		{"empty_password", existing.Email, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			login := pages.NewLoginPage(s.view)

			require.NoError(t, login.Open(s.ctx))
			require.NoError(t, login.Submit(s.ctx, tt.email, tt.password))
			require.NoError(t, expect.LoginError(s.ctx, login))
		})
	}
}

func TestLogin_DoubleClick(t *testing.T) {
	existing := user(t)
	s := newSession(t)
	login := pages.NewLoginPage(s.view)

	require.NoError(t, login.Open(s.ctx))
	require.NoError(t, login.Form.Email.Fill(s.ctx, existing.Email))
	require.NoError(t, login.Form.Password.Fill(s.ctx, existing.Password))
	require.NoError(t, login.Form.Submit.DoubleClick(s.ctx))
	require.NoError(t, expect.LoginSuccess(s.ctx, login, existing.Email))
}
