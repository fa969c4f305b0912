// Package widgets holds the reusable parts of the forum pages
package widgets

import (
	"context"

	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/ui"
)

// LoginForm is the email/password form on the login page
type LoginForm struct {
	view *ui.View

	Email    *ui.Component
	Password *ui.Component
	Submit   *ui.Component
}

func NewLoginForm(v *ui.View) *LoginForm {
	const section = "Login form"
	return &LoginForm{
		view:     v,
		Email:    v.Input(ui.Locate("[qa-data='login-email-input'] input"), "Email", section),
		Password: v.Input(ui.Locate("[qa-data='login-password-input'] input"), "Password", section),
		Submit:   v.Button(ui.Locate("[qa-data='login-submit-btn']"), "Submit login", section),
	}
}

// Login fills both fields and submits
func (f *LoginForm) Login(ctx context.Context, email, password string) error {
	f.view.Log().Info().Str("step", "login_form").Str("email", email).Msg("Logging in")
	if err := f.Email.FillAndVerify(ctx, email); err != nil {
		return err
	}
	if err := f.Password.Fill(ctx, password); err != nil {
		return err
	}
	return f.Submit.Click(ctx)
}

// RegisterForm is the sign-up form
type RegisterForm struct {
	view *ui.View

	Email                *ui.Component
	Username             *ui.Component
	Password             *ui.Component
	PasswordConfirmation *ui.Component
	Submit               *ui.Component
	Feedback             *ui.Component
}

func NewRegisterForm(v *ui.View) *RegisterForm {
	const section = "Register form"
	return &RegisterForm{
		view:                 v,
		Email:                v.Input(ui.Locate("[qa-data='register-email-input'] input"), "Email", section),
		Username:             v.Input(ui.Locate("[qa-data='register-username-input'] input"), "Username", section),
		Password:             v.Input(ui.Locate("[qa-data='register-password-input'] input"), "Password", section),
		PasswordConfirmation: v.Input(ui.Locate("[qa-data='register-password-confirm-input'] input"), "Password confirmation", section),
		Submit:               v.Button(ui.Locate("[qa-data='register-submit-btn']"), "Submit registration", section),
		Feedback:             v.Text(ui.Locate(".n-form-item-feedback").First(), "Field feedback", section),
	}
}

// Register fills the form from user and submits it. An empty confirmation
// repeats the password
func (f *RegisterForm) Register(ctx context.Context, user *models.RegisterUser) error {
	f.view.Log().Info().Str("step", "register_form").Str("email", user.Email).Msg("Registering a new user via UI")

	confirmation := user.PasswordConfirmation
	if confirmation == "" {
		confirmation = user.Password
	}
	if err := f.Email.FillAndVerify(ctx, user.Email); err != nil {
		return err
	}
	if err := f.Username.FillAndVerify(ctx, user.Username); err != nil {
		return err
	}
	if err := f.Password.Fill(ctx, user.Password); err != nil {
		return err
	}
	if err := f.PasswordConfirmation.Fill(ctx, confirmation); err != nil {
		return err
	}
	return f.Submit.Click(ctx)
}
