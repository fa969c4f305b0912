package pages

import (
	"context"
	"strings"

	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/nanoreddit-ui-autotests/internal/ui/widgets"
)

// LoginPage is /login
type LoginPage struct {
	Base
	Form *widgets.LoginForm
}

func NewLoginPage(v *ui.View) *LoginPage {
	return &LoginPage{Base: newBase(v, "login"), Form: widgets.NewLoginForm(v)}
}

func (p *LoginPage) Open(ctx context.Context) error {
	return p.Visit(ctx)
}

// Login submits the form and waits to land on the home page
func (p *LoginPage) Login(ctx context.Context, email, password string) error {
	if err := p.Submit(ctx, email, password); err != nil {
		return err
	}
	return p.View.WaitForURL(ctx, func(u string) bool {
		return strings.HasSuffix(u, "/") && !strings.Contains(u, "/login")
	})
}

// Submit submits the form without waiting for a redirect, for failing logins
func (p *LoginPage) Submit(ctx context.Context, email, password string) error {
	return p.Form.Login(ctx, email, password)
}

func (p *LoginPage) LoginUser(ctx context.Context, user models.LoginUser) error {
	return p.Login(ctx, user.Email, user.Password)
}

// RegisterPage is /register
type RegisterPage struct {
	Base
	Form *widgets.RegisterForm
}

func NewRegisterPage(v *ui.View) *RegisterPage {
	return &RegisterPage{Base: newBase(v, "register"), Form: widgets.NewRegisterForm(v)}
}

func (p *RegisterPage) Open(ctx context.Context) error {
	return p.Visit(ctx)
}

func (p *RegisterPage) RegisterUser(ctx context.Context, user *models.RegisterUser) error {
	return p.Form.Register(ctx, user)
}
