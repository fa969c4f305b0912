package expect

import (
	"context"

	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/nanoreddit-ui-autotests/internal/ui/pages"
)

// Toast texts of the forum web app
const (
	MsgRegistrationSuccess = "Регистрация успешна"
	MsgRegistrationError   = "Ошибка регистрации"
	MsgLoginSuccess        = "Успешный вход"
	MsgLoginError          = "Ошибка входа"
	MsgPostCreated         = "Пост успешно создан"
	MsgCommentAdded        = "Комментарий добавлен"
	MsgReplyAdded          = "Ответ добавлен"
	MsgValidationError     = "Validation error"
	MsgUserBanned          = "Пользователь успешно забанен"
	MsgUserUnbanned        = "Пользователь успешно разбанен"
	MsgUserIsBanned        = "User is banned"
	MsgVoteCounted         = "Голос учтён"
)

func orDefault(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

// RegistrationSuccess expects the success toast and a redirect to login
func RegistrationSuccess(ctx context.Context, p *pages.RegisterPage) error {
	if err := SingleToast(ctx, p.View, MsgRegistrationSuccess, ToastOptions{}); err != nil {
		return err
	}
	return p.ShouldHaveURL(ctx, "login")
}

// RegistrationError expects an error toast while staying on the register
// page. An empty message means the generic registration error
func RegistrationError(ctx context.Context, p *pages.RegisterPage, message string) error {
	if err := SingleToast(ctx, p.View, orDefault(message, MsgRegistrationError), ToastOptions{}); err != nil {
		return err
	}
	return p.ShouldHaveURL(ctx, "register")
}

// LoginSuccess expects the success toast, the home page and, when email is
// set, the logged-in navbar showing it
func LoginSuccess(ctx context.Context, p *pages.LoginPage, email string) error {
	if err := SingleToast(ctx, p.View, MsgLoginSuccess, ToastOptions{}); err != nil {
		return err
	}
	if err := p.ShouldHaveURL(ctx, "/"); err != nil {
		return err
	}
	if email == "" {
		return nil
	}
	return p.Navbar.ShouldBeUserNav(ctx, email)
}

// LoginError expects the error toast while staying on the login page
func LoginError(ctx context.Context, p *pages.LoginPage) error {
	if err := SingleToast(ctx, p.View, MsgLoginError, ToastOptions{}); err != nil {
		return err
	}
	return p.ShouldHaveURL(ctx, "login")
}

func PostCreated(ctx context.Context, v *ui.View) error {
	return SingleToast(ctx, v, MsgPostCreated, ToastOptions{})
}

func CommentAdded(ctx context.Context, v *ui.View) error {
	return SingleToast(ctx, v, MsgCommentAdded, ToastOptions{})
}

func ReplyAdded(ctx context.Context, v *ui.View) error {
	return SingleToast(ctx, v, MsgReplyAdded, ToastOptions{})
}

func CommentValidationError(ctx context.Context, v *ui.View) error {
	return SingleToast(ctx, v, MsgValidationError, ToastOptions{})
}

func UserBanned(ctx context.Context, v *ui.View) error {
	return SingleToast(ctx, v, MsgUserBanned, ToastOptions{})
}

func UserUnbanned(ctx context.Context, v *ui.View) error {
	return SingleToast(ctx, v, MsgUserUnbanned, ToastOptions{})
}

// BannedUserToast expects the rejection a banned user sees when posting
func BannedUserToast(ctx context.Context, v *ui.View) error {
	return SingleToast(ctx, v, MsgUserIsBanned, ToastOptions{})
}

// LastToastContains expects the newest toast to contain message. Repeated
// actions such as voting leave several identical toasts, so the count is
// not checked
func LastToastContains(ctx context.Context, v *ui.View, message string) error {
	return v.Text(pages.Toasts().Last(), "Last toast", "Toasts").ShouldContainText(ctx, message)
}

// VoteCounted expects the vote confirmation toast
func VoteCounted(ctx context.Context, v *ui.View) error {
	return LastToastContains(ctx, v, MsgVoteCounted)
}
