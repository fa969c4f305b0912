package widgets

import (
	"context"
	"strconv"

	"github.com/nanoreddit-ui-autotests/internal/ui"
)

// ProfileModalTitle identifies the user profile dialog
const ProfileModalTitle = "Информация о пользователе"

// UserProfileModal shows a user's id, email, username, role and ban state
type UserProfileModal struct {
	view   *ui.View
	dialog ui.Locator

	Dialog      *ui.Component
	Close       *ui.Component
	ID          *ui.Component
	Email       *ui.Component
	Username    *ui.Component
	Role        *ui.Component
	BannedUntil *ui.Component
}

func NewUserProfileModal(v *ui.View) *UserProfileModal {
	return newUserProfileModal(v, "User profile modal")
}

func newUserProfileModal(v *ui.View, section string) *UserProfileModal {
	dialog := ui.ByRole("dialog", ProfileModalTitle).First()
	field := func(label string) ui.Locator {
		return dialog.Locate("p").Filter(label + ":")
	}
	return &UserProfileModal{
		view:        v,
		dialog:      dialog,
		Dialog:      v.ListItem(dialog, "Dialog", section),
		Close:       v.Button(dialog.Locate("button, [role='button']").First(), "Close profile modal", section),
		ID:          v.Text(field("ID"), "User ID", section),
		Email:       v.Text(field("Email"), "User email", section),
		Username:    v.Text(field("Имя пользователя"), "Username", section),
		Role:        v.Text(field("Роль"), "User role", section),
		BannedUntil: v.Text(field("Заблокирован до"), "Banned until", section),
	}
}

func (m *UserProfileModal) ShouldBeVisible(ctx context.Context) error {
	return m.Dialog.ShouldBeVisible(ctx)
}

// CloseModal closes the dialog and waits for it to disappear
func (m *UserProfileModal) CloseModal(ctx context.Context) error {
	if err := m.Close.Click(ctx); err != nil {
		return err
	}
	return m.Dialog.ShouldBeHidden(ctx)
}

func (m *UserProfileModal) ShouldShowEmail(ctx context.Context, email string) error {
	return m.Email.ShouldContainText(ctx, email)
}

func (m *UserProfileModal) ShouldShowUsername(ctx context.Context, username string) error {
	return m.Username.ShouldContainText(ctx, username)
}

func (m *UserProfileModal) ShouldShowRole(ctx context.Context, role string) error {
	return m.Role.ShouldContainText(ctx, role)
}

func (m *UserProfileModal) ShouldShowID(ctx context.Context, id string) error {
	return m.ID.ShouldContainText(ctx, id)
}

func (m *UserProfileModal) ShouldShowBannedUntil(ctx context.Context, value string) error {
	return m.BannedUntil.ShouldContainText(ctx, value)
}

// AdminUserModal is the profile modal as an admin sees it, with ban controls
type AdminUserModal struct {
	*UserProfileModal

	BanDuration *ui.Component
	Ban         *ui.Component
	Unban       *ui.Component
}

func NewAdminUserModal(v *ui.View) *AdminUserModal {
	const section = "User profile modal | Admin"
	base := newUserProfileModal(v, section)
	controls := base.dialog.Locate(".admin-controls")
	return &AdminUserModal{
		UserProfileModal: base,
		BanDuration:      v.Input(controls.Locate("input[placeholder='Секунды бана']"), "Ban duration (seconds)", section),
		Ban:              v.Button(controls.Locate("button").Filter("Забанить"), "Ban user", section),
		Unban:            v.Button(controls.Locate("button").Filter("Разбанить"), "Unban user", section),
	}
}

// BanUser bans for seconds; a negative value leaves the duration field as is
func (m *AdminUserModal) BanUser(ctx context.Context, seconds int) error {
	if seconds >= 0 {
		if err := m.BanDuration.FillAndVerify(ctx, strconv.Itoa(seconds)); err != nil {
			return err
		}
	}
	return m.submitBan(ctx)
}

// BanUserRaw types raw into the duration field before banning without
// checking what the field kept, for exercising its input coercion
func (m *AdminUserModal) BanUserRaw(ctx context.Context, raw string) error {
	if err := m.BanDuration.Fill(ctx, raw); err != nil {
		return err
	}
	return m.submitBan(ctx)
}

func (m *AdminUserModal) submitBan(ctx context.Context) error {
	m.view.Log().Info().Str("step", "ban_user").Msg("Ban user via admin modal")
	if err := m.Ban.ShouldBeEnabled(ctx); err != nil {
		return err
	}
	return m.Ban.Click(ctx)
}

func (m *AdminUserModal) UnbanUser(ctx context.Context) error {
	m.view.Log().Info().Str("step", "unban_user").Msg("Unban user via admin modal")
	return m.Unban.Click(ctx)
}
