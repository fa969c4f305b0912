package ui_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/mocks"
	"github.com/nanoreddit-ui-autotests/internal/poll"
	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formHTML = `<html><body>
<form qa-data="create-post-form">
  <div qa-data="create-post-title-input"><input value=""></div>
  <div qa-data="create-post-content-input"><textarea></textarea></div>
  <button qa-data="create-post-submit-btn" disabled>Создать</button>
  <p qa-data="hint" style="display: none">hidden hint</p>
</form>
</body></html>`

func newView(surface ui.Surface, timeout time.Duration) *ui.View {
	return ui.NewView(surface,
		config.AppConfig{BaseURL: "http://app.local/"},
		config.BrowserConfig{DefaultTimeout: timeout, NavigationTimeout: time.Second},
		zerolog.Nop())
}

func TestComponent_FillAndVerify(t *testing.T) {
	surface := mocks.NewStaticSurface(formHTML)
	view := newView(surface, 300*time.Millisecond)
	ctx := context.Background()

	title := view.Input(ui.Locate("[qa-data='create-post-title-input'] input"), "Post title", "Create post form")
	content := view.Textarea(ui.Locate("[qa-data='create-post-content-input'] textarea"), "Post content", "Create post form")

	require.NoError(t, title.FillAndVerify(ctx, "Hello"))
	require.NoError(t, content.FillAndVerify(ctx, "Body text"))
	assert.Equal(t, "[Create post form] Post title", title.Name())
}

func TestComponent_ClickWaitsUntilEnabled(t *testing.T) {
	surface := mocks.NewStaticSurface(formHTML)
	defer surface.Stop()
	view := newView(surface, time.Second)
	submit := view.Button(ui.Locate("[qa-data='create-post-submit-btn']"), "Submit", "")

	surface.After(150*time.Millisecond, func(s *mocks.StaticSurface) {
		s.SetHTML(`<html><body><button qa-data="create-post-submit-btn">Создать</button></body></html>`)
	})

	start := time.Now()
	require.NoError(t, submit.Click(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
	assert.Equal(t, []string{submit.Locator().String()}, surface.Clicks)
}

func TestComponent_ClickTimesOutOnDisabled(t *testing.T) {
	surface := mocks.NewStaticSurface(formHTML)
	view := newView(surface, 200*time.Millisecond)
	submit := view.Button(ui.Locate("[qa-data='create-post-submit-btn']"), "Submit", "Create post form")

	err := submit.Click(context.Background())

	var assertErr *ui.AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Contains(t, err.Error(), "[Create post form] Submit: expected to be visible and enabled")
	assert.Contains(t, err.Error(), "last seen disabled")

	var timeoutErr *poll.TimeoutError
	assert.True(t, errors.As(err, &timeoutErr))
	assert.Empty(t, surface.Clicks)
}

func TestComponent_VisibilityAndText(t *testing.T) {
	surface := mocks.NewStaticSurface(formHTML)
	view := newView(surface, 200*time.Millisecond)
	ctx := context.Background()

	hint := view.Text(ui.Locate("[qa-data='hint']"), "Hint", "")
	require.NoError(t, hint.ShouldBeHidden(ctx))
	require.Error(t, hint.ShouldBeVisible(ctx))
	require.NoError(t, hint.ShouldHaveText(ctx, "hidden   hint"))
	require.NoError(t, hint.ShouldContainText(ctx, "hint"))
	require.NoError(t, hint.ShouldNotContainText(ctx, "shown"))

	missing := view.Text(ui.Locate("[qa-data='nope']"), "Missing", "")
	err := missing.ShouldHaveText(ctx, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last seen no matching element")
	require.NoError(t, missing.ShouldBeHidden(ctx))
	require.NoError(t, missing.ShouldHaveCount(ctx, 0))
}

func TestComponent_EnabledAndCount(t *testing.T) {
	surface := mocks.NewStaticSurface(formHTML)
	view := newView(surface, 200*time.Millisecond)
	ctx := context.Background()

	submit := view.Button(ui.Locate("button"), "Submit", "")
	require.NoError(t, submit.ShouldBeDisabled(ctx))
	require.Error(t, submit.ShouldBeEnabled(ctx))
	require.NoError(t, submit.ShouldHaveCount(ctx, 1))

	n, err := submit.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestView_VisitAndURL(t *testing.T) {
	surface := mocks.NewStaticSurface("<html></html>")
	surface.AddPage("http://app.local/login", formHTML)
	view := newView(surface, 200*time.Millisecond)
	ctx := context.Background()

	assert.Equal(t, "http://app.local", view.URL("/"))
	assert.Equal(t, "http://app.local/post/42", view.URL("post/42"))

	require.NoError(t, view.Visit(ctx, "/login"))
	require.NoError(t, view.ShouldHaveURL(ctx, "login"))

	err := view.ShouldHaveURL(ctx, "register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected URL containing "register", got "http://app.local/login"`)

	require.Error(t, view.Visit(ctx, "/unknown"))
}

func TestView_LogWritesThroughViewLogger(t *testing.T) {
	var buf bytes.Buffer
	view := ui.NewView(mocks.NewStaticSurface(formHTML),
		config.AppConfig{BaseURL: "http://app.local"},
		config.BrowserConfig{DefaultTimeout: time.Second},
		zerolog.New(&buf))

	view.Log().Info().Str("step", "login_form").Msg("Logging in")
	view.Log().Debug().Msg("still the same logger")

	out := buf.String()
	assert.Contains(t, out, `"component":"ui"`)
	assert.Contains(t, out, `"step":"login_form"`)
	assert.Contains(t, out, `"message":"Logging in"`)
	assert.Contains(t, out, "still the same logger")
}
