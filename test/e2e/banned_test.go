//go:build e2e

package e2e

import (
	"context"
	"testing"

	"github.com/nanoreddit-ui-autotests/internal/expect"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/ui/pages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bannedSession logs a freshly banned user in through the login form
func bannedSession(t *testing.T) *session {
	t.Helper()
	ctx := context.Background()

	admin, err := suite.services.Provision.CreateAdmin(ctx, nil)
	require.NoError(t, err)
	banned, err := suite.services.Provision.CreateBannedUser(ctx, admin)
	require.NoError(t, err)

	s := newSession(t)
	login := pages.NewLoginPage(s.view)
	require.NoError(t, login.Open(s.ctx))
	require.NoError(t, login.LoginUser(s.ctx, banned.Login()))
	require.NoError(t, expect.LoginSuccess(s.ctx, login, banned.Email))
	return s
}

func TestBannedUser_CannotPublish(t *testing.T) {
	s := bannedSession(t)
	create := pages.NewCreatePostPage(s.view)

	require.NoError(t, create.Open(s.ctx))
	require.NoError(t, create.CreatePost(s.ctx, models.RandomPost()))
	require.NoError(t, expect.BannedUserToast(s.ctx, s.view))
	require.NoError(t, create.ShouldHaveURL(s.ctx, "create-post"))
}

func TestBannedUser_CannotVote(t *testing.T) {
	created, _ := post(t, user(t))
	s := bannedSession(t)

	home := pages.NewHomePage(s.view)
	require.NoError(t, home.Open(s.ctx))
	postPage, err := home.OpenPost(s.ctx, created.Title)
	require.NoError(t, err)
	require.NoError(t, postPage.Post.ShouldHaveScore(s.ctx, 0))

	require.NoError(t, postPage.VoteUp(s.ctx))
	require.NoError(t, expect.BannedUserToast(s.ctx, s.view))
	require.NoError(t, postPage.Post.ShouldHaveScore(s.ctx, 0))
}

func TestBannedUser_CannotComment(t *testing.T) {
	created, _ := post(t, user(t))
	s := bannedSession(t)

	home := pages.NewHomePage(s.view)
	require.NoError(t, home.Open(s.ctx))
	postPage, err := home.OpenPost(s.ctx, created.Title)
	require.NoError(t, err)

	before, err := postPage.Comments.Items.Count(s.ctx)
	require.NoError(t, err)

	require.NoError(t, postPage.AddComment(s.ctx, models.RandomComment().Text))
	require.NoError(t, expect.BannedUserToast(s.ctx, s.view))

	after, err := postPage.Comments.Items.Count(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBannedUser_CannotReply(t *testing.T) {
	postID, existing, err := suite.services.Provision.CreatePostWithComment(context.Background(), user(t), nil, "")
	require.NoError(t, err)
	s := bannedSession(t)

	postPage := pages.NewPostPage(s.view)
	require.NoError(t, postPage.OpenByID(s.ctx, postID))
	require.NoError(t, postPage.Comments.ShouldHaveCommentWithText(s.ctx, existing))

	item, err := postPage.Comments.CommentAt(s.ctx, 0)
	require.NoError(t, err)
	before, err := item.Replies(s.ctx)
	require.NoError(t, err)

	require.NoError(t, item.Reply(s.ctx, models.RandomReply().Text))
	require.NoError(t, expect.BannedUserToast(s.ctx, s.view))

	after, err := item.Replies(s.ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}
