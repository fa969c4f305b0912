package widgets

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nanoreddit-ui-autotests/internal/ui"
)

// CreatePostForm is the new post form
type CreatePostForm struct {
	view *ui.View

	Form    *ui.Component
	Title   *ui.Component
	Content *ui.Component
	Submit  *ui.Component
}

func NewCreatePostForm(v *ui.View) *CreatePostForm {
	const section = "Create post form"
	form := ui.Locate("[qa-data='create-post-form']")
	return &CreatePostForm{
		view:    v,
		Form:    v.ListItem(form, "Form", section),
		Title:   v.Input(form.Locate("[qa-data='create-post-title-input'] input"), "Post title", section),
		Content: v.Textarea(form.Locate("[qa-data='create-post-content-input'] textarea"), "Post content", section),
		Submit:  v.Button(form.Locate("[qa-data='create-post-submit-btn']"), "Submit new post", section),
	}
}

// CreatePost fills and submits the form
func (f *CreatePostForm) CreatePost(ctx context.Context, title, content string) error {
	f.view.Log().Info().Str("step", "create_post_form").Str("title", title).Msg("Creating post via UI")
	if err := f.Form.ShouldBeVisible(ctx); err != nil {
		return err
	}
	if err := f.Title.FillAndVerify(ctx, title); err != nil {
		return err
	}
	if err := f.Content.FillAndVerify(ctx, content); err != nil {
		return err
	}
	return f.Submit.Click(ctx)
}

// PostView is the post card on the post page
type PostView struct {
	Container *ui.Component
	Title     *ui.Component
	Content   *ui.Component
	Author    *ui.Component
	Date      *ui.Component
	VoteUp    *ui.Component
	VoteDown  *ui.Component
	Score     *ui.Component
}

func NewPostView(v *ui.View) *PostView {
	const section = "Post view"
	card := ui.Locate("[qa-data='post-card']")
	meta := card.Locate("[qa-data='post-meta']")
	votes := card.Locate("[qa-data='post-vote-block']")
	return &PostView{
		Container: v.ListItem(card, "Post card", section),
		Title:     v.Text(card.Locate(".n-card-header__main"), "Post title", section),
		Content:   v.Text(card.Locate("[qa-data='post-content']"), "Post content", section),
		Author:    v.Link(meta.Locate("[qa-data='post-author']"), "Post author", section),
		Date:      v.Text(meta.Locate("[qa-data='post-date']"), "Post date", section),
		VoteUp:    v.Button(votes.Locate("[qa-data='post-vote-up']"), "Vote up", section),
		VoteDown:  v.Button(votes.Locate("[qa-data='post-vote-down']"), "Vote down", section),
		Score:     v.Text(votes.Locate("[qa-data='post-vote-score']"), "Vote score", section),
	}
}

func (p *PostView) ShouldBeVisible(ctx context.Context) error {
	return p.Container.ShouldBeVisible(ctx)
}

func (p *PostView) ShouldHaveScore(ctx context.Context, score int) error {
	return p.Score.ShouldHaveText(ctx, strconv.Itoa(score))
}

// OpenAuthorProfile clicks the author link
func (p *PostView) OpenAuthorProfile(ctx context.Context) error {
	return p.Author.Click(ctx)
}

// preview shortens text for step logs
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= 50 {
		return text
	}
	return fmt.Sprintf("%s...", string(runes[:50]))
}
