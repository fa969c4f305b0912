package widgets

import (
	"context"
	"fmt"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/ui"
)

// CommentsSection is the comment card under a post
type CommentsSection struct {
	view  *ui.View
	items ui.Locator

	Container *ui.Component
	Items     *ui.Component
	Form      *CommentForm
}

func NewCommentsSection(v *ui.View) *CommentsSection {
	container := ui.Locate("[qa-data='post-comments-card']")
	items := container.Locate("[qa-data='post-comments-list']").Locate("[qa-data='post-comment-item']")
	return &CommentsSection{
		view:      v,
		items:     items,
		Container: v.ListItem(container, "Comments card", "Post comments"),
		Items:     v.ListItem(items, "Comment items", "Post comments"),
		Form:      newCommentForm(v),
	}
}

func (s *CommentsSection) ShouldBeVisible(ctx context.Context) error {
	return s.Container.ShouldBeVisible(ctx)
}

// ShouldHaveAtLeast waits until at least n comments are listed
func (s *CommentsSection) ShouldHaveAtLeast(ctx context.Context, n int) error {
	var actual int
	err := s.view.Eventually(ctx, 0, "", func(ctx context.Context) (bool, error) {
		var err error
		actual, err = s.Items.Count(ctx)
		return actual >= n, err
	})
	if err != nil {
		return fmt.Errorf("expected at least %d comments, found %d: %w", n, actual, err)
	}
	return nil
}

// CommentAt returns the comment at index (zero based)
func (s *CommentsSection) CommentAt(ctx context.Context, index int) (*CommentItem, error) {
	total, err := s.Items.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("no comments present")
	}
	if index < 0 || index >= total {
		return nil, fmt.Errorf("comment index %d is out of range (total %d)", index, total)
	}
	item := newCommentItem(s.view, s.items.Nth(index), fmt.Sprintf("#%d", index+1))
	if err := item.Container.ShouldBeVisible(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

// ShouldHaveCommentWithText waits until exactly one comment contains text
func (s *CommentsSection) ShouldHaveCommentWithText(ctx context.Context, text string) error {
	return s.view.ListItem(s.items.Filter(text), fmt.Sprintf("Comment %q", preview(text)), "Post comments").
		ShouldHaveCount(ctx, 1)
}

// CommentForm adds a root comment
type CommentForm struct {
	view *ui.View

	Text   *ui.Component
	Submit *ui.Component
}

func newCommentForm(v *ui.View) *CommentForm {
	const section = "Post comments | Form"
	container := ui.Locate("[qa-data='post-comment-form']")
	return &CommentForm{
		view:   v,
		Text:   v.Textarea(container.Locate("[qa-data='post-comment-input'] textarea"), "Comment textarea", section),
		Submit: v.Button(container.Locate("[qa-data='post-comment-submit-btn']"), "Submit comment", section),
	}
}

// AddComment types text and submits it
func (f *CommentForm) AddComment(ctx context.Context, text string) error {
	f.view.Log().Info().Str("step", "add_comment").Str("text", preview(text)).Msg("Submit comment")
	if err := f.Text.FillAndVerify(ctx, text); err != nil {
		return err
	}
	if err := f.Submit.ShouldBeEnabled(ctx); err != nil {
		return err
	}
	return f.Submit.Click(ctx)
}

// CommentItem is one comment, root or reply
type CommentItem struct {
	view    *ui.View
	replies ui.Locator

	Container   *ui.Component
	Author      *ui.Component
	Text        *ui.Component
	ReplyButton *ui.Component
	ReplyText   *ui.Component
	ReplySubmit *ui.Component
}

func newCommentItem(v *ui.View, loc ui.Locator, label string) *CommentItem {
	section := fmt.Sprintf("Post comments | Comment (%s)", label)
	return &CommentItem{
		view:        v,
		replies:     loc.Locate("[qa-data='comment-replies-list']").Locate("[qa-data='comment-card']"),
		Container:   v.ListItem(loc, "Comment", section),
		Author:      v.Link(loc.Locate("[qa-data='comment-author']").First(), "Comment author", section),
		Text:        v.Text(loc.Locate("[qa-data='comment-text']").First(), "Comment text", section),
		ReplyButton: v.Button(loc.Locate("[qa-data='comment-reply-btn']").First(), "Reply button", section),
		ReplyText:   v.Textarea(loc.Locate("[qa-data='comment-reply-input'] textarea").First(), "Reply textarea", section),
		ReplySubmit: v.Button(loc.Locate("[qa-data='comment-reply-submit-btn']").First(), "Reply submit button", section),
	}
}

func (c *CommentItem) ShouldContainText(ctx context.Context, text string) error {
	return c.Text.ShouldContainText(ctx, text)
}

func (c *CommentItem) ShouldShowAuthor(ctx context.Context, author string) error {
	return c.Author.ShouldContainText(ctx, author)
}

// Reply opens the reply box, types text and submits it
func (c *CommentItem) Reply(ctx context.Context, text string) error {
	c.view.Log().Info().Str("step", "reply").Str("text", preview(text)).Msg("Reply to comment")
	if err := c.ReplyButton.Click(ctx); err != nil {
		return err
	}
	if err := c.ReplyText.FillAndVerify(ctx, text); err != nil {
		return err
	}
	return c.ReplySubmit.Click(ctx)
}

// Replies returns the replies currently rendered under the comment
func (c *CommentItem) Replies(ctx context.Context) ([]*CommentItem, error) {
	n, err := c.view.Surface().Count(ctx, c.replies)
	if err != nil {
		return nil, err
	}
	items := make([]*CommentItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, newCommentItem(c.view, c.replies.Nth(i), fmt.Sprintf("reply #%d", i+1)))
	}
	return items, nil
}

// WaitForReplyWithText waits until the comment has exactly one reply and
// returns it once it contains text
func (c *CommentItem) WaitForReplyWithText(ctx context.Context, text string, timeout time.Duration) (*CommentItem, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	err := c.view.Eventually(ctx, timeout, fmt.Sprintf("expected exactly one reply within %s", timeout), func(ctx context.Context) (bool, error) {
		n, err := c.view.Surface().Count(ctx, c.replies)
		return n == 1, err
	})
	if err != nil {
		return nil, err
	}

	replies, err := c.Replies(ctx)
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		if reply.ShouldContainText(ctx, text) == nil {
			return reply, nil
		}
	}
	return nil, fmt.Errorf("reply with text '%s' not found", text)
}
