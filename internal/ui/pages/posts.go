package pages

import (
	"context"

	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/nanoreddit-ui-autotests/internal/ui/widgets"
)

// HomePage is the feed at /
type HomePage struct {
	Base
	Feed *widgets.PostList
}

func NewHomePage(v *ui.View) *HomePage {
	return &HomePage{Base: newBase(v, "/"), Feed: widgets.NewPostList(v)}
}

func (p *HomePage) Open(ctx context.Context) error {
	return p.Visit(ctx)
}

func (p *HomePage) ShouldShowFeed(ctx context.Context, minPosts int) error {
	if minPosts <= 0 {
		minPosts = 1
	}
	return p.Feed.ShouldHaveAtLeast(ctx, minPosts)
}

// OpenPost opens the card with title and waits for the post page
func (p *HomePage) OpenPost(ctx context.Context, title string) (*PostPage, error) {
	card, err := p.Feed.CardByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return p.open(ctx, card)
}

// OpenPostAt opens the card at index (zero based)
func (p *HomePage) OpenPostAt(ctx context.Context, index int) (*PostPage, error) {
	card, err := p.Feed.CardAt(ctx, index)
	if err != nil {
		return nil, err
	}
	return p.open(ctx, card)
}

func (p *HomePage) open(ctx context.Context, card *widgets.PostCard) (*PostPage, error) {
	if err := card.Open(ctx); err != nil {
		return nil, err
	}
	post := NewPostPage(p.View)
	if err := post.Comments.ShouldBeVisible(ctx); err != nil {
		return nil, err
	}
	return post, nil
}

// NavigateToPost opens /post/{id} directly
func (p *HomePage) NavigateToPost(ctx context.Context, postID string) (*PostPage, error) {
	post := NewPostPage(p.View)
	if err := post.OpenByID(ctx, postID); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostPage is /create-post
type CreatePostPage struct {
	Base
	Form *widgets.CreatePostForm
}

func NewCreatePostPage(v *ui.View) *CreatePostPage {
	return &CreatePostPage{Base: newBase(v, "create-post"), Form: widgets.NewCreatePostForm(v)}
}

func (p *CreatePostPage) Open(ctx context.Context) error {
	return p.Visit(ctx)
}

func (p *CreatePostPage) CreatePost(ctx context.Context, post *models.PublishPost) error {
	return p.Form.CreatePost(ctx, post.Title, post.Content)
}

// PostPage is /post/{id}
type PostPage struct {
	Base
	Post     *widgets.PostView
	Comments *widgets.CommentsSection
}

func NewPostPage(v *ui.View) *PostPage {
	return &PostPage{
		Base:     newBase(v, ""),
		Post:     widgets.NewPostView(v),
		Comments: widgets.NewCommentsSection(v),
	}
}

// OpenByID opens the post and waits for its comment section
func (p *PostPage) OpenByID(ctx context.Context, postID string) error {
	p.path = "post/" + postID
	if err := p.Visit(ctx); err != nil {
		return err
	}
	return p.Comments.ShouldBeVisible(ctx)
}

// PostExpectation lists what the post page should display; empty fields
// are not checked
type PostExpectation struct {
	Title   string
	Content string
	Author  string
	Date    string
}

func (p *PostPage) ShouldDisplayPost(ctx context.Context, want PostExpectation) error {
	if err := p.Post.ShouldBeVisible(ctx); err != nil {
		return err
	}
	if want.Title != "" {
		if err := p.Post.Title.ShouldHaveText(ctx, want.Title); err != nil {
			return err
		}
	}
	if want.Content != "" {
		if err := p.Post.Content.ShouldContainText(ctx, want.Content); err != nil {
			return err
		}
	}
	if want.Author != "" {
		if err := p.Post.Author.ShouldContainText(ctx, want.Author); err != nil {
			return err
		}
	}
	if want.Date != "" {
		return p.Post.Date.ShouldContainText(ctx, want.Date)
	}
	return nil
}

func (p *PostPage) VoteUp(ctx context.Context) error   { return p.Post.VoteUp.Click(ctx) }
func (p *PostPage) VoteDown(ctx context.Context) error { return p.Post.VoteDown.Click(ctx) }

func (p *PostPage) AddComment(ctx context.Context, text string) error {
	return p.Comments.Form.AddComment(ctx, text)
}

func (p *PostPage) ShouldHaveComment(ctx context.Context, text string) error {
	return p.Comments.ShouldHaveCommentWithText(ctx, text)
}
