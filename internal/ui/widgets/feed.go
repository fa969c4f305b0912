package widgets

import (
	"context"
	"fmt"

	"github.com/nanoreddit-ui-autotests/internal/ui"
)

// EmptyFeedMessage is shown when there are no posts
const EmptyFeedMessage = "Пока нет постов"

// PostList is the home page feed
type PostList struct {
	view  *ui.View
	list  ui.Locator
	cards ui.Locator

	List      *ui.Component
	Cards     *ui.Component
	Wrapper   *ui.Component
	EmptyText *ui.Component
}

func NewPostList(v *ui.View) *PostList {
	const section = "Feed"
	list := ui.Locate("[qa-data='home-post-list']")
	cards := ui.Locate("[qa-data='home-post-item']")
	return &PostList{
		view:      v,
		list:      list,
		cards:     cards,
		List:      v.ListItem(list, "Post list", section),
		Cards:     v.ListItem(cards, "Post cards", section),
		Wrapper:   v.ListItem(ui.Locate("[qa-data='home-posts-card']"), "Feed card", section),
		EmptyText: v.Text(ui.Locate("[qa-data='home-empty-posts'] .n-empty__description"), "Empty feed", section),
	}
}

// ShouldBeVisible waits for the list container, or the first card when the
// layout renders cards without one
func (l *PostList) ShouldBeVisible(ctx context.Context) error {
	n, err := l.List.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return l.List.ShouldBeVisible(ctx)
	}
	return l.view.ListItem(l.cards.First(), "First post card", "Feed").ShouldBeVisible(ctx)
}

// ShouldHaveAtLeast waits until the feed shows at least n cards
func (l *PostList) ShouldHaveAtLeast(ctx context.Context, n int) error {
	if err := l.ShouldBeVisible(ctx); err != nil {
		return err
	}
	var actual int
	err := l.view.Eventually(ctx, 0, "", func(ctx context.Context) (bool, error) {
		var err error
		actual, err = l.Cards.Count(ctx)
		return actual >= n, err
	})
	if err != nil {
		return fmt.Errorf("feed list contains %d posts, expected at least %d: %w", actual, n, err)
	}
	return nil
}

// CardAt returns the card at index (zero based)
func (l *PostList) CardAt(ctx context.Context, index int) (*PostCard, error) {
	if err := l.ShouldBeVisible(ctx); err != nil {
		return nil, err
	}
	total, err := l.Cards.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("feed list is empty, cannot fetch a card")
	}
	if index < 0 || index >= total {
		return nil, fmt.Errorf("feed card index %d is out of range (total: %d)", index, total)
	}

	card := newPostCard(l.view, l.cards.Nth(index), fmt.Sprintf("#%d", index+1))
	if err := card.ShouldBeVisible(ctx); err != nil {
		return nil, err
	}
	return card, nil
}

// CardByTitle returns the first card whose text contains title
func (l *PostList) CardByTitle(ctx context.Context, title string) (*PostCard, error) {
	if err := l.ShouldBeVisible(ctx); err != nil {
		return nil, err
	}
	card := newPostCard(l.view, l.cards.Filter(title).First(), title)
	if err := card.ShouldBeVisible(ctx); err != nil {
		return nil, err
	}
	return card, nil
}

// ShouldShowEmptyState checks the placeholder shown for an empty feed
func (l *PostList) ShouldShowEmptyState(ctx context.Context, message string) error {
	if message == "" {
		message = EmptyFeedMessage
	}
	if err := l.Wrapper.ShouldBeVisible(ctx); err != nil {
		return err
	}
	if err := l.Cards.ShouldHaveCount(ctx, 0); err != nil {
		return err
	}
	return l.EmptyText.ShouldContainText(ctx, message)
}

// PostCard is one post in the feed
type PostCard struct {
	Label string

	Container *ui.Component
	Link      *ui.Component
	Title     *ui.Component
	Content   *ui.Component
	Meta      *ui.Component
	Author    *ui.Component
	Date      *ui.Component
}

func newPostCard(v *ui.View, loc ui.Locator, label string) *PostCard {
	section := fmt.Sprintf("Post card (%s)", label)
	return &PostCard{
		Label:     label,
		Container: v.ListItem(loc, "Post card "+label, section),
		Link:      v.Link(loc.Locate("[qa-data='home-post-link']"), "Post link", section),
		Title:     v.Text(loc.Locate("[qa-data='home-post-title']"), "Title", section),
		Content:   v.Text(loc.Locate("[qa-data='home-post-content']"), "Content preview", section),
		Meta:      v.Text(loc.Locate("[qa-data='home-post-meta']"), "Meta block", section),
		Author:    v.Text(loc.Locate("[qa-data='home-post-author']"), "Author", section),
		Date:      v.Text(loc.Locate("[qa-data='home-post-date']"), "Publish date", section),
	}
}

func (c *PostCard) ShouldBeVisible(ctx context.Context) error {
	return c.Container.ShouldBeVisible(ctx)
}

func (c *PostCard) ShouldHaveTitle(ctx context.Context, title string) error {
	return c.Title.ShouldHaveText(ctx, title)
}

func (c *PostCard) ShouldContainContent(ctx context.Context, fragment string) error {
	return c.Content.ShouldContainText(ctx, fragment)
}

func (c *PostCard) ShouldDisplayAuthor(ctx context.Context, author string) error {
	return c.Author.ShouldContainText(ctx, author)
}

func (c *PostCard) ShouldDisplayDate(ctx context.Context, fragment string) error {
	return c.Date.ShouldContainText(ctx, fragment)
}

// Open follows the card link to the post page
func (c *PostCard) Open(ctx context.Context) error {
	return c.Link.Click(ctx)
}
