package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/nanoreddit-ui-autotests/internal/mocks"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/poll"
	"github.com/nanoreddit-ui-autotests/internal/ui"
	"github.com/nanoreddit-ui-autotests/internal/validation"
)

// seedForum creates a forum holding n posts by one author
func seedForum(b *testing.B, n int) (*mocks.Forum, string) {
	b.Helper()
	ctx := context.Background()
	forum := mocks.NewForum(0)

	author := models.RandomUser()
	user, err := forum.Register(ctx, author)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if _, err := forum.Publish(ctx, user.ID, fmt.Sprintf("Post %06d", i), "content"); err != nil {
			b.Fatal(err)
		}
	}
	return forum, author.Email
}

// BenchmarkPollImmediate measures the overhead of a poll that succeeds on
// the first evaluation
func BenchmarkPollImmediate(b *testing.B) {
	cond := poll.True(func(ctx context.Context) (bool, error) { return true, nil })
	opts := poll.Options{Timeout: time.Second, Interval: poll.FastInterval}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := poll.Until(context.Background(), cond, opts); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFindPostByTitle measures the store lookup WaitForPost repeats
// on every poll
func BenchmarkFindPostByTitle(b *testing.B) {
	forum, email := seedForum(b, 1000)
	posts := forum.Repositories().Post

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		found, err := posts.FindByTitle(context.Background(), "Post 000500", email)
		if err != nil || len(found) != 1 {
			b.Fatalf("found %d posts: %v", len(found), err)
		}
	}
}

// BenchmarkPublishParallel measures concurrent writes into the stand-in
func BenchmarkPublishParallel(b *testing.B) {
	ctx := context.Background()
	forum := mocks.NewForum(0)
	user, err := forum.Register(ctx, models.RandomUser())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := forum.Publish(ctx, user.ID, "parallel", "content"); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchmarkLocatorResolve measures resolving a filtered locator against a
// feed snapshot of 200 cards
func BenchmarkLocatorResolve(b *testing.B) {
	var html strings.Builder
	html.WriteString("<html><body><main>")
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&html, `<div class="post-card"><h3>Post %03d</h3><p>Score: %d</p></div>`, i, i)
	}
	html.WriteString("</main></body></html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.String()))
	if err != nil {
		b.Fatal(err)
	}
	loc := ui.Locate(".post-card").Filter("Post 150").Locate("h3")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sel := loc.Resolve(doc.Selection)
		if sel.Length() != 1 {
			b.Fatalf("matched %d elements", sel.Length())
		}
		_ = ui.CSSPath(sel)
	}
}

// BenchmarkValidation benchmarks the registration validation pipeline
func BenchmarkValidation(b *testing.B) {
	validator := validation.NewValidator()
	user := models.RandomUser()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validator.ValidateRegistration(user)
	}
}

// BenchmarkMaskRow benchmarks masking sensitive columns before debug logging
func BenchmarkMaskRow(b *testing.B) {
	row := database.Row{
		"id":       "550e8400-e29b-41d4-a716-446655440000",
		"email":    "user@test.com",
		"password": "$2a$10$abcdefghijklmnopqrstuv",
		"token":    "eyJhbGciOiJIUzI1NiJ9",
		"role":     "USER",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = database.MaskRow(row)
	}
}
