package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/poll"
	"github.com/nanoreddit-ui-autotests/internal/repository"
	"github.com/rs/zerolog"
)

// Match selects how a wait treats several matching rows
type Match int

const (
	// MatchLatest accepts the newest matching row
	MatchLatest Match = iota
	// MatchExactlyOne fails as soon as more than one row matches
	MatchExactlyOne
)

// PostQuery identifies a post by title and, optionally, author email
type PostQuery struct {
	Title       string
	AuthorEmail string
	Timeout     time.Duration
	Match       Match
}

// CommentQuery identifies a comment by post, text and parent. A nil
// ParentID means a root comment
type CommentQuery struct {
	PostID   string
	Text     string
	ParentID *string
	Timeout  time.Duration
}

func (q CommentQuery) filter() repository.CommentFilter {
	return repository.CommentFilter{PostID: q.PostID, Text: q.Text, ParentID: q.ParentID}
}

// reconcileService is the concrete implementation of ReconcileService
type reconcileService struct {
	repos     *repository.Repositories
	cfg       config.PollConfig
	adminRole string
	log       zerolog.Logger
}

// newReconcileService creates a new ReconcileService
func newReconcileService(repos *repository.Repositories, cfg config.PollConfig, adminRole string, log zerolog.Logger) *reconcileService {
	if adminRole == "" {
		adminRole = models.RoleAdmin
	}
	return &reconcileService{
		repos:     repos,
		cfg:       cfg,
		adminRole: adminRole,
		log:       log.With().Str("service", "reconcile").Logger(),
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// seconds renders a timeout the way failure messages show it, e.g. 5 or 0.5
func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// WaitForPost polls until a post with the title (and author) is stored
func (s *reconcileService) WaitForPost(ctx context.Context, q PostQuery) (*models.Post, error) {
	timeout := orDefault(q.Timeout, s.cfg.PostTimeout)

	step := s.log.Info().Str("step", "wait_for_post").Str("title", q.Title)
	if q.AuthorEmail != "" {
		step = step.Str("author", q.AuthorEmail)
	}
	step.Dur("timeout", timeout).Msg("Waiting for post to appear in DB")

	msg := fmt.Sprintf("Post '%s'", q.Title)
	if q.AuthorEmail != "" {
		msg += " by " + q.AuthorEmail
	}
	msg += fmt.Sprintf(" not found in DB within %s seconds", seconds(timeout))

	cond := func(ctx context.Context) (*models.Post, bool, error) {
		posts, err := s.repos.Post.FindByTitle(ctx, q.Title, q.AuthorEmail)
		if err != nil {
			return nil, false, err
		}
		if len(posts) == 0 {
			return nil, false, nil
		}
		if q.Match == MatchExactlyOne && len(posts) > 1 {
			return nil, false, &AmbiguityError{Subject: "post", Key: postKey(q.Title, q.AuthorEmail), Expected: 1, Actual: len(posts)}
		}
		return posts[0], true, nil
	}

	return poll.Until(ctx, cond, poll.Options{
		Timeout:  timeout,
		Interval: s.cfg.DefaultInterval,
		Message:  msg,
	})
}

// WaitForComment polls until the comment is stored with the expected linkage
func (s *reconcileService) WaitForComment(ctx context.Context, q CommentQuery) (*models.Comment, error) {
	timeout := orDefault(q.Timeout, s.cfg.CommentTimeout)

	step := s.log.Info().Str("step", "wait_for_comment").Str("post_id", q.PostID)
	if q.ParentID != nil {
		step = step.Str("parent_id", *q.ParentID)
	}
	step.Dur("timeout", timeout).Msg("Waiting for comment to appear in DB")

	msg := fmt.Sprintf("Comment with text '%s...'", truncate(q.Text, 50))
	if q.ParentID != nil {
		msg += fmt.Sprintf(" (reply to %s)", *q.ParentID)
	}
	msg += fmt.Sprintf(" not found in DB within %s seconds", seconds(timeout))

	filter := q.filter()
	return poll.Until(ctx, poll.Present(func(ctx context.Context) (*models.Comment, error) {
		return s.repos.Comment.FindLatest(ctx, filter)
	}), poll.Options{
		Timeout:  timeout,
		Interval: s.cfg.DefaultInterval,
		Message:  msg,
	})
}

// WaitForBanStatus polls with the fast interval until the user's ban state
// matches banned
func (s *reconcileService) WaitForBanStatus(ctx context.Context, email string, banned bool, timeout time.Duration) (*models.User, error) {
	timeout = orDefault(timeout, s.cfg.BanTimeout)

	status := "unbanned"
	if banned {
		status = "banned"
	}
	s.log.Info().Str("step", "wait_for_ban_status").Str("email", email).Str("status", status).
		Dur("timeout", timeout).Msg("Waiting for user ban status in DB")

	return poll.Until(ctx, poll.Present(func(ctx context.Context) (*models.User, error) {
		return s.repos.User.FindByBanState(ctx, email, banned)
	}), poll.Options{
		Timeout:  timeout,
		Interval: s.cfg.FastInterval,
		Message:  fmt.Sprintf("User with email '%s' is not %s in DB within %s seconds", email, status, seconds(timeout)),
	})
}

// FetchSingleUser returns the only user with the email
func (s *reconcileService) FetchSingleUser(ctx context.Context, email string) (*models.User, error) {
	s.log.Info().Str("step", "fetch_single_user").Str("email", email).Msg("Fetching single user from DB")

	users, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(users) != 1 {
		return nil, &AmbiguityError{Subject: "user", Key: "email " + email, Expected: 1, Actual: len(users)}
	}
	return users[0], nil
}

// FetchSinglePost returns the only post with the title (and author)
func (s *reconcileService) FetchSinglePost(ctx context.Context, title, authorEmail string) (*models.Post, error) {
	s.log.Info().Str("step", "fetch_single_post").Str("title", title).Str("author", authorEmail).
		Msg("Fetching single post from DB")

	posts, err := s.repos.Post.FindByTitle(ctx, title, authorEmail)
	if err != nil {
		return nil, err
	}
	if len(posts) != 1 {
		return nil, &AmbiguityError{Subject: "post", Key: postKey(title, authorEmail), Expected: 1, Actual: len(posts)}
	}
	return posts[0], nil
}

func postKey(title, authorEmail string) string {
	key := fmt.Sprintf("title '%s'", title)
	if authorEmail != "" {
		key += " by author " + authorEmail
	}
	return key
}

// Count returns the exact number of rows matching filter
func (s *reconcileService) Count(ctx context.Context, table string, filter map[string]interface{}) (int, error) {
	n, err := s.repos.Table.Count(ctx, table, filter)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("step", "count").Str("table", table).Int("count", n).Msg("Counted rows in DB")
	return n, nil
}

// CountComments returns the exact number of comments with the linkage of q
func (s *reconcileService) CountComments(ctx context.Context, q CommentQuery) (int, error) {
	n, err := s.repos.Comment.Count(ctx, q.filter())
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("step", "count_comments").Str("post_id", q.PostID).Int("count", n).Msg("Counted comments in DB")
	return n, nil
}

// ClearAllPosts deletes votes, comments and posts, then waits until the
// three tables read empty
func (s *reconcileService) ClearAllPosts(ctx context.Context, timeout time.Duration) error {
	timeout = orDefault(timeout, s.cfg.CleanupTimeout)
	s.log.Info().Str("step", "clear_all_posts").Dur("timeout", timeout).Msg("Clearing posts, comments and votes")

	for _, table := range []string{repository.TableVotes, repository.TableComments, repository.TablePosts} {
		if _, err := s.repos.Table.DeleteAll(ctx, table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	var posts, comments, votes int
	_, err := poll.Until(ctx, poll.True(func(ctx context.Context) (bool, error) {
		var err error
		if posts, err = s.repos.Table.Count(ctx, repository.TablePosts, nil); err != nil {
			return false, err
		}
		if comments, err = s.repos.Table.Count(ctx, repository.TableComments, nil); err != nil {
			return false, err
		}
		if votes, err = s.repos.Table.Count(ctx, repository.TableVotes, nil); err != nil {
			return false, err
		}
		return posts == 0 && comments == 0 && votes == 0, nil
	}), poll.Options{
		Timeout:  timeout,
		Interval: s.cfg.FastInterval,
	})

	var timeoutErr *poll.TimeoutError
	if errors.As(err, &timeoutErr) {
		timeoutErr.Message = fmt.Sprintf("Tables not empty within %ss: posts=%d, comments=%d, votes=%d",
			seconds(timeout), posts, comments, votes)
	}
	return err
}

// DeleteUserByEmail removes the user and everything it owns
func (s *reconcileService) DeleteUserByEmail(ctx context.Context, email string) (int64, error) {
	n, err := s.repos.User.DeleteByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("step", "delete_user").Str("email", email).Int64("deleted", n).Msg("Deleted user from DB")
	return n, nil
}

// DeletePostByTitleAndAuthor removes the author's posts with the title
func (s *reconcileService) DeletePostByTitleAndAuthor(ctx context.Context, title, authorEmail string) (int64, error) {
	n, err := s.repos.Post.DeleteByTitleAndAuthor(ctx, title, authorEmail)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("step", "delete_post").Str("title", title).Str("author", authorEmail).
		Int64("deleted", n).Msg("Deleted post from DB")
	return n, nil
}

// PromoteToAdmin sets the admin role directly in the store
func (s *reconcileService) PromoteToAdmin(ctx context.Context, email string) error {
	n, err := s.repos.User.SetRole(ctx, email, s.adminRole)
	if err != nil {
		return fmt.Errorf("failed to promote %s: %w", email, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to promote %s: %w", email, models.ErrNotFound)
	}
	s.log.Info().Str("step", "promote_to_admin").Str("email", email).Msg("User promoted to admin")
	return nil
}
