package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/repository"
)

// Forum is an in-memory forum. The application view (Register, Publish,
// ...) is always current while the store view returned by Repositories
// only sees a write once Lag has passed, like a database behind an
// asynchronous write path
type Forum struct {
	// Lag delays store visibility of every application write
	Lag time.Duration
	// QueryError, when set, is returned by every store read
	QueryError error

	queries int64

	mu       sync.Mutex
	last     time.Time
	users    map[string]*forumUser
	byEmail  map[string]string
	tokens   map[string]string
	posts    []*forumPost
	comments []*forumComment
	votes    []*forumVote
}

type userVersion struct {
	at   time.Time
	user models.User
}

type forumUser struct {
	password string
	versions []userVersion
}

type forumPost struct {
	visibleAt time.Time
	authorID  string
	post      models.Post
}

type forumComment struct {
	visibleAt time.Time
	authorID  string
	comment   models.Comment
}

type forumVote struct {
	visibleAt time.Time
	id        string
	postID    string
	userID    string
	value     int
}

// NewForum creates an empty forum with the given store lag
func NewForum(lag time.Duration) *Forum {
	return &Forum{
		Lag:     lag,
		users:   make(map[string]*forumUser),
		byEmail: make(map[string]string),
		tokens:  make(map[string]string),
	}
}

// Queries returns how many store reads were served
func (f *Forum) Queries() int {
	return int(atomic.LoadInt64(&f.queries))
}

// stamp returns a strictly increasing timestamp; caller holds mu
func (f *Forum) stamp() time.Time {
	t := time.Now()
	if !t.After(f.last) {
		t = f.last.Add(time.Microsecond)
	}
	f.last = t
	return t
}

// readClock is the instant store reads are evaluated at. It never lags
// behind a stamp already handed out; caller holds mu
func (f *Forum) readClock() time.Time {
	now := time.Now()
	if f.last.After(now) {
		return f.last
	}
	return now
}

func (u *forumUser) current() models.User {
	return u.versions[len(u.versions)-1].user
}

// visible returns the newest version the store can see at now
func (u *forumUser) visible(now time.Time) (models.User, bool) {
	for i := len(u.versions) - 1; i >= 0; i-- {
		if !u.versions[i].at.After(now) {
			return u.versions[i].user, true
		}
	}
	return models.User{}, false
}

// update appends a new version derived from the current one; caller holds mu
func (f *Forum) update(u *forumUser, at time.Time, change func(*models.User)) {
	next := u.current()
	if next.BannedUntil != nil {
		until := *next.BannedUntil
		next.BannedUntil = &until
	}
	change(&next)
	u.versions = append(u.versions, userVersion{at: at, user: next})
}

func (f *Forum) userByEmail(email string) (*forumUser, bool) {
	id, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, false
	}
	u, ok := f.users[id]
	return u, ok
}

// Register creates a user with the USER role
func (f *Forum) Register(ctx context.Context, req *models.RegisterUser) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(req.Email)
	if _, exists := f.byEmail[key]; exists {
		return nil, models.ErrEmailTaken
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleUser,
	}
	f.users[user.ID] = &forumUser{
		password: req.Password,
		versions: []userVersion{{at: f.stamp().Add(f.Lag), user: user}},
	}
	f.byEmail[key] = user.ID

	return &user, nil
}

// Login checks credentials and issues a bearer token
func (f *Forum) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.userByEmail(email)
	if !ok || u.password != password {
		return "", models.ErrInvalidCredentials
	}

	token := uuid.NewString()
	f.tokens[token] = u.current().ID
	return token, nil
}

// Authenticate resolves a bearer token to its user
func (f *Forum) Authenticate(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.tokens[token]
	if !ok {
		return nil, models.ErrUnauthorized
	}
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrUnauthorized
	}
	user := u.current()
	return &user, nil
}

// activeAuthor returns the author unless it is banned; caller holds mu
func (f *Forum) activeAuthor(userID string) (*forumUser, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, models.ErrUnauthorized
	}
	current := u.current()
	if current.Banned(time.Now()) {
		return nil, models.ErrBanned
	}
	return u, nil
}

// Publish creates a post authored by userID
func (f *Forum) Publish(ctx context.Context, userID, title, content string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	author, err := f.activeAuthor(userID)
	if err != nil {
		return nil, err
	}

	at := f.stamp()
	post := models.Post{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     content,
		CreatedAt:   at,
		AuthorEmail: author.current().Email,
	}
	f.posts = append(f.posts, &forumPost{visibleAt: at.Add(f.Lag), authorID: userID, post: post})

	return &post, nil
}

// AddComment adds a root comment, or a reply when parentID is set
func (f *Forum) AddComment(ctx context.Context, userID, postID, text string, parentID *string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.activeAuthor(userID); err != nil {
		return nil, err
	}
	if !f.postExists(postID) {
		return nil, fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
	}

	var parent *string
	if parentID != nil {
		found := false
		for _, c := range f.comments {
			if c.comment.ID == *parentID {
				if c.comment.PostID != postID {
					return nil, models.ErrInvalidParent
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("comment %s: %w", *parentID, models.ErrNotFound)
		}
		p := *parentID
		parent = &p
	}

	at := f.stamp()
	comment := models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		ParentID:  parent,
		Text:      text,
		CreatedAt: at,
	}
	f.comments = append(f.comments, &forumComment{visibleAt: at.Add(f.Lag), authorID: userID, comment: comment})

	return &comment, nil
}

// Vote records a vote of +1 or -1, replacing the user's previous vote
func (f *Forum) Vote(ctx context.Context, userID, postID string, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.activeAuthor(userID); err != nil {
		return err
	}
	if !f.postExists(postID) {
		return fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
	}
	if value != 1 && value != -1 {
		return fmt.Errorf("vote value must be 1 or -1, got %d", value)
	}

	for i, v := range f.votes {
		if v.postID == postID && v.userID == userID {
			f.votes = append(f.votes[:i], f.votes[i+1:]...)
			break
		}
	}
	f.votes = append(f.votes, &forumVote{
		visibleAt: f.stamp().Add(f.Lag),
		id:        uuid.NewString(),
		postID:    postID,
		userID:    userID,
		value:     value,
	})
	return nil
}

func (f *Forum) postExists(postID string) bool {
	for _, p := range f.posts {
		if p.post.ID == postID {
			return true
		}
	}
	return false
}

func (f *Forum) requireAdmin(actorID string) error {
	u, ok := f.users[actorID]
	if !ok {
		return models.ErrUnauthorized
	}
	if u.current().Role != models.RoleAdmin {
		return models.ErrForbidden
	}
	return nil
}

// Ban bans the user with email until the given instant
func (f *Forum) Ban(ctx context.Context, actorID, email string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireAdmin(actorID); err != nil {
		return err
	}
	u, ok := f.userByEmail(email)
	if !ok {
		return fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}

	f.update(u, f.stamp().Add(f.Lag), func(user *models.User) {
		user.BannedUntil = &until
	})
	return nil
}

// Unban clears the user's ban
func (f *Forum) Unban(ctx context.Context, actorID, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireAdmin(actorID); err != nil {
		return err
	}
	u, ok := f.userByEmail(email)
	if !ok {
		return fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}

	f.update(u, f.stamp().Add(f.Lag), func(user *models.User) {
		user.BannedUntil = nil
	})
	return nil
}

// Stats returns the store-visible row count of every table
func (f *Forum) Stats(ctx context.Context) map[string]int {
	stats := make(map[string]int, 4)
	for _, table := range []string{repository.TableUsers, repository.TablePosts, repository.TableComments, repository.TableVotes} {
		n, _ := f.tables().count(table, nil)
		stats[table] = n
	}
	return stats
}

// Repositories returns the lagged store view of the forum
func (f *Forum) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:    &forumUsers{f},
		Post:    &forumPosts{f},
		Comment: &forumComments{f},
		Table:   f.tables(),
	}
}

func (f *Forum) tables() *forumTables {
	return &forumTables{f}
}

func (f *Forum) read() error {
	atomic.AddInt64(&f.queries, 1)
	return f.QueryError
}

// forumUsers implements repository.UserRepository
type forumUsers struct{ f *Forum }

func (r *forumUsers) GetByEmail(ctx context.Context, email string) ([]*models.User, error) {
	if err := r.f.read(); err != nil {
		return nil, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	u, ok := r.f.userByEmail(email)
	if !ok {
		return nil, nil
	}
	user, ok := u.visible(r.f.readClock())
	if !ok {
		return nil, nil
	}
	return []*models.User{&user}, nil
}

func (r *forumUsers) FindByBanState(ctx context.Context, email string, banned bool) (*models.User, error) {
	users, err := r.GetByEmail(ctx, email)
	if err != nil || len(users) == 0 {
		return nil, err
	}
	if (users[0].BannedUntil != nil) != banned {
		return nil, nil
	}
	return users[0], nil
}

func (r *forumUsers) SetRole(ctx context.Context, email, role string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	u, ok := r.f.userByEmail(email)
	if !ok {
		return 0, nil
	}
	r.f.update(u, r.f.stamp(), func(user *models.User) {
		user.Role = role
	})
	return 1, nil
}

func (r *forumUsers) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	u, ok := r.f.userByEmail(email)
	if !ok {
		return 0, nil
	}
	id := u.current().ID
	delete(r.f.users, id)
	delete(r.f.byEmail, strings.ToLower(email))
	for token, owner := range r.f.tokens {
		if owner == id {
			delete(r.f.tokens, token)
		}
	}

	// cascade like the foreign keys do
	var keptPosts []*forumPost
	for _, p := range r.f.posts {
		if p.authorID != id {
			keptPosts = append(keptPosts, p)
		}
	}
	r.f.posts = keptPosts
	r.f.pruneOrphans(func(c *forumComment) bool { return c.authorID == id }, func(v *forumVote) bool { return v.userID == id })

	return 1, nil
}

// pruneOrphans drops comments and votes whose post is gone or that match
// the extra predicates; caller holds mu
func (f *Forum) pruneOrphans(dropComment func(*forumComment) bool, dropVote func(*forumVote) bool) {
	removed := make(map[string]bool)
	var kept []*forumComment
	for _, c := range f.comments {
		if !f.postExists(c.comment.PostID) || dropComment(c) {
			removed[c.comment.ID] = true
			continue
		}
		kept = append(kept, c)
	}
	// replies of removed comments go with them
	for changed := true; changed; {
		changed = false
		var next []*forumComment
		for _, c := range kept {
			if c.comment.ParentID != nil && removed[*c.comment.ParentID] {
				removed[c.comment.ID] = true
				changed = true
				continue
			}
			next = append(next, c)
		}
		kept = next
	}
	f.comments = kept

	var keptVotes []*forumVote
	for _, v := range f.votes {
		if f.postExists(v.postID) && !dropVote(v) {
			keptVotes = append(keptVotes, v)
		}
	}
	f.votes = keptVotes
}

// forumPosts implements repository.PostRepository
type forumPosts struct{ f *Forum }

func (r *forumPosts) FindByTitle(ctx context.Context, title, authorEmail string) ([]*models.Post, error) {
	if err := r.f.read(); err != nil {
		return nil, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	now := r.f.readClock()
	var posts []*models.Post
	for _, p := range r.f.posts {
		if p.visibleAt.After(now) || p.post.Title != title {
			continue
		}
		author, ok := r.f.users[p.authorID]
		if !ok {
			continue
		}
		authorRow, ok := author.visible(now)
		if !ok {
			continue
		}
		if authorEmail != "" && authorRow.Email != authorEmail {
			continue
		}
		post := p.post
		post.AuthorEmail = authorRow.Email
		posts = append(posts, &post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *forumPosts) DeleteByTitleAndAuthor(ctx context.Context, title, authorEmail string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var kept []*forumPost
	var deleted int64
	for _, p := range r.f.posts {
		author, ok := r.f.users[p.authorID]
		if ok && p.post.Title == title && strings.EqualFold(author.current().Email, authorEmail) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	r.f.posts = kept
	r.f.pruneOrphans(func(*forumComment) bool { return false }, func(*forumVote) bool { return false })

	return deleted, nil
}

// forumComments implements repository.CommentRepository
type forumComments struct{ f *Forum }

func (r *forumComments) matching(filter repository.CommentFilter) []models.Comment {
	now := r.f.readClock()
	var out []models.Comment
	for _, c := range r.f.comments {
		if c.visibleAt.After(now) || c.comment.PostID != filter.PostID || c.comment.Text != filter.Text {
			continue
		}
		if filter.ParentID == nil {
			if c.comment.ParentID != nil {
				continue
			}
		} else if c.comment.ParentID == nil || *c.comment.ParentID != *filter.ParentID {
			continue
		}
		out = append(out, c.comment)
	}
	return out
}

func (r *forumComments) FindLatest(ctx context.Context, filter repository.CommentFilter) (*models.Comment, error) {
	if err := r.f.read(); err != nil {
		return nil, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	matches := r.matching(filter)
	if len(matches) == 0 {
		return nil, nil
	}
	latest := matches[0]
	for _, c := range matches[1:] {
		if c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	return &latest, nil
}

func (r *forumComments) Count(ctx context.Context, filter repository.CommentFilter) (int, error) {
	if err := r.f.read(); err != nil {
		return 0, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	return len(r.matching(filter)), nil
}

// forumTables implements repository.TableRepository
type forumTables struct{ f *Forum }

func (r *forumTables) Count(ctx context.Context, table string, filter map[string]interface{}) (int, error) {
	if err := repository.CheckFilter(table, filter); err != nil {
		return 0, err
	}
	if err := r.f.read(); err != nil {
		return 0, err
	}
	return r.count(table, filter)
}

func (r *forumTables) count(table string, filter map[string]interface{}) (int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	rows, err := r.rows(table, r.f.readClock())
	if err != nil {
		return 0, err
	}

	n := 0
	for _, row := range rows {
		if matchesFilter(row, filter) {
			n++
		}
	}
	return n, nil
}

func (r *forumTables) rows(table string, now time.Time) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	switch table {
	case repository.TableUsers:
		for _, u := range r.f.users {
			if user, ok := u.visible(now); ok {
				rows = append(rows, map[string]interface{}{
					"id": user.ID, "email": user.Email, "username": user.Username, "role": user.Role,
				})
			}
		}
	case repository.TablePosts:
		for _, p := range r.f.posts {
			if !p.visibleAt.After(now) {
				rows = append(rows, map[string]interface{}{
					"id": p.post.ID, "title": p.post.Title, "content": p.post.Content, "author_id": p.authorID,
				})
			}
		}
	case repository.TableComments:
		for _, c := range r.f.comments {
			if !c.visibleAt.After(now) {
				row := map[string]interface{}{
					"id": c.comment.ID, "post_id": c.comment.PostID, "text": c.comment.Text, "author_id": c.authorID,
				}
				if c.comment.ParentID != nil {
					row["parent_id"] = *c.comment.ParentID
				}
				rows = append(rows, row)
			}
		}
	case repository.TableVotes:
		for _, v := range r.f.votes {
			if !v.visibleAt.After(now) {
				rows = append(rows, map[string]interface{}{
					"id": v.id, "post_id": v.postID, "user_id": v.userID, "value": v.value,
				})
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", repository.ErrUnknownTable, table)
	}
	return rows, nil
}

func matchesFilter(row, filter map[string]interface{}) bool {
	for col, want := range filter {
		got, ok := row[col]
		if want == nil {
			if ok {
				return false
			}
			continue
		}
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (r *forumTables) DeleteAll(ctx context.Context, table string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var n int64
	switch table {
	case repository.TableUsers:
		n = int64(len(r.f.users))
		r.f.users = make(map[string]*forumUser)
		r.f.byEmail = make(map[string]string)
		r.f.tokens = make(map[string]string)
		r.f.posts = nil
		r.f.comments = nil
		r.f.votes = nil
	case repository.TablePosts:
		n = int64(len(r.f.posts))
		r.f.posts = nil
		r.f.comments = nil
		r.f.votes = nil
	case repository.TableComments:
		n = int64(len(r.f.comments))
		r.f.comments = nil
	case repository.TableVotes:
		n = int64(len(r.f.votes))
		r.f.votes = nil
	default:
		return 0, fmt.Errorf("%w: %s", repository.ErrUnknownTable, table)
	}
	return n, nil
}
