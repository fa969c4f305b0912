package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingQuerier captures statements and replays canned rows
type recordingQuerier struct {
	sql      []string
	args     [][]interface{}
	rows     []database.Row
	affected int64
	err      error
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, args ...interface{}) ([]database.Row, error) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
	return q.rows, q.err
}

func (q *recordingQuerier) Execute(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
	return q.affected, q.err
}

func (q *recordingQuerier) last() (string, []interface{}) {
	return q.sql[len(q.sql)-1], q.args[len(q.args)-1]
}

func TestPostRepo_FindByTitle(t *testing.T) {
	older := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)
	q := &recordingQuerier{rows: []database.Row{
		{"id": "p-2", "title": "T", "content": "c", "created_at": newer, "email": "a@x.io"},
		{"id": "p-1", "title": "T", "content": "c", "created_at": older, "email": "a@x.io"},
	}}
	repo := NewPostRepo(q)

	posts, err := repo.FindByTitle(context.Background(), "T", "a@x.io")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p-2", posts[0].ID)
	assert.Equal(t, "a@x.io", posts[0].AuthorEmail)
	assert.True(t, posts[0].CreatedAt.Equal(newer))

	sql, args := q.last()
	assert.Equal(t,
		"SELECT p.id::text AS id, p.title, p.content, p.created_at, u.email FROM posts p "+
			"JOIN users u ON u.id = p.author_id WHERE p.title = $1 AND u.email = $2 ORDER BY p.created_at DESC",
		sql)
	assert.Equal(t, []interface{}{"T", "a@x.io"}, args)
}

func TestPostRepo_FindByTitleAnyAuthor(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewPostRepo(q)

	posts, err := repo.FindByTitle(context.Background(), "T", "")
	require.NoError(t, err)
	assert.Empty(t, posts)

	sql, args := q.last()
	assert.NotContains(t, sql, "u.email =")
	assert.Equal(t, []interface{}{"T"}, args)
}

func TestPostRepo_DeleteByTitleAndAuthor(t *testing.T) {
	q := &recordingQuerier{affected: 1}
	repo := NewPostRepo(q)

	n, err := repo.DeleteByTitleAndAuthor(context.Background(), "T", "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sql, args := q.last()
	assert.Equal(t, "DELETE FROM posts WHERE title = $1 AND author_id IN (SELECT id FROM users WHERE email = $2)", sql)
	assert.Equal(t, []interface{}{"T", "a@x.io"}, args)
}

func TestCommentRepo_RootAndReplyFilters(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewCommentRepo(q)
	ctx := context.Background()

	got, err := repo.FindLatest(ctx, CommentFilter{PostID: "p-1", Text: "hello"})
	require.NoError(t, err)
	assert.Nil(t, got)

	sql, args := q.last()
	assert.Equal(t,
		"SELECT id::text AS id, text, parent_id::text AS parent_id, post_id::text AS post_id, created_at "+
			"FROM comments WHERE post_id::text = $1 AND text = $2 AND parent_id IS NULL ORDER BY created_at DESC LIMIT 1",
		sql)
	assert.Equal(t, []interface{}{"p-1", "hello"}, args)

	parent := "c-1"
	q.rows = []database.Row{{
		"id": "c-2", "text": "reply", "parent_id": "c-1", "post_id": "p-1",
		"created_at": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	got, err = repo.FindLatest(ctx, CommentFilter{PostID: "p-1", Text: "reply", ParentID: &parent})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, "c-1", *got.ParentID)
	assert.True(t, got.IsReply())

	sql, args = q.last()
	assert.Contains(t, sql, "parent_id::text = $3")
	assert.NotContains(t, sql, "IS NULL")
	assert.Equal(t, []interface{}{"p-1", "reply", "c-1"}, args)
}

func TestCommentRepo_Count(t *testing.T) {
	q := &recordingQuerier{rows: []database.Row{{"n": int64(2)}}}
	repo := NewCommentRepo(q)

	n, err := repo.Count(context.Background(), CommentFilter{PostID: "p-1", Text: "dup"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sql, _ := q.last()
	assert.Equal(t, "SELECT COUNT(*) AS n FROM comments WHERE post_id::text = $1 AND text = $2 AND parent_id IS NULL", sql)
}

func TestUserRepo_FindByBanState(t *testing.T) {
	until := time.Now().Add(time.Hour)
	q := &recordingQuerier{rows: []database.Row{{
		"id": "u-1", "email": "a@x.io", "username": "a", "role": "USER", "banned_until": until,
	}}}
	repo := NewUserRepo(q)

	user, err := repo.FindByBanState(context.Background(), "a@x.io", true)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, user.BannedUntil)
	assert.True(t, user.Banned(time.Now()))

	sql, args := q.last()
	assert.Equal(t,
		"SELECT id::text AS id, email, username, role, banned_until FROM users WHERE email = $1 AND banned_until IS NOT NULL LIMIT 1",
		sql)
	assert.Equal(t, []interface{}{"a@x.io"}, args)

	q.rows = nil
	user, err = repo.FindByBanState(context.Background(), "a@x.io", false)
	require.NoError(t, err)
	assert.Nil(t, user)
	sql, _ = q.last()
	assert.Contains(t, sql, "banned_until IS NULL")
}

func TestUserRepo_SetRoleAndDelete(t *testing.T) {
	q := &recordingQuerier{affected: 1}
	repo := NewUserRepo(q)
	ctx := context.Background()

	_, err := repo.SetRole(ctx, "a@x.io", "ADMIN")
	require.NoError(t, err)
	sql, args := q.last()
	assert.Equal(t, "UPDATE users SET role = $1 WHERE email = $2", sql)
	assert.Equal(t, []interface{}{"ADMIN", "a@x.io"}, args)

	_, err = repo.DeleteByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	sql, _ = q.last()
	assert.Equal(t, "DELETE FROM users WHERE email = $1", sql)
}

func TestTableRepo_WhitelistsTables(t *testing.T) {
	q := &recordingQuerier{rows: []database.Row{{"n": int64(0)}}}
	repo := NewTableRepo(q)
	ctx := context.Background()

	_, err := repo.Count(ctx, "users; DROP TABLE users", nil)
	require.ErrorIs(t, err, ErrUnknownTable)
	_, err = repo.DeleteAll(ctx, "jobs")
	require.ErrorIs(t, err, ErrUnknownTable)
	assert.Empty(t, q.sql, "rejected tables must not reach the store")

	n, err := repo.Count(ctx, TableComments, map[string]interface{}{"text": "x"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	sql, args := q.last()
	assert.Equal(t, "SELECT COUNT(*) AS n FROM comments WHERE text = $1", sql)
	assert.Equal(t, []interface{}{"x"}, args)
}

func TestTableRepo_WhitelistsFilterColumns(t *testing.T) {
	q := &recordingQuerier{rows: []database.Row{{"n": int64(2)}}}
	repo := NewTableRepo(q)
	ctx := context.Background()

	_, err := repo.Count(ctx, TableUsers, map[string]interface{}{"1=1 OR email": "x"})
	require.ErrorIs(t, err, ErrUnknownColumn)
	_, err = repo.Count(ctx, TableVotes, map[string]interface{}{"text": "x"})
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Empty(t, q.sql, "rejected filters must not reach the store")

	n, err := repo.Count(ctx, TableComments, map[string]interface{}{"post_id": "p-1", "parent_id": nil})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	sql, _ := q.last()
	assert.Equal(t, "SELECT COUNT(*) AS n FROM comments WHERE parent_id IS NULL AND post_id = $1", sql)

	_, err = repo.DeleteAll(ctx, TableVotes)
	require.NoError(t, err)
	sql, _ = q.last()
	assert.Equal(t, "DELETE FROM votes", sql)
}

func TestRepositories_PropagateStoreErrors(t *testing.T) {
	boom := errors.New("SQL query failed: connection refused")
	repos := New(&recordingQuerier{err: boom})
	ctx := context.Background()

	_, err := repos.Post.FindByTitle(ctx, "T", "")
	assert.ErrorIs(t, err, boom)
	_, err = repos.Comment.Count(ctx, CommentFilter{PostID: "p", Text: "t"})
	assert.ErrorIs(t, err, boom)
	_, err = repos.User.GetByEmail(ctx, "a@x.io")
	assert.ErrorIs(t, err, boom)
	_, err = repos.Table.DeleteAll(ctx, TablePosts)
	assert.ErrorIs(t, err, boom)
}
