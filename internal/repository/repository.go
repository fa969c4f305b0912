package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/nanoreddit-ui-autotests/internal/models"
)

// psql builds statements with PostgreSQL $n placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ErrUnknownTable is returned for tables outside the forum schema
var ErrUnknownTable = errors.New("unknown table")

// ErrUnknownColumn is returned for filter columns the table does not have
var ErrUnknownColumn = errors.New("unknown column")

// Tables the table repository may count or purge
const (
	TableUsers    = "users"
	TablePosts    = "posts"
	TableComments = "comments"
	TableVotes    = "votes"
)

// tableColumns is the forum schema as far as counts and filters may see it
var tableColumns = map[string]map[string]bool{
	TableUsers:    columns("id", "email", "username", "role", "banned_until", "created_at"),
	TablePosts:    columns("id", "author_id", "title", "content", "created_at"),
	TableComments: columns("id", "post_id", "author_id", "parent_id", "text", "created_at"),
	TableVotes:    columns("id", "post_id", "user_id", "value", "created_at"),
}

func columns(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// CheckFilter rejects tables outside the forum schema and filter keys that
// are not columns of the table. Both end up in SQL text unquoted
func CheckFilter(table string, filter map[string]interface{}) error {
	cols, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	for col := range filter {
		if !cols[col] {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, col)
		}
	}
	return nil
}

// CommentFilter selects comments of one post by text. A nil ParentID
// matches root comments only
type CommentFilter struct {
	PostID   string
	Text     string
	ParentID *string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) ([]*models.User, error)
	FindByBanState(ctx context.Context, email string, banned bool) (*models.User, error)
	SetRole(ctx context.Context, email, role string) (int64, error)
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// FindByTitle returns matching posts newest first. An empty authorEmail
	// matches any author
	FindByTitle(ctx context.Context, title, authorEmail string) ([]*models.Post, error)
	DeleteByTitleAndAuthor(ctx context.Context, title, authorEmail string) (int64, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	FindLatest(ctx context.Context, filter CommentFilter) (*models.Comment, error)
	Count(ctx context.Context, filter CommentFilter) (int, error)
}

// TableRepository counts and purges whole tables
type TableRepository interface {
	Count(ctx context.Context, table string, filter map[string]interface{}) (int, error)
	DeleteAll(ctx context.Context, table string) (int64, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Post    PostRepository
	Comment CommentRepository
	Table   TableRepository
}

// New creates all repositories over the given store
func New(db database.Querier) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Post:    NewPostRepo(db),
		Comment: NewCommentRepo(db),
		Table:   NewTableRepo(db),
	}
}

func query(ctx context.Context, db database.Querier, b sq.Sqlizer) ([]database.Row, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return db.Query(ctx, sqlStr, args...)
}

func execute(ctx context.Context, db database.Querier, b sq.Sqlizer) (int64, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	return db.Execute(ctx, sqlStr, args...)
}

func countFrom(rows []database.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := rows[0].Int("n")
	return int(n), err
}
