package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/nanoreddit-ui-autotests/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db database.Querier
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db database.Querier) CommentRepository {
	return &commentRepo{db: db}
}

func (f CommentFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	b = b.Where(sq.Expr("post_id::text = ?", f.PostID)).
		Where(sq.Eq{"text": f.Text})
	if f.ParentID == nil {
		return b.Where(sq.Eq{"parent_id": nil})
	}
	return b.Where(sq.Expr("parent_id::text = ?", *f.ParentID))
}

// FindLatest returns the newest matching comment or nil
func (r *commentRepo) FindLatest(ctx context.Context, filter CommentFilter) (*models.Comment, error) {
	b := psql.Select("id::text AS id", "text", "parent_id::text AS parent_id", "post_id::text AS post_id", "created_at").
		From("comments")

	rows, err := query(ctx, r.db, filter.apply(b).OrderBy("created_at DESC").Limit(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	row := rows[0]
	createdAt, err := row.Time("created_at")
	if err != nil {
		return nil, err
	}
	return &models.Comment{
		ID:        row.String("id"),
		PostID:    row.String("post_id"),
		ParentID:  row.NullString("parent_id"),
		Text:      row.String("text"),
		CreatedAt: createdAt,
	}, nil
}

// Count returns the number of matching comments
func (r *commentRepo) Count(ctx context.Context, filter CommentFilter) (int, error) {
	rows, err := query(ctx, r.db, filter.apply(psql.Select("COUNT(*) AS n").From("comments")))
	if err != nil {
		return 0, err
	}
	return countFrom(rows)
}
