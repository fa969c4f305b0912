package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/nanoreddit-ui-autotests/internal/models"
)

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db database.Querier
}

// NewPostRepo creates a new post repository
func NewPostRepo(db database.Querier) PostRepository {
	return &postRepo{db: db}
}

// FindByTitle joins posts with their author and orders newest first
func (r *postRepo) FindByTitle(ctx context.Context, title, authorEmail string) ([]*models.Post, error) {
	b := psql.Select("p.id::text AS id", "p.title", "p.content", "p.created_at", "u.email").
		From("posts p").
		Join("users u ON u.id = p.author_id").
		Where(sq.Eq{"p.title": title})
	if authorEmail != "" {
		b = b.Where(sq.Eq{"u.email": authorEmail})
	}

	rows, err := query(ctx, r.db, b.OrderBy("p.created_at DESC"))
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(rows))
	for _, row := range rows {
		createdAt, err := row.Time("created_at")
		if err != nil {
			return nil, err
		}
		posts = append(posts, &models.Post{
			ID:          row.String("id"),
			Title:       row.String("title"),
			Content:     row.String("content"),
			CreatedAt:   createdAt,
			AuthorEmail: row.String("email"),
		})
	}
	return posts, nil
}

// DeleteByTitleAndAuthor removes the author's posts with that title
func (r *postRepo) DeleteByTitleAndAuthor(ctx context.Context, title, authorEmail string) (int64, error) {
	return execute(ctx, r.db, psql.Delete("posts").
		Where(sq.Eq{"title": title}).
		Where(sq.Expr("author_id IN (SELECT id FROM users WHERE email = ?)", authorEmail)))
}
