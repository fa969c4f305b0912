package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/nanoreddit-ui-autotests/internal/models"
)

var userColumns = []string{"id::text AS id", "email", "username", "role", "banned_until"}

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db database.Querier
}

// NewUserRepo creates a new user repository
func NewUserRepo(db database.Querier) UserRepository {
	return &userRepo{db: db}
}

// GetByEmail returns every user row with the given email
func (r *userRepo) GetByEmail(ctx context.Context, email string) ([]*models.User, error) {
	rows, err := query(ctx, r.db, psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}))
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// FindByBanState returns the user when its ban column matches the wanted
// state, nil otherwise
func (r *userRepo) FindByBanState(ctx context.Context, email string, banned bool) (*models.User, error) {
	var banFilter sq.Sqlizer = sq.Eq{"banned_until": nil}
	if banned {
		banFilter = sq.NotEq{"banned_until": nil}
	}

	rows, err := query(ctx, r.db, psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		Where(banFilter).
		Limit(1))
	if err != nil {
		return nil, err
	}

	users, err := scanUsers(rows)
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return users[0], nil
}

// SetRole updates the role column directly
func (r *userRepo) SetRole(ctx context.Context, email, role string) (int64, error) {
	return execute(ctx, r.db, psql.Update("users").
		Set("role", role).
		Where(sq.Eq{"email": email}))
}

// DeleteByEmail removes the user; owned posts and comments cascade
func (r *userRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	return execute(ctx, r.db, psql.Delete("users").Where(sq.Eq{"email": email}))
}

func scanUsers(rows []database.Row) ([]*models.User, error) {
	users := make([]*models.User, 0, len(rows))
	for _, row := range rows {
		bannedUntil, err := row.NullTime("banned_until")
		if err != nil {
			return nil, err
		}
		users = append(users, &models.User{
			ID:          row.String("id"),
			Email:       row.String("email"),
			Username:    row.String("username"),
			Role:        row.String("role"),
			BannedUntil: bannedUntil,
		})
	}
	return users, nil
}
