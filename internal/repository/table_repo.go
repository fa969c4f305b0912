package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/nanoreddit-ui-autotests/internal/database"
)

// tableRepo is the concrete implementation of TableRepository
type tableRepo struct {
	db database.Querier
}

// NewTableRepo creates a new table repository
func NewTableRepo(db database.Querier) TableRepository {
	return &tableRepo{db: db}
}

// Count returns the number of rows matching every column = value pair in filter
func (r *tableRepo) Count(ctx context.Context, table string, filter map[string]interface{}) (int, error) {
	if err := CheckFilter(table, filter); err != nil {
		return 0, err
	}

	b := psql.Select("COUNT(*) AS n").From(table)
	if len(filter) > 0 {
		b = b.Where(sq.Eq(filter))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return 0, err
	}
	return countFrom(rows)
}

// DeleteAll removes every row of the table
func (r *tableRepo) DeleteAll(ctx context.Context, table string) (int64, error) {
	if err := CheckFilter(table, nil); err != nil {
		return 0, err
	}
	return execute(ctx, r.db, psql.Delete(table))
}
