package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
)

type activityTypeRepository struct {
	exec core.DBExecutor
}

var _ activity.Repository = (*activityTypeRepository)(nil) // interface compliance check

func NewActivityTypeRepository(exec core.DBExecutor) *activityTypeRepository {
	return &activityTypeRepository{exec: exec}
}

const activityTypeColumns = `key, name, category, goal, modifier, base_points, max_count, max_points, is_active, created_at, updated_at`

func (repo activityTypeRepository) scan(row *sql.Row) (activity.ActivityType, error) {
	var at activity.ActivityType
	err := row.Scan(
		&at.Key, &at.Name, &at.Category, &at.Goal, &at.Modifier,
		&at.BasePoints, &at.MaxCount, &at.MaxPoints, &at.IsActive,
		&at.CreatedAt, &at.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return activity.ActivityType{}, activity.ErrNotFound
	}
	if err != nil {
		return activity.ActivityType{}, errors.Wrap(err, "scanning activity type")
	}
	return at, nil
}

func (repo activityTypeRepository) CheckActivityKeyUniqueness(ctx context.Context, key string, exec ...core.DBExecutor) error {
	var exists bool
	err := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM activity_type WHERE key = $1)`, key).
		Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking activity key uniqueness")
	}
	if exists {
		return activity.ErrDuplicateKey
	}
	return nil
}

func (repo activityTypeRepository) CreateActivityType(ctx context.Context, at activity.ActivityType, exec ...core.DBExecutor) (activity.ActivityType, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO activity_type (`+activityTypeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		at.Key, at.Name, at.Category, at.Goal, at.Modifier,
		at.BasePoints, at.MaxCount, at.MaxPoints, at.IsActive,
		at.CreatedAt, at.UpdatedAt,
	)
	if err != nil {
		return activity.ActivityType{}, errors.Wrap(err, "inserting activity type")
	}
	return at, nil
}

func (repo activityTypeRepository) GetActivityTypeByKey(ctx context.Context, key string, exec ...core.DBExecutor) (activity.ActivityType, error) {
	row := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT `+activityTypeColumns+` FROM activity_type WHERE key = $1`, key)
	return repo.scan(row)
}

func (repo activityTypeRepository) QueryActivityTypes(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]activity.ActivityType, error) {
	query := `SELECT ` + activityTypeColumns + ` FROM activity_type`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY category, key`

	rows, err := getExec(repo.exec, exec).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying activity types")
	}
	defer func() { _ = rows.Close() }()

	var types []activity.ActivityType
	for rows.Next() {
		var at activity.ActivityType
		if err := rows.Scan(
			&at.Key, &at.Name, &at.Category, &at.Goal, &at.Modifier,
			&at.BasePoints, &at.MaxCount, &at.MaxPoints, &at.IsActive,
			&at.CreatedAt, &at.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scanning activity type")
		}
		types = append(types, at)
	}
	return types, errors.Wrap(rows.Err(), "iterating activity types")
}

func (repo activityTypeRepository) UpdateActivityType(ctx context.Context, at activity.ActivityType, exec ...core.DBExecutor) (activity.ActivityType, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE activity_type
		SET name = $2, goal = $3, base_points = $4, max_count = $5, max_points = $6, is_active = $7, updated_at = $8
		WHERE key = $1`,
		at.Key, at.Name, at.Goal, at.BasePoints, at.MaxCount, at.MaxPoints, at.IsActive, at.UpdatedAt,
	)
	if err != nil {
		return activity.ActivityType{}, errors.Wrap(err, "updating activity type")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.ActivityType{}, activity.ErrNotFound
	}
	return at, nil
}
