package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var _ UserRepository = (*UserRepo)(nil)

// UserRepo exposes the slim slice of user data the pipeline needs:
// timezone preferences and the "last refreshed" staleness stamp.
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetTimezone(ctx context.Context, profileID string) (string, error) {
	var timezone string
	err := r.db.QueryRowContext(ctx, `
		SELECT u.timezone
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE p.id = ?
	`, profileID).Scan(&timezone)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user timezone: %w", err)
	}

	return timezone, nil
}

func (r *UserRepo) StampRefreshed(ctx context.Context, userIDs []string, at time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(userIDs)+1)
	args = append(args, at.UTC())
	for _, id := range userIDs {
		args = append(args, id)
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET last_refreshed_at = ?
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to stamp refreshed users: %w", err)
	}

	return nil
}
