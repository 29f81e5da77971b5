package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepo)(nil)

// SourceRepo handles database operations for external calendar sources
type SourceRepo struct {
	db *DB
}

func NewSourceRepo(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

const sourceColumns = `id, platform, source_team_id, feed_url, team_name, sport,
       sync_status, sync_error, last_synced_at, created_at, updated_at`

func (r *SourceRepo) GetSources(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SourceRepo) GetSource(ctx context.Context, id string) (*Source, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		WHERE id = ?
	`, id)

	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepo) GetSourceCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func (r *SourceRepo) GetMappedProfiles(ctx context.Context, sourceID string) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.name, p.created_at
		FROM profiles p
		JOIN source_profiles sp ON sp.profile_id = p.id
		WHERE sp.source_id = ?
		ORDER BY p.created_at
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mapped profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}

	return profiles, nil
}

func (r *SourceRepo) ClaimSync(ctx context.Context, sourceID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND sync_status != ?
	`, SyncStatusPending, sourceID, SyncStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to claim sync: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}

	return affected == 1, nil
}

func (r *SourceRepo) FinishSync(ctx context.Context, sourceID, status, message string, syncedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET sync_status = ?, sync_error = ?, last_synced_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, message, syncedAt.UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to finish sync: %w", err)
	}
	return nil
}

func (r *SourceRepo) UpdateTeamName(ctx context.Context, sourceID, teamName string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET team_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, teamName, sourceID)
	if err != nil {
		return fmt.Errorf("failed to update team name: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (Source, error) {
	var s Source
	err := row.Scan(
		&s.ID, &s.Platform, &s.SourceTeamID, &s.FeedURL, &s.TeamName, &s.Sport,
		&s.SyncStatus, &s.SyncError, &s.LastSyncedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}
