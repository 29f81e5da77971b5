package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ SyncRunRepository = (*SyncRunRepo)(nil)

// SyncRunRepo handles database operations for orchestrator run logs
type SyncRunRepo struct {
	db *DB
}

func NewSyncRunRepo(db *DB) *SyncRunRepo {
	return &SyncRunRepo{db: db}
}

func (r *SyncRunRepo) CreateRun(ctx context.Context, run *SyncRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, status, started_at)
		VALUES (?, ?, ?)
	`, run.ID, run.Status, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

// FinishRun updates the run row in place; the row created at start is
// never replaced, so a partially failed run still leaves a record.
func (r *SyncRunRepo) FinishRun(ctx context.Context, run *SyncRun) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_runs
		SET status = ?, completed_at = ?, duration_ms = ?,
		    total_teams = ?, successful = ?, errors = ?, skipped = ?,
		    total_events = ?, users_affected = ?, error_detail = ?, results = ?
		WHERE id = ?
	`, run.Status, run.CompletedAt, run.DurationMs,
		run.TotalTeams, run.Successful, run.Errors, run.Skipped,
		run.TotalEvents, run.UsersAffected, run.ErrorDetail, run.Results,
		run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}
	return nil
}

func (r *SyncRunRepo) GetLatestRun(ctx context.Context) (*SyncRun, error) {
	var run SyncRun
	err := r.db.QueryRowContext(ctx, `
		SELECT id, status, started_at, completed_at, duration_ms,
		       total_teams, successful, errors, skipped,
		       total_events, users_affected, error_detail, results
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(
		&run.ID, &run.Status, &run.StartedAt, &run.CompletedAt, &run.DurationMs,
		&run.TotalTeams, &run.Successful, &run.Errors, &run.Skipped,
		&run.TotalEvents, &run.UsersAffected, &run.ErrorDetail, &run.Results,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}

	return &run, nil
}
