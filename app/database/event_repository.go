package database

import (
	"context"
	"fmt"
	"time"
)

var _ EventRepository = (*EventRepo)(nil)

// EventRepo handles database operations for calendar events
type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) GetEventsForTuple(ctx context.Context, platform, sourceTeamID, profileID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, platform, source_team_id, external_id, profile_id,
		       title, description, start_time, end_time,
		       location, location_name, geocoding_attempted,
		       event_type, opponent, sport, color, platform_color,
		       visibility, is_cancelled, recurring_group_id,
		       created_at, updated_at
		FROM events
		WHERE platform = ? AND source_team_id = ? AND profile_id = ?
		ORDER BY start_time
	`, platform, sourceTeamID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for tuple: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		err := rows.Scan(
			&e.ID, &e.Platform, &e.SourceTeamID, &e.ExternalID, &e.ProfileID,
			&e.Title, &e.Description, &e.StartTime, &e.EndTime,
			&e.Location, &e.LocationName, &e.GeocodingAttempted,
			&e.EventType, &e.Opponent, &e.Sport, &e.Color, &e.PlatformColor,
			&e.Visibility, &e.IsCancelled, &e.RecurringGroupID,
			&e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

func (r *EventRepo) GetEventCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}

// ReplaceForTuple applies a reconciliation batch atomically. Upserts are
// keyed on the (platform, source_team_id, profile_id, external_id)
// identity; a conflicting row is updated in place so its primary key
// survives for foreign references.
func (r *EventRepo) ReplaceForTuple(ctx context.Context, upserts []Event, deleteIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range upserts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (
				id, platform, source_team_id, external_id, profile_id,
				title, description, start_time, end_time,
				location, location_name, geocoding_attempted,
				event_type, opponent, sport, color, platform_color,
				visibility, is_cancelled, recurring_group_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (platform, source_team_id, profile_id, external_id)
			WHERE platform != ''
			DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				start_time = excluded.start_time,
				end_time = excluded.end_time,
				location = excluded.location,
				location_name = excluded.location_name,
				geocoding_attempted = excluded.geocoding_attempted,
				event_type = excluded.event_type,
				opponent = excluded.opponent,
				sport = excluded.sport,
				color = excluded.color,
				platform_color = excluded.platform_color,
				visibility = excluded.visibility,
				is_cancelled = excluded.is_cancelled,
				recurring_group_id = excluded.recurring_group_id,
				updated_at = CURRENT_TIMESTAMP
		`, e.ID, e.Platform, e.SourceTeamID, e.ExternalID, e.ProfileID,
			e.Title, e.Description, e.StartTime.UTC(), e.EndTime.UTC(),
			e.Location, e.LocationName, e.GeocodingAttempted,
			e.EventType, e.Opponent, e.Sport, e.Color, e.PlatformColor,
			e.Visibility, e.IsCancelled, e.RecurringGroupID)
		if err != nil {
			return fmt.Errorf("failed to upsert event %s: %w", e.ExternalID, err)
		}
	}

	for _, id := range deleteIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete event %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reconciliation batch: %w", err)
	}

	return nil
}

// DeleteRecurringFrom removes all occurrences of a recurring group at or
// after the cutoff. This is the "delete all future occurrences" path and
// is deliberately separate from the reconciliation diff.
func (r *EventRepo) DeleteRecurringFrom(ctx context.Context, profileID, groupID string, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM events
		WHERE profile_id = ? AND recurring_group_id = ? AND start_time >= ?
	`, profileID, groupID, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete recurring events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return deleted, nil
}
