package database

import (
	"context"
	"time"
)

type SourceRepository interface {
	GetSources(ctx context.Context) ([]Source, error)
	GetSource(ctx context.Context, id string) (*Source, error)
	GetSourceCount(ctx context.Context) (int, error)
	GetMappedProfiles(ctx context.Context, sourceID string) ([]Profile, error)

	// ClaimSync flips the source to "pending" and reports whether the
	// claim succeeded. A false return means another reconciliation for
	// the same source is already in flight.
	ClaimSync(ctx context.Context, sourceID string) (bool, error)
	FinishSync(ctx context.Context, sourceID, status, message string, syncedAt time.Time) error
	UpdateTeamName(ctx context.Context, sourceID, teamName string) error
}

type EventRepository interface {
	GetEventsForTuple(ctx context.Context, platform, sourceTeamID, profileID string) ([]Event, error)
	GetEventCount(ctx context.Context) (int, error)

	// ReplaceForTuple applies the reconciliation batches in a single
	// transaction: either every upsert and delete lands or none do.
	ReplaceForTuple(ctx context.Context, upserts []Event, deleteIDs []string) error

	DeleteRecurringFrom(ctx context.Context, profileID, groupID string, cutoff time.Time) (int64, error)
}

type GeocodeRepository interface {
	GetEntry(ctx context.Context, addressKey string) (*GeocodeEntry, error)
	UpsertEntry(ctx context.Context, entry GeocodeEntry) error
	GetEntryCount(ctx context.Context) (int, error)
}

type SyncRunRepository interface {
	CreateRun(ctx context.Context, run *SyncRun) error
	FinishRun(ctx context.Context, run *SyncRun) error
	GetLatestRun(ctx context.Context) (*SyncRun, error)
}

type UserRepository interface {
	// GetTimezone returns the saved timezone preference of the user
	// owning the given profile, or "" when unset.
	GetTimezone(ctx context.Context, profileID string) (string, error)
	StampRefreshed(ctx context.Context, userIDs []string, at time.Time) error
}
