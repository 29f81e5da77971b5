package database

import (
	"time"
)

// Source sync statuses. A source stays "pending" only while a
// reconciliation for it is in flight; the flag doubles as the
// per-source serialization lock.
const (
	SyncStatusIdle    = "idle"
	SyncStatusPending = "pending"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// Sync run statuses
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

type User struct {
	ID              string
	Email           string
	Timezone        string
	LastRefreshedAt *time.Time
	CreatedAt       time.Time
}

// Profile is a family member that synced events are stored against.
type Profile struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// Source is one external team calendar subscription.
type Source struct {
	ID           string
	Platform     string
	SourceTeamID string
	FeedURL      string
	TeamName     string
	Sport        string
	SyncStatus   string
	SyncError    string
	LastSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is a stored calendar event. Platform-synced events carry a
// non-empty Platform and are owned entirely by the sync pipeline;
// manually created events have Platform == "" and are never touched
// by reconciliation.
type Event struct {
	ID                 string
	Platform           string
	SourceTeamID       string
	ExternalID         string
	ProfileID          string
	Title              string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	Location           string
	LocationName       *string
	GeocodingAttempted bool
	EventType          string
	Opponent           string
	Sport              string
	Color              string
	PlatformColor      string
	Visibility         string
	IsCancelled        bool
	RecurringGroupID   *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GeocodeEntry is one resolved address in the durable geocode cache,
// keyed by the normalized address string. Entries are append-only as
// far as the pipeline is concerned.
type GeocodeEntry struct {
	AddressKey       string
	LocationName     string
	FormattedAddress string
	CreatedAt        time.Time
}

// SyncRun is one orchestrator invocation. Created when the run starts
// and updated in place at completion, including on failure.
type SyncRun struct {
	ID            string
	Status        string
	StartedAt     time.Time
	CompletedAt   *time.Time
	DurationMs    int64
	TotalTeams    int
	Successful    int
	Errors        int
	Skipped       int
	TotalEvents   int
	UsersAffected int
	ErrorDetail   string
	Results       string // JSON blob of per-source outcomes
}
