package sync

// Result is the outcome of reconciling one source. A failed source
// never aborts the run; its failure is carried here instead.
type Result struct {
	SourceID   string
	TeamName   string
	Success    bool
	Skipped    bool
	EventCount int
	Error      string
	UserIDs    []string
}

// SourceResult is the per-source outcome persisted on the run record.
type SourceResult struct {
	SourceID   string `json:"source_id"`
	TeamName   string `json:"team_name"`
	Status     string `json:"status"`
	EventCount int    `json:"event_count"`
	Error      string `json:"error,omitempty"`
}

// Summary aggregates one bulk run across all sources.
type Summary struct {
	RunID               string `json:"run_id"`
	TotalTeams          int    `json:"total_teams"`
	Successful          int    `json:"successful"`
	Errors              int    `json:"errors"`
	Skipped             int    `json:"skipped"`
	TotalEvents         int    `json:"total_events"`
	UsersAffected       int    `json:"users_affected"`
	ExecutionDurationMs int64  `json:"execution_duration_ms"`
}
