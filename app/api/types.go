package api

import (
	"context"

	"github.com/teamnest/teamnest/app/database"
	"github.com/teamnest/teamnest/app/platform"
	"github.com/teamnest/teamnest/app/sync"
)

type SyncRunnerInterface interface {
	RunAll(ctx context.Context) (*sync.Summary, error)
	RunSource(ctx context.Context, sourceID string) (sync.Result, error)
}

var _ SyncRunnerInterface = (*sync.Orchestrator)(nil)

type Handler struct {
	sourceRepo  database.SourceRepository
	eventRepo   database.EventRepository
	geocodeRepo database.GeocodeRepository
	runRepo     database.SyncRunRepository
	registry    *platform.Registry
	runner      SyncRunnerInterface
}
