package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teamnest/teamnest/app/cfg"
	"github.com/teamnest/teamnest/app/database"
)

// Orchestrator fans a bulk sync out across all registered sources with
// a bounded worker pool and records the run outcome. Individual source
// failures are aggregated, never fatal to the run.
type Orchestrator struct {
	sources     database.SourceRepository
	users       database.UserRepository
	runs        database.SyncRunRepository
	reconciler  *Reconciler
	workerCount int
}

func NewOrchestrator(sources database.SourceRepository, users database.UserRepository, runs database.SyncRunRepository, reconciler *Reconciler) *Orchestrator {
	return &Orchestrator{
		sources:     sources,
		users:       users,
		runs:        runs,
		reconciler:  reconciler,
		workerCount: cfg.Get().WorkerCount,
	}
}

// RunAll reconciles every source and returns the aggregated summary.
// The run record is created up front and finalized even when source
// enumeration fails, so interrupted runs stay observable.
func (o *Orchestrator) RunAll(ctx context.Context) (*Summary, error) {
	startedAt := time.Now()

	run := &database.SyncRun{
		ID:        uuid.NewString(),
		Status:    database.RunStatusRunning,
		StartedAt: startedAt,
		Results:   "[]",
	}
	if err := o.runs.CreateRun(ctx, run); err != nil {
		return nil, &StoreError{Op: "create sync run", Err: err}
	}

	slog.Info("Bulk sync started", "run_id", run.ID)

	sourceList, err := o.sources.GetSources(ctx)
	if err != nil {
		o.finishRun(ctx, run, startedAt, database.RunStatusError, err.Error())
		return nil, &StoreError{Op: "get sources", Err: err}
	}

	var (
		mu      gosync.Mutex
		results = make([]Result, 0, len(sourceList))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerCount)

	for _, source := range sourceList {
		g.Go(func() error {
			result := o.reconciler.Run(gctx, source)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()

			return nil
		})
	}

	// Reconciler results never carry errors out of the group.
	_ = g.Wait()

	summary := o.aggregate(run, results, startedAt)

	if summary.UsersAffected > 0 {
		userIDs := distinctUserIDs(results)
		if err := o.users.StampRefreshed(ctx, userIDs, time.Now()); err != nil {
			slog.Error("Failed to stamp refreshed users", "run_id", run.ID, "error", err)
		}
	}

	o.finishRun(ctx, run, startedAt, database.RunStatusSuccess, "")

	slog.Info("Task completed", "task", "bulk_sync", "run_id", run.ID,
		"total", summary.TotalTeams, "successful", summary.Successful,
		"errors", summary.Errors, "skipped", summary.Skipped,
		"events", summary.TotalEvents, "duration", time.Since(startedAt))

	return summary, nil
}

// RunSource reconciles a single source on demand.
func (o *Orchestrator) RunSource(ctx context.Context, sourceID string) (Result, error) {
	source, err := o.sources.GetSource(ctx, sourceID)
	if err != nil {
		return Result{}, &StoreError{Op: "get source", Err: err}
	}
	if source == nil {
		return Result{}, fmt.Errorf("source %s: %w", sourceID, ErrSourceNotFound)
	}

	result := o.reconciler.Run(ctx, *source)

	if len(result.UserIDs) > 0 {
		if err := o.users.StampRefreshed(ctx, distinctUserIDs([]Result{result}), time.Now()); err != nil {
			slog.Error("Failed to stamp refreshed users", "source_id", sourceID, "error", err)
		}
	}

	return result, nil
}

// aggregate folds per-source results into the run record and summary.
func (o *Orchestrator) aggregate(run *database.SyncRun, results []Result, startedAt time.Time) *Summary {
	summary := &Summary{RunID: run.ID, TotalTeams: len(results)}
	sourceResults := make([]SourceResult, 0, len(results))

	for _, result := range results {
		status := "error"
		switch {
		case result.Success:
			status = "success"
			summary.Successful++
		case result.Skipped:
			status = "skipped"
			summary.Skipped++
		default:
			summary.Errors++
		}
		// Partially failed sources still landed events for their
		// successful profiles.
		summary.TotalEvents += result.EventCount

		sourceResults = append(sourceResults, SourceResult{
			SourceID:   result.SourceID,
			TeamName:   result.TeamName,
			Status:     status,
			EventCount: result.EventCount,
			Error:      result.Error,
		})
	}

	summary.UsersAffected = len(distinctUserIDs(results))
	summary.ExecutionDurationMs = time.Since(startedAt).Milliseconds()

	run.TotalTeams = summary.TotalTeams
	run.Successful = summary.Successful
	run.Errors = summary.Errors
	run.Skipped = summary.Skipped
	run.TotalEvents = summary.TotalEvents
	run.UsersAffected = summary.UsersAffected

	if data, err := json.Marshal(sourceResults); err == nil {
		run.Results = string(data)
	}

	return summary
}

func (o *Orchestrator) finishRun(ctx context.Context, run *database.SyncRun, startedAt time.Time, status, errorDetail string) {
	completedAt := time.Now()
	run.Status = status
	run.CompletedAt = &completedAt
	run.DurationMs = completedAt.Sub(startedAt).Milliseconds()
	run.ErrorDetail = errorDetail

	if err := o.runs.FinishRun(ctx, run); err != nil {
		slog.Error("Failed to finalize sync run", "run_id", run.ID, "error", err)
	}
}

// distinctUserIDs collects the users whose data changed. A result's
// UserIDs only contain profiles whose tuple landed, so a partially
// failed source still stamps the users its successful tuples touched.
func distinctUserIDs(results []Result) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)

	for _, result := range results {
		for _, id := range result.UserIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	return ids
}
