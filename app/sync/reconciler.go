package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teamnest/teamnest/app/calendar"
	"github.com/teamnest/teamnest/app/cfg"
	"github.com/teamnest/teamnest/app/database"
	"github.com/teamnest/teamnest/app/platform"
)

// locationResolver is the slice of the geocoding client the reconciler
// needs.
type locationResolver interface {
	Resolve(ctx context.Context, address string) (*string, *string, error)
}

// Reconciler syncs a single source: fetches its feed, normalizes and
// classifies the events, enriches locations, and reconciles the result
// against the stored events for every mapped profile.
type Reconciler struct {
	sources  database.SourceRepository
	events   database.EventRepository
	users    database.UserRepository
	registry *platform.Registry
	geocoder locationResolver

	fetcher    *calendar.Fetcher
	parser     *calendar.Parser
	normalizer *calendar.Normalizer
	classifier *calendar.Classifier
}

func NewReconciler(sources database.SourceRepository, events database.EventRepository, users database.UserRepository, registry *platform.Registry, geocoder locationResolver) *Reconciler {
	c := cfg.Get()

	return &Reconciler{
		sources:    sources,
		events:     events,
		users:      users,
		registry:   registry,
		geocoder:   geocoder,
		fetcher:    calendar.NewFetcher(c.UserAgent, time.Duration(c.FetchTimeout)*time.Second),
		parser:     calendar.NewParser(c.RecurrenceHorizon),
		normalizer: calendar.NewNormalizer(c.DefaultTimezone),
		classifier: calendar.NewClassifier(),
	}
}

// Run reconciles one source end to end. Failures are reported in the
// Result, never propagated: one bad feed must not take down a bulk run.
func (r *Reconciler) Run(ctx context.Context, source database.Source) Result {
	result := Result{SourceID: source.ID, TeamName: source.TeamName}

	claimed, err := r.sources.ClaimSync(ctx, source.ID)
	if err != nil {
		return r.fail(ctx, source, result, &StoreError{Op: "claim sync", Err: err})
	}
	if !claimed {
		slog.Debug("Source sync already in progress, skipping", "source_id", source.ID)
		result.Skipped = true
		result.Error = "sync already in progress"
		return result
	}

	profiles, err := r.sources.GetMappedProfiles(ctx, source.ID)
	if err != nil {
		return r.fail(ctx, source, result, &StoreError{Op: "get mapped profiles", Err: err})
	}
	if len(profiles) == 0 {
		slog.Debug("Source has no mapped profiles, skipping", "source_id", source.ID)
		if err := r.sources.FinishSync(ctx, source.ID, database.SyncStatusIdle, "no mapped profiles", time.Now()); err != nil {
			slog.Error("Failed to release sync claim", "source_id", source.ID, "error", err)
		}
		result.Skipped = true
		result.Error = "no mapped profiles"
		return result
	}

	plat := r.registry.Lookup(source.Platform)

	data, err := r.fetcher.Run(ctx, source.FeedURL)
	if err != nil {
		return r.fail(ctx, source, result, err)
	}

	metadata, raws, err := r.parser.Run(data, source.FeedURL, plat)
	if err != nil {
		return r.fail(ctx, source, result, err)
	}

	if metadata.CalendarName != "" && metadata.CalendarName != source.TeamName {
		if err := r.sources.UpdateTeamName(ctx, source.ID, metadata.CalendarName); err != nil {
			slog.Warn("Failed to update team name", "source_id", source.ID, "error", err)
		} else {
			result.TeamName = metadata.CalendarName
		}
	}

	// One profile's failure must not stop its siblings; the source
	// still finishes as error carrying every tuple's message.
	var profileErrs []string
	for _, profile := range profiles {
		count, err := r.reconcileProfile(ctx, source, plat, profile, raws)
		if err != nil {
			slog.Error("Profile reconciliation failed", "source_id", source.ID,
				"profile_id", profile.ID, "error", err)
			profileErrs = append(profileErrs, fmt.Sprintf("profile %s: %v", profile.ID, err))
			continue
		}
		result.EventCount += count
		result.UserIDs = append(result.UserIDs, profile.UserID)
	}

	if len(profileErrs) > 0 {
		return r.fail(ctx, source, result,
			fmt.Errorf("%d of %d profiles failed: %s", len(profileErrs), len(profiles), strings.Join(profileErrs, "; ")))
	}

	if err := r.sources.FinishSync(ctx, source.ID, database.SyncStatusSuccess, "", time.Now()); err != nil {
		slog.Error("Failed to record sync success", "source_id", source.ID, "error", err)
	}

	result.Success = true

	slog.Debug("Task completed", "task", "sync_source", "source_id", source.ID,
		"events", result.EventCount, "profiles", len(profiles))

	return result
}

// reconcileProfile builds the upsert and delete batches for one
// (source, profile) tuple and applies them atomically.
func (r *Reconciler) reconcileProfile(ctx context.Context, source database.Source, plat *platform.Platform, profile database.Profile, raws []calendar.RawEvent) (int, error) {
	viewerTimezone, err := r.users.GetTimezone(ctx, profile.ID)
	if err != nil {
		return 0, &StoreError{Op: "get viewer timezone", Err: err}
	}

	existing, err := r.events.GetEventsForTuple(ctx, source.Platform, source.SourceTeamID, profile.ID)
	if err != nil {
		return 0, &StoreError{Op: "get existing events", Err: err}
	}

	existingByExternalID := make(map[string]database.Event, len(existing))
	for _, event := range existing {
		existingByExternalID[event.ExternalID] = event
	}

	sport := source.Sport
	if sport == "" {
		sport = plat.DefaultSport
	}

	seen := make(map[string]bool, len(raws))
	upserts := make([]database.Event, 0, len(raws))

	for _, raw := range raws {
		// Duplicate UIDs within one feed: first occurrence wins,
		// matching the uniqueness the store enforces.
		if seen[raw.ExternalID] {
			continue
		}

		start, end, err := r.normalizer.Resolve(raw, viewerTimezone)
		if err != nil {
			slog.Warn("Dropping event with unusable timestamps",
				"source_id", source.ID, "external_id", raw.ExternalID, "error", err)
			continue
		}
		seen[raw.ExternalID] = true

		classification := r.classifier.Run(raw)
		prior, exists := existingByExternalID[raw.ExternalID]

		event := database.Event{
			Platform:      source.Platform,
			SourceTeamID:  source.SourceTeamID,
			ExternalID:    raw.ExternalID,
			ProfileID:     profile.ID,
			Title:         classification.Title,
			Description:   classification.Description,
			StartTime:     start,
			EndTime:       end,
			Location:      raw.Location,
			EventType:     classification.EventType,
			Opponent:      classification.Opponent,
			Sport:         sport,
			Color:         plat.ColorForSport(sport),
			PlatformColor: plat.Color,
			Visibility:    "public",
			IsCancelled:   classification.IsCancelled,
		}

		if raw.RecurringGroupID != "" {
			groupID := raw.RecurringGroupID
			event.RecurringGroupID = &groupID
		}

		if exists {
			event.ID = prior.ID
			event.Visibility = prior.Visibility
		} else {
			event.ID = uuid.NewString()
		}

		event.LocationName, event.GeocodingAttempted = r.enrichLocation(ctx, raw.Location, prior, exists)

		upserts = append(upserts, event)
	}

	deleteIDs := make([]string, 0)
	for _, event := range existing {
		if !seen[event.ExternalID] {
			deleteIDs = append(deleteIDs, event.ID)
		}
	}

	if err := r.events.ReplaceForTuple(ctx, upserts, deleteIDs); err != nil {
		return 0, &StoreError{Op: "replace events", Err: err}
	}

	return len(upserts), nil
}

// enrichLocation applies the geocoding reuse policy: an unchanged
// address that was already attempted keeps its prior outcome, anything
// else goes through the resolver. Resolver failures leave the attempt
// flag unset so the address is retried on the next sync.
func (r *Reconciler) enrichLocation(ctx context.Context, location string, prior database.Event, exists bool) (*string, bool) {
	if location == "" {
		return nil, true
	}

	if exists && prior.Location == location && prior.GeocodingAttempted {
		return prior.LocationName, true
	}

	name, _, err := r.geocoder.Resolve(ctx, location)
	if err != nil {
		slog.Warn("Geocoding failed", "location", location, "error", err)
		return nil, false
	}

	return name, true
}

// fail records the failure on the source and folds it into the result.
func (r *Reconciler) fail(ctx context.Context, source database.Source, result Result, cause error) Result {
	slog.Error("Source sync failed", "source_id", source.ID, "url", source.FeedURL, "error", cause)

	if err := r.sources.FinishSync(ctx, source.ID, database.SyncStatusError, cause.Error(), time.Now()); err != nil {
		slog.Error("Failed to record sync failure", "source_id", source.ID, "error", err)
	}

	result.Error = cause.Error()
	return result
}
