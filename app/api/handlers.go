package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamnest/teamnest/app/database"
	"github.com/teamnest/teamnest/app/platform"
	"github.com/teamnest/teamnest/app/sync"
)

func NewHandler(sourceRepo database.SourceRepository, eventRepo database.EventRepository,
	geocodeRepo database.GeocodeRepository, runRepo database.SyncRunRepository,
	registry *platform.Registry, runner SyncRunnerInterface) *Handler {
	return &Handler{
		sourceRepo:  sourceRepo,
		eventRepo:   eventRepo,
		geocodeRepo: geocodeRepo,
		runRepo:     runRepo,
		registry:    registry,
		runner:      runner,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(c.Request.Context()); err == nil {
		health["sources"] = sourceCount
	}

	health["loaded_platforms"] = h.registry.GetPlatformCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats := map[string]interface{}{}

	if sourceCount, err := h.sourceRepo.GetSourceCount(ctx); err == nil {
		stats["sources"] = sourceCount
	}
	if eventCount, err := h.eventRepo.GetEventCount(ctx); err == nil {
		stats["events"] = eventCount
	}
	if cacheCount, err := h.geocodeRepo.GetEntryCount(ctx); err == nil {
		stats["geocode_cache_entries"] = cacheCount
	}

	if run, err := h.runRepo.GetLatestRun(ctx); err == nil && run != nil {
		stats["last_run"] = map[string]interface{}{
			"id":           run.ID,
			"status":       run.Status,
			"started_at":   run.StartedAt,
			"completed_at": run.CompletedAt,
			"successful":   run.Successful,
			"errors":       run.Errors,
		}
	}

	c.JSON(http.StatusOK, stats)
}

// APITriggerSync runs a bulk sync across all sources and returns the
// aggregated summary. The call is synchronous: callers get the outcome
// of the run they triggered, not an acknowledgement.
func (h *Handler) APITriggerSync(c *gin.Context) {
	summary, err := h.runner.RunAll(c.Request.Context())
	if err != nil {
		slog.Error("Bulk sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) APITriggerSourceSync(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source id parameter"})
		return
	}

	result, err := h.runner.RunSource(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sync.ErrSourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
			return
		}
		slog.Error("Source sync failed", "source_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed", "message": err.Error()})
		return
	}

	if result.Skipped {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": result.Error,
		})
		return
	}

	if !result.Success {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"message": result.Error,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"event_count": result.EventCount,
		"team_name":   result.TeamName,
	})
}

func (h *Handler) APIGetLatestRun(c *gin.Context) {
	run, err := h.runRepo.GetLatestRun(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No sync runs recorded"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// APIDeleteRecurring removes all upcoming occurrences of a recurring
// series for one profile, starting at the "from" cutoff (default now).
func (h *Handler) APIDeleteRecurring(c *gin.Context) {
	profileID := c.Param("profileId")
	groupID := c.Param("groupId")
	if profileID == "" || groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing profile or group id parameter"})
		return
	}

	cutoff := time.Now()
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from parameter", "message": "Expected RFC3339 timestamp"})
			return
		}
		cutoff = parsed
	}

	deleted, err := h.eventRepo.DeleteRecurringFrom(c.Request.Context(), profileID, groupID, cutoff)
	if err != nil {
		slog.Error("Database error", "operation", "delete_recurring", "profile_id", profileID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) APIListSources(c *gin.Context) {
	sources, err := h.sourceRepo.GetSources(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := make([]map[string]interface{}, 0, len(sources))
	for _, source := range sources {
		plat := h.registry.Lookup(source.Platform)
		list = append(list, map[string]interface{}{
			"id":             source.ID,
			"platform":       source.Platform,
			"platform_name":  plat.DisplayName,
			"source_team_id": source.SourceTeamID,
			"team_name":      source.TeamName,
			"sport":          source.Sport,
			"sync_status":    source.SyncStatus,
			"sync_error":     source.SyncError,
			"last_synced_at": source.LastSyncedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": list,
		"total":   len(list),
	})
}
