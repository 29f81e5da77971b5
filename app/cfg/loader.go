package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./teamnest.db" description:"Path to the sqlite database file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for sync trigger endpoints (optional)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of sources reconciled in parallel during a bulk sync"`
	SyncSchedule string `long:"sync-schedule" env:"SYNC_SCHEDULE" default:"@every 1h" description:"Cron schedule for bulk calendar sync (empty disables the scheduled trigger)"`

	// Feed fetching
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-feed fetch timeout in seconds"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"Teamnest/1.0" description:"User agent string for feed requests"`

	// Geocoding
	GoogleMapsAPIKey   string `long:"maps-api-key" env:"GOOGLE_MAPS_API_KEY" description:"Google Maps API key (empty disables venue enrichment)"`
	GeocodeConcurrency int    `long:"geocode-concurrency" env:"GEOCODE_CONCURRENCY" default:"3" description:"Maximum concurrent outbound geocoding calls per run"`
	NearbyRadius       uint   `long:"nearby-radius" env:"NEARBY_RADIUS" default:"150" description:"Radius in meters for the nearby-places venue lookup"`

	// Normalization
	DefaultTimezone   string `long:"default-timezone" env:"DEFAULT_TIMEZONE" default:"UTC" description:"Fallback viewer timezone for floating event times"`
	RecurrenceHorizon int    `long:"recurrence-horizon" env:"RECURRENCE_HORIZON" default:"365" description:"Days ahead to expand recurring events"`
	PlatformsDir      string `long:"platforms-dir" env:"PLATFORMS_DIR" description:"Directory with platform override YAML files (optional)"`

	// Application metadata
	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		WorkerCount:        raw.WorkerCount,
		SyncSchedule:       raw.SyncSchedule,
		FetchTimeout:       raw.FetchTimeout,
		UserAgent:          raw.UserAgent,
		GoogleMapsAPIKey:   raw.GoogleMapsAPIKey,
		GeocodeConcurrency: raw.GeocodeConcurrency,
		NearbyRadius:       raw.NearbyRadius,
		DefaultTimezone:    raw.DefaultTimezone,
		RecurrenceHorizon:  raw.RecurrenceHorizon,
		PlatformsDir:       raw.PlatformsDir,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}
