package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port         string
	APIAccessKey string
	WorkerCount  int
	SyncSchedule string

	// Feed fetching
	FetchTimeout int
	UserAgent    string

	// Geocoding
	GoogleMapsAPIKey   string
	GeocodeConcurrency int
	NearbyRadius       uint

	// Normalization
	DefaultTimezone    string
	RecurrenceHorizon  int
	PlatformsDir       string

	// Application metadata
	Debug   bool
	Version string
}
