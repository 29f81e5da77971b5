package calendar

import (
	"time"
)

// TimeEncoding tags how a raw event's timestamps were written in the
// feed. The three encodings resolve to different absolute instants, so
// the tag travels with the raw values until normalization.
type TimeEncoding string

const (
	EncodingUTC      TimeEncoding = "utc"      // value carries a Z suffix
	EncodingZoned    TimeEncoding = "zoned"    // value carries a TZID parameter
	EncodingFloating TimeEncoding = "floating" // no zone, meaningful in the viewer's locale
)

// Event type classifications derived from free-text fields.
const (
	EventTypeGame       = "game"
	EventTypePractice   = "practice"
	EventTypeTournament = "tournament"
	EventTypeGeneric    = "event"
)

// RawEvent is one entry as extracted from a feed, before timezone
// normalization. Start and End hold the feed's own value strings
// (iCalendar basic format); Encoding and TimezoneID say how to read them.
type RawEvent struct {
	ExternalID       string
	Summary          string
	Description      string
	Location         string
	Start            string
	End              string
	Encoding         TimeEncoding
	TimezoneID       string
	RecurringGroupID string // set for expanded recurrence occurrences
}

// Metadata is the best-effort calendar-level information a feed exposes.
type Metadata struct {
	CalendarName string
}

// Classification is the enrichment derived from an event's free text.
type Classification struct {
	EventType   string
	Opponent    string
	Title       string
	Description string
	IsCancelled bool
}

// Event is the normalized, classified pipeline unit: absolute UTC
// instants plus the classification result.
type Event struct {
	ExternalID       string
	Title            string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	Location         string
	EventType        string
	Opponent         string
	IsCancelled      bool
	RecurringGroupID string
}
