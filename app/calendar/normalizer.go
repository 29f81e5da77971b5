package calendar

import (
	"log/slog"
	"time"
)

// Normalizer resolves raw event timestamps into absolute UTC instants.
//
// Floating times are the common case for recreational sports feeds and
// are only meaningful relative to a human's locale; interpreting them
// as UTC would silently shift every event by the viewer's offset.
type Normalizer struct {
	defaultTimezone string
}

func NewNormalizer(defaultTimezone string) *Normalizer {
	return &Normalizer{defaultTimezone: defaultTimezone}
}

// Resolve converts a raw event's start/end into UTC. viewerTimezone is
// the owning user's saved preference; when empty or invalid the
// configured default applies, and failing that UTC. A missing
// preference never aborts a sync.
//
// A missing or corrupt end defaults to start + 1 hour, as does an end
// that lands before its start.
func (n *Normalizer) Resolve(raw RawEvent, viewerTimezone string) (time.Time, time.Time, error) {
	loc := n.resolveLocation(raw, viewerTimezone)

	start, err := parseInLocation(raw.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, &NormalizationError{ExternalID: raw.ExternalID, Value: raw.Start, Err: err}
	}

	end := start.Add(time.Hour)
	if raw.End != "" {
		if parsed, err := parseInLocation(raw.End, loc); err == nil && !parsed.Before(start) {
			end = parsed
		}
	}

	return start.UTC(), end.UTC(), nil
}

func (n *Normalizer) resolveLocation(raw RawEvent, viewerTimezone string) *time.Location {
	switch raw.Encoding {
	case EncodingUTC:
		return time.UTC
	case EncodingZoned:
		if loc, err := time.LoadLocation(raw.TimezoneID); err == nil {
			return loc
		}
		slog.Debug("Unknown TZID, treating event as floating", "tzid", raw.TimezoneID, "external_id", raw.ExternalID)
		fallthrough
	default:
		return n.viewerLocation(viewerTimezone)
	}
}

func (n *Normalizer) viewerLocation(viewerTimezone string) *time.Location {
	if viewerTimezone != "" {
		if loc, err := time.LoadLocation(viewerTimezone); err == nil {
			return loc
		}
		slog.Debug("Invalid viewer timezone, falling back", "timezone", viewerTimezone)
	}
	if n.defaultTimezone != "" {
		if loc, err := time.LoadLocation(n.defaultTimezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func parseInLocation(value string, loc *time.Location) (time.Time, error) {
	layout := layoutForValue(value)
	if layout == layoutUTC {
		return time.Parse(layoutUTC, value)
	}
	return time.ParseInLocation(layout, value, loc)
}
