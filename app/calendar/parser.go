package calendar

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/teamnest/teamnest/app/platform"
)

const (
	layoutUTC      = "20060102T150405Z"
	layoutLocal    = "20060102T150405"
	layoutDateOnly = "20060102"

	// How far back expanded recurrences reach; feeds routinely list
	// occurrences slightly in the past.
	expansionBackfill = 30 * 24 * time.Hour
)

var (
	vsNamePattern    = regexp.MustCompile(`(?i)^(.+?)\s+vs\.?\s+.+`)
	venueNamePattern = regexp.MustCompile(`(?i)^(.+?)\s+(field|court|gym|park|arena|rink|complex)\b`)

	builtinStripWords = []string{"calendar", "schedule"}

	titleCaser = cases.Title(language.English)
)

// Parser turns raw calendar-feed bytes into an ordered sequence of
// RawCalendarEvents plus a best-effort calendar display name.
type Parser struct {
	horizon time.Duration
	now     func() time.Time
}

func NewParser(horizonDays int) *Parser {
	return &Parser{
		horizon: time.Duration(horizonDays) * 24 * time.Hour,
		now:     time.Now,
	}
}

func (p *Parser) Run(data []byte, feedURL string, plat *platform.Platform) (*Metadata, []RawEvent, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}

	events := make([]RawEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		raw, ok := p.parseVEvent(ve)
		if !ok {
			// A malformed entry must not abort the whole feed.
			continue
		}

		if rruleValue := propertyValue(ve, ics.ComponentPropertyRrule); rruleValue != "" {
			occurrences := p.expandRecurrence(ve, raw, rruleValue)
			if occurrences != nil {
				events = append(events, occurrences...)
				continue
			}
		}

		events = append(events, raw)
	}

	metadata := &Metadata{
		CalendarName: p.resolveCalendarName(cal, events, feedURL, plat),
	}

	return metadata, events, nil
}

func (p *Parser) parseVEvent(ve *ics.VEvent) (RawEvent, bool) {
	dtStart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtStart == nil || strings.TrimSpace(dtStart.Value) == "" {
		slog.Debug("Dropping event without start time")
		return RawEvent{}, false
	}

	raw := RawEvent{
		Summary:     propertyValue(ve, ics.ComponentPropertySummary),
		Description: unescapeText(propertyValue(ve, ics.ComponentPropertyDescription)),
		Location:    unescapeText(propertyValue(ve, ics.ComponentPropertyLocation)),
		Start:       strings.TrimSpace(dtStart.Value),
	}
	raw.Summary = unescapeText(raw.Summary)

	if dtEnd := ve.GetProperty(ics.ComponentPropertyDtEnd); dtEnd != nil {
		raw.End = strings.TrimSpace(dtEnd.Value)
	}

	raw.Encoding, raw.TimezoneID = detectEncoding(dtStart)

	raw.ExternalID = propertyValue(ve, ics.ComponentPropertyUniqueId)
	if raw.ExternalID == "" {
		// Some platforms omit UIDs; a composite of summary and start
		// is stable across fetches of the same feed.
		raw.ExternalID = fmt.Sprintf("%s:%s", raw.Summary, raw.Start)
	}

	return raw, true
}

// detectEncoding classifies a DTSTART property into one of the three
// timestamp encodings.
func detectEncoding(prop *ics.IANAProperty) (TimeEncoding, string) {
	if strings.HasSuffix(strings.TrimSpace(prop.Value), "Z") {
		return EncodingUTC, ""
	}
	if tzs, ok := prop.ICalParameters["TZID"]; ok && len(tzs) > 0 && tzs[0] != "" {
		return EncodingZoned, tzs[0]
	}
	return EncodingFloating, ""
}

// expandRecurrence materializes a recurring event into individual
// occurrences inside a bounded horizon. Returns nil when the rule
// cannot be interpreted, in which case the base event is kept as-is.
func (p *Parser) expandRecurrence(ve *ics.VEvent, base RawEvent, rruleValue string) []RawEvent {
	layout := layoutForValue(base.Start)

	wallStart, err := time.Parse(layout, base.Start)
	if err != nil {
		return nil
	}

	duration := time.Hour
	if base.End != "" {
		if wallEnd, err := time.Parse(layoutForValue(base.End), base.End); err == nil && wallEnd.After(wallStart) {
			duration = wallEnd.Sub(wallStart)
		}
	}

	opt, err := rrule.StrToROption(rruleValue)
	if err != nil {
		slog.Debug("Unparseable RRULE, keeping base event", "external_id", base.ExternalID, "error", err)
		return nil
	}
	opt.Dtstart = wallStart

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		slog.Debug("Invalid RRULE, keeping base event", "external_id", base.ExternalID, "error", err)
		return nil
	}

	now := p.now().UTC()
	window := rule.Between(now.Add(-expansionBackfill), now.Add(p.horizon), true)
	if len(window) == 0 {
		return nil
	}

	excluded := exdateSet(ve, layout, base.TimezoneID)

	occurrences := make([]RawEvent, 0, len(window))
	for _, occ := range window {
		startValue := occ.Format(layout)
		if excluded[startValue] {
			continue
		}

		event := base
		event.Start = startValue
		event.End = occ.Add(duration).Format(layoutForValue(startValue))
		event.ExternalID = fmt.Sprintf("%s:%s", base.ExternalID, startValue)
		event.RecurringGroupID = base.ExternalID
		occurrences = append(occurrences, event)
	}

	return occurrences
}

// exdateSet collects excluded occurrence stamps, re-expressed in the
// DTSTART frame so lookups by occurrence start value match.
func exdateSet(ve *ics.VEvent, baseLayout, baseTZID string) map[string]bool {
	excluded := make(map[string]bool)
	for _, prop := range ve.GetProperties(ics.ComponentPropertyExdate) {
		exTZID := ""
		if tzs, ok := prop.ICalParameters["TZID"]; ok && len(tzs) > 0 {
			exTZID = tzs[0]
		}
		for _, part := range strings.Split(prop.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if key, ok := normalizeExdate(part, exTZID, baseLayout, baseTZID); ok {
				excluded[key] = true
			}
		}
	}
	return excluded
}

// normalizeExdate converts one EXDATE value into the DTSTART layout.
// Feeds mix forms freely: a Z-suffixed EXDATE against a TZID DTSTART,
// or an EXDATE carrying its own TZID, must still exclude the matching
// occurrence.
func normalizeExdate(value, valueTZID, baseLayout, baseTZID string) (string, bool) {
	loc := time.UTC
	valueLayout := layoutForValue(value)
	if valueLayout != layoutUTC && valueTZID != "" {
		if l, err := time.LoadLocation(valueTZID); err == nil {
			loc = l
		}
	}

	t, err := time.ParseInLocation(valueLayout, value, loc)
	if err != nil {
		return "", false
	}

	switch baseLayout {
	case layoutUTC:
		return t.UTC().Format(layoutUTC), true
	case layoutDateOnly:
		return t.Format(layoutDateOnly), true
	default:
		baseLoc := time.UTC
		if baseTZID != "" {
			if l, err := time.LoadLocation(baseTZID); err == nil {
				baseLoc = l
			}
		}
		return t.In(baseLoc).Format(layoutLocal), true
	}
}

// resolveCalendarName produces a display name for the feed. Upstream
// platforms are inconsistent about exposing a clean team name, so this
// walks a priority list and opportunistically improves on every parse.
func (p *Parser) resolveCalendarName(cal *ics.Calendar, events []RawEvent, feedURL string, plat *platform.Platform) string {
	name := calendarProperty(cal, "X-WR-CALNAME")

	if name == "" && len(events) > 0 {
		name = teamNameFromEvent(events[0])
	}

	name = stripGenericWords(name, plat)

	if name == "" {
		name = nameFromFeedURL(feedURL)
	}

	return name
}

func calendarProperty(cal *ics.Calendar, token string) string {
	for _, prop := range cal.CalendarProperties {
		if strings.EqualFold(prop.IANAToken, token) {
			return strings.TrimSpace(prop.Value)
		}
	}
	return ""
}

func teamNameFromEvent(event RawEvent) string {
	if m := vsNamePattern.FindStringSubmatch(event.Summary); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := venueNamePattern.FindStringSubmatch(event.Location); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := venueNamePattern.FindStringSubmatch(event.Summary); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func stripGenericWords(name string, plat *platform.Platform) string {
	if name == "" {
		return ""
	}

	stripWords := builtinStripWords
	if plat != nil {
		stripWords = append(append([]string{}, builtinStripWords...), plat.StripWords...)
	}

	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		generic := false
		for _, strip := range stripWords {
			if strings.EqualFold(word, strip) {
				generic = true
				break
			}
		}
		if !generic {
			kept = append(kept, word)
		}
	}

	return strings.Join(kept, " ")
}

func nameFromFeedURL(feedURL string) string {
	parsed, err := url.Parse(NormalizeFeedURL(feedURL))
	if err != nil {
		return "Team Calendar"
	}

	segment := path.Base(strings.TrimSuffix(parsed.Path, "/"))
	segment = strings.TrimSuffix(segment, path.Ext(segment))
	if segment == "" || segment == "." || segment == "/" {
		return "Team Calendar"
	}

	segment = strings.NewReplacer("-", " ", "_", " ", "+", " ").Replace(segment)
	segment = strings.Join(strings.Fields(segment), " ")
	if segment == "" {
		return "Team Calendar"
	}

	return titleCaser.String(segment)
}

func layoutForValue(value string) string {
	switch {
	case strings.HasSuffix(value, "Z"):
		return layoutUTC
	case strings.Contains(value, "T"):
		return layoutLocal
	default:
		return layoutDateOnly
	}
}

func propertyValue(ve *ics.VEvent, prop ics.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// unescapeText undoes iCalendar TEXT escaping (RFC 5545 3.3.11).
func unescapeText(s string) string {
	replacer := strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return replacer.Replace(s)
}
