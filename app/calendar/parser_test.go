package calendar

import (
	"strings"
	"testing"
	"time"
)

func icsFixture(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//Test//EN"}, lines...)
	all = append(all, "END:VCALENDAR")
	return []byte(strings.Join(all, "\r\n") + "\r\n")
}

func TestParserExtractsEvents(t *testing.T) {
	data := icsFixture(
		"X-WR-CALNAME:Dragons Schedule",
		"BEGIN:VEVENT",
		"UID:event-1@example.com",
		"SUMMARY:Game vs Tigers",
		"DESCRIPTION:Bring water",
		"LOCATION:123 Main St\\, Springfield",
		"DTSTART:20250601T160000Z",
		"DTEND:20250601T180000Z",
		"END:VEVENT",
	)

	parser := NewParser(365)
	metadata, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.CalendarName != "Dragons" {
		t.Errorf("Expected calendar name 'Dragons' (generic words stripped), got '%s'", metadata.CalendarName)
	}

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.ExternalID != "event-1@example.com" {
		t.Errorf("Expected external id 'event-1@example.com', got '%s'", event.ExternalID)
	}
	if event.Summary != "Game vs Tigers" {
		t.Errorf("Expected summary 'Game vs Tigers', got '%s'", event.Summary)
	}
	if event.Location != "123 Main St, Springfield" {
		t.Errorf("Expected unescaped location, got '%s'", event.Location)
	}
	if event.Encoding != EncodingUTC {
		t.Errorf("Expected UTC encoding, got '%s'", event.Encoding)
	}
	if event.Start != "20250601T160000Z" {
		t.Errorf("Expected start '20250601T160000Z', got '%s'", event.Start)
	}
	if event.End != "20250601T180000Z" {
		t.Errorf("Expected end '20250601T180000Z', got '%s'", event.End)
	}
}

func TestParserDetectsEncodings(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:utc-event",
		"SUMMARY:UTC Event",
		"DTSTART:20250601T160000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:zoned-event",
		"SUMMARY:Zoned Event",
		"DTSTART;TZID=America/Chicago:20250601T160000",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:floating-event",
		"SUMMARY:Floating Event",
		"DTSTART:20250601T160000",
		"END:VEVENT",
	)

	parser := NewParser(365)
	_, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	if events[0].Encoding != EncodingUTC {
		t.Errorf("Expected first event UTC, got '%s'", events[0].Encoding)
	}
	if events[1].Encoding != EncodingZoned {
		t.Errorf("Expected second event zoned, got '%s'", events[1].Encoding)
	}
	if events[1].TimezoneID != "America/Chicago" {
		t.Errorf("Expected TZID 'America/Chicago', got '%s'", events[1].TimezoneID)
	}
	if events[2].Encoding != EncodingFloating {
		t.Errorf("Expected third event floating, got '%s'", events[2].Encoding)
	}
}

func TestParserDropsEventWithoutStart(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:no-start",
		"SUMMARY:Broken Event",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:good-event",
		"SUMMARY:Good Event",
		"DTSTART:20250601T160000Z",
		"END:VEVENT",
	)

	parser := NewParser(365)
	_, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("A malformed event should not abort the feed, got: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event (broken one dropped), got %d", len(events))
	}
	if events[0].ExternalID != "good-event" {
		t.Errorf("Expected surviving event 'good-event', got '%s'", events[0].ExternalID)
	}
}

func TestParserMissingUIDFallsBackToComposite(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"SUMMARY:Practice",
		"DTSTART:20250601T160000Z",
		"END:VEVENT",
	)

	parser := NewParser(365)
	_, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].ExternalID != "Practice:20250601T160000Z" {
		t.Errorf("Expected composite external id, got '%s'", events[0].ExternalID)
	}
}

func TestParserNameFromFirstEventSummary(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:event-1",
		"SUMMARY:Rockets vs Comets",
		"DTSTART:20250601T160000Z",
		"END:VEVENT",
	)

	parser := NewParser(365)
	metadata, _, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if metadata.CalendarName != "Rockets" {
		t.Errorf("Expected calendar name 'Rockets' from vs pattern, got '%s'", metadata.CalendarName)
	}
}

func TestParserNameFromFeedURLFallback(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:event-1",
		"SUMMARY:Weekly Meetup",
		"DTSTART:20250601T160000Z",
		"END:VEVENT",
	)

	parser := NewParser(365)
	metadata, _, err := parser.Run(data, "webcal://example.com/feeds/blue-dragons-u10.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if metadata.CalendarName != "Blue Dragons U10" {
		t.Errorf("Expected URL-derived name 'Blue Dragons U10', got '%s'", metadata.CalendarName)
	}
}

func TestParserExpandsRecurringEvents(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:practice@example.com",
		"SUMMARY:Practice",
		"DTSTART:20250603T170000",
		"DTEND:20250603T183000",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"END:VEVENT",
	)

	parser := NewParser(365)
	parser.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 expanded occurrences, got %d", len(events))
	}

	if events[0].ExternalID != "practice@example.com:20250603T170000" {
		t.Errorf("Expected occurrence id with start suffix, got '%s'", events[0].ExternalID)
	}
	if events[0].RecurringGroupID != "practice@example.com" {
		t.Errorf("Expected recurring group id 'practice@example.com', got '%s'", events[0].RecurringGroupID)
	}
	if events[0].End != "20250603T183000" {
		t.Errorf("Expected occurrence to keep the 90m duration, got end '%s'", events[0].End)
	}
	if events[1].Start != "20250610T170000" {
		t.Errorf("Expected second occurrence a week later, got '%s'", events[1].Start)
	}
	if events[2].Start != "20250617T170000" {
		t.Errorf("Expected third occurrence two weeks later, got '%s'", events[2].Start)
	}
}

func TestParserHonorsExdates(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:practice@example.com",
		"SUMMARY:Practice",
		"DTSTART:20250603T170000",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"EXDATE:20250610T170000",
		"END:VEVENT",
	)

	parser := NewParser(365)
	parser.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 occurrences after EXDATE, got %d", len(events))
	}
	for _, event := range events {
		if event.Start == "20250610T170000" {
			t.Error("Excluded occurrence should not be present")
		}
	}
}

func TestParserHonorsUTCExdateAgainstZonedStart(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:practice@example.com",
		"SUMMARY:Practice",
		"DTSTART;TZID=America/New_York:20250603T170000",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"EXDATE:20250610T210000Z",
		"END:VEVENT",
	)

	parser := NewParser(365)
	parser.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 occurrences after EXDATE, got %d", len(events))
	}
	for _, event := range events {
		if event.Start == "20250610T170000" {
			t.Error("Z-form EXDATE should exclude the matching zoned occurrence")
		}
	}
}

func TestParserHonorsZonedExdateAgainstUTCStart(t *testing.T) {
	data := icsFixture(
		"BEGIN:VEVENT",
		"UID:practice@example.com",
		"SUMMARY:Practice",
		"DTSTART:20250603T170000Z",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"EXDATE;TZID=America/New_York:20250610T130000",
		"END:VEVENT",
	)

	parser := NewParser(365)
	parser.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, events, err := parser.Run(data, "https://example.com/feed.ics", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 occurrences after EXDATE, got %d", len(events))
	}
	for _, event := range events {
		if event.Start == "20250610T170000Z" {
			t.Error("Zoned EXDATE should exclude the matching UTC occurrence")
		}
	}
}

func TestParserRejectsGarbage(t *testing.T) {
	parser := NewParser(365)
	_, _, err := parser.Run([]byte("this is not a calendar"), "https://example.com/feed.ics", nil)
	if err == nil {
		t.Fatal("Expected a parse error for non-calendar bytes")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("Expected a ParseError, got %T", err)
	}
}
