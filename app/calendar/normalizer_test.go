package calendar

import (
	"testing"
	"time"
)

func TestNormalizerExplicitUTC(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		ExternalID: "e1",
		Start:      "20250601T160000Z",
		End:        "20250601T180000Z",
		Encoding:   EncodingUTC,
	}

	start, end, err := normalizer.Resolve(raw, "America/Chicago")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	wantStart := time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, start)
	}
	if !end.Equal(wantStart.Add(2 * time.Hour)) {
		t.Errorf("Expected end two hours after start, got %v", end)
	}
}

func TestNormalizerNamedZone(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		ExternalID: "e1",
		Start:      "20250601T160000",
		Encoding:   EncodingZoned,
		TimezoneID: "America/New_York",
	}

	start, _, err := normalizer.Resolve(raw, "America/Chicago")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// 16:00 EDT (UTC-4 in June) is 20:00 UTC.
	want := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, start)
	}
}

func TestNormalizerFloatingUsesViewerTimezone(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		ExternalID: "e1",
		Start:      "20250601T160000",
		Encoding:   EncodingFloating,
	}

	start, _, err := normalizer.Resolve(raw, "America/Chicago")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// 16:00 CDT (UTC-5 in June, DST) is 21:00 UTC.
	want := time.Date(2025, 6, 1, 21, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, start)
	}
}

func TestNormalizerZoneSensitivity(t *testing.T) {
	// The same wall-clock input must produce different absolute
	// instants across the three encodings.
	normalizer := NewNormalizer("UTC")

	utcStart, _, err := normalizer.Resolve(RawEvent{
		Start: "20250601T160000Z", Encoding: EncodingUTC,
	}, "America/Chicago")
	if err != nil {
		t.Fatalf("UTC resolve failed: %v", err)
	}

	zonedStart, _, err := normalizer.Resolve(RawEvent{
		Start: "20250601T160000", Encoding: EncodingZoned, TimezoneID: "America/New_York",
	}, "America/Chicago")
	if err != nil {
		t.Fatalf("Zoned resolve failed: %v", err)
	}

	floatingStart, _, err := normalizer.Resolve(RawEvent{
		Start: "20250601T160000", Encoding: EncodingFloating,
	}, "America/Chicago")
	if err != nil {
		t.Fatalf("Floating resolve failed: %v", err)
	}

	if utcStart.Equal(zonedStart) || utcStart.Equal(floatingStart) || zonedStart.Equal(floatingStart) {
		t.Errorf("Normalization must be zone-sensitive: utc=%v zoned=%v floating=%v",
			utcStart, zonedStart, floatingStart)
	}
}

func TestNormalizerMissingViewerTimezoneFallsBackToUTC(t *testing.T) {
	normalizer := NewNormalizer("")

	raw := RawEvent{
		Start:    "20250601T160000",
		Encoding: EncodingFloating,
	}

	start, _, err := normalizer.Resolve(raw, "")
	if err != nil {
		t.Fatalf("A missing preference must never abort, got: %v", err)
	}

	want := time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("Expected UTC fallback %v, got %v", want, start)
	}
}

func TestNormalizerMissingEndDefaultsToOneHour(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		Start:    "20250601T160000Z",
		Encoding: EncodingUTC,
	}

	start, end, err := normalizer.Resolve(raw, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !end.Equal(start.Add(time.Hour)) {
		t.Errorf("Expected end = start + 1h, got start=%v end=%v", start, end)
	}
}

func TestNormalizerEndBeforeStartCorrected(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		Start:    "20250601T160000Z",
		End:      "20250601T120000Z",
		Encoding: EncodingUTC,
	}

	start, end, err := normalizer.Resolve(raw, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if end.Before(start) {
		t.Errorf("end_time must be >= start_time after normalization, got start=%v end=%v", start, end)
	}
	if !end.Equal(start.Add(time.Hour)) {
		t.Errorf("Expected corrupt end to default to start + 1h, got %v", end)
	}
}

func TestNormalizerCorruptEndDefaults(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		Start:    "20250601T160000Z",
		End:      "not-a-time",
		Encoding: EncodingUTC,
	}

	start, end, err := normalizer.Resolve(raw, "")
	if err != nil {
		t.Fatalf("A corrupt end must not drop the event, got: %v", err)
	}
	if !end.Equal(start.Add(time.Hour)) {
		t.Errorf("Expected corrupt end to default to start + 1h, got %v", end)
	}
}

func TestNormalizerUnparseableStartFails(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		ExternalID: "bad",
		Start:      "garbage",
		Encoding:   EncodingFloating,
	}

	_, _, err := normalizer.Resolve(raw, "")
	if err == nil {
		t.Fatal("Expected an error for an unparseable start time")
	}
	if _, ok := err.(*NormalizationError); !ok {
		t.Errorf("Expected a NormalizationError, got %T", err)
	}
}

func TestNormalizerDateOnlyStart(t *testing.T) {
	normalizer := NewNormalizer("UTC")

	raw := RawEvent{
		Start:    "20250601",
		Encoding: EncodingFloating,
	}

	start, end, err := normalizer.Resolve(raw, "America/Chicago")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Midnight Chicago wall time on June 1 is 05:00 UTC.
	want := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("Expected date-only start %v, got %v", want, start)
	}
	if !end.Equal(start.Add(time.Hour)) {
		t.Errorf("Expected end = start + 1h, got %v", end)
	}
}
