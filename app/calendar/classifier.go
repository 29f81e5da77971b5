package calendar

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	practicePattern    = regexp.MustCompile(`(?i)\b(practice|training|scrimmage)\b`)
	tournamentPattern  = regexp.MustCompile(`(?i)\b(tournament|tourney|playoffs?|cup)\b`)
	gameKeywordPattern = regexp.MustCompile(`(?i)\b(game|match)\b`)

	vsOpponentPattern = regexp.MustCompile(`(?i)\bvs\.?\s+(.+)$`)
	atOpponentPattern = regexp.MustCompile(`(?i)^(.+?)\s+at\s+(.+)$`)

	// Whole-word match keeps "cancel" from firing on e.g. "cancellation
	// policy" being absent while minimizing false positives on words
	// that merely contain the keyword.
	cancelledPattern = regexp.MustCompile(`(?i)\b(cancell?ed|cancel|postponed|rescheduled)\b`)

	trailingParenPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// Classifier derives event kind, opponent, a composed title/description,
// and a cancellation flag from an event's free-text fields. It is a
// best-effort heuristic over unstructured text: false negatives are
// expected, false positives are minimized by whole-word matching.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Run(raw RawEvent) Classification {
	result := Classification{
		EventType:   EventTypeGeneric,
		Title:       raw.Summary,
		Description: raw.Description,
	}

	text := raw.Summary + " " + raw.Description

	switch {
	case practicePattern.MatchString(text):
		result.EventType = EventTypePractice
	case tournamentPattern.MatchString(text):
		result.EventType = EventTypeTournament
	default:
		if opponent, ok := c.extractOpponent(raw.Summary); ok {
			result.EventType = EventTypeGame
			result.Opponent = opponent
		} else if gameKeywordPattern.MatchString(text) {
			result.EventType = EventTypeGame
		}
	}

	if result.EventType == EventTypeGame && result.Opponent != "" {
		result.Title = fmt.Sprintf("Game vs %s", result.Opponent)
	}

	result.Description = c.composeDescription(raw, result.Opponent)
	result.IsCancelled = cancelledPattern.MatchString(result.Title) ||
		cancelledPattern.MatchString(raw.Summary) ||
		cancelledPattern.MatchString(raw.Description)

	return result
}

func (c *Classifier) extractOpponent(summary string) (string, bool) {
	if m := vsOpponentPattern.FindStringSubmatch(summary); m != nil {
		return cleanOpponent(m[1]), true
	}
	// "Team at Opponent" only counts when it is not a venue phrase like
	// "Practice at Main Gym"; the practice branch already ran, so the
	// remaining risk is handled by requiring both fragments to be
	// non-empty names.
	if m := atOpponentPattern.FindStringSubmatch(summary); m != nil {
		team, opponent := strings.TrimSpace(m[1]), cleanOpponent(m[2])
		if team != "" && opponent != "" && !venueNamePattern.MatchString(summary) {
			return opponent, true
		}
	}
	return "", false
}

// composeDescription folds the original summary and an "Opponent: X"
// line into the description without duplicating text already present.
func (c *Classifier) composeDescription(raw RawEvent, opponent string) string {
	var parts []string

	description := strings.TrimSpace(raw.Description)
	if description != "" {
		parts = append(parts, description)
	}

	summary := strings.TrimSpace(raw.Summary)
	if summary != "" && !containsFold(description, summary) {
		parts = append(parts, summary)
	}

	if opponent != "" {
		combined := strings.Join(parts, "\n")
		opponentLine := fmt.Sprintf("Opponent: %s", opponent)
		if !containsFold(combined, opponentLine) {
			parts = append(parts, opponentLine)
		}
	}

	return strings.Join(parts, "\n")
}

func cleanOpponent(s string) string {
	s = trailingParenPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
