package platform

// Platform captures the per-platform quirks the pipeline needs, so that
// platform differences live in data instead of duplicated control flow.
type Platform struct {
	Name          string            `yaml:"-"` // registry key
	DisplayName   string            `yaml:"display_name"`
	Color         string            `yaml:"color"`
	DefaultSport  string            `yaml:"default_sport"`
	FallbackColor string            `yaml:"fallback_color"`
	SportColors   map[string]string `yaml:"sport_colors"`

	// StripWords are platform-specific generic words removed during
	// display-name extraction, on top of the built-in ones.
	StripWords []string `yaml:"strip_words"`
}

// ColorForSport returns the calendar color for a sport, with a stable
// fallback when the sport is unknown.
func (p *Platform) ColorForSport(sport string) string {
	if color, ok := p.SportColors[sport]; ok {
		return color
	}
	if p.FallbackColor != "" {
		return p.FallbackColor
	}
	return p.Color
}
