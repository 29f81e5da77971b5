package geocode

import (
	"regexp"
	"strings"

	"googlemaps.github.io/maps"
)

// NamePicker chooses a human-recognizable venue name out of geocoding
// output. It is a strategy value so the fragile pattern matching can be
// tuned or swapped without touching the client's caching and network
// logic.
type NamePicker interface {
	FromGeocode(result maps.GeocodingResult) string
	FromNearby(places []maps.PlacesSearchResult, formattedAddress string) string
}

// poiComponentTypes are the address-component types that indicate a
// point of interest rather than a plain street address.
var poiComponentTypes = map[string]bool{
	"establishment":     true,
	"point_of_interest": true,
	"school":            true,
	"university":        true,
	"stadium":           true,
	"park":              true,
	"gym":               true,
	"church":            true,
	"premise":           true,
}

var (
	// "123 Main St"-shaped strings: a leading street number. Geocoders
	// frequently return the address itself as the place "name", which
	// is useless as a venue label.
	addressShapePattern = regexp.MustCompile(`^\d{1,6}([-/]\d+)?\s+\S+`)

	genericAreaNames = map[string]bool{
		"downtown":    true,
		"uptown":      true,
		"midtown":     true,
		"city center": true,
		"city centre": true,
		"old town":    true,
		"northside":   true,
		"southside":   true,
		"westside":    true,
		"eastside":    true,
	}
)

var _ NamePicker = (*HeuristicNamePicker)(nil)

// HeuristicNamePicker is the default venue-name strategy.
type HeuristicNamePicker struct{}

// FromGeocode prefers an address component whose type indicates a point
// of interest over the raw street address.
func (p *HeuristicNamePicker) FromGeocode(result maps.GeocodingResult) string {
	for _, component := range result.AddressComponents {
		for _, componentType := range component.Types {
			if poiComponentTypes[componentType] {
				return component.LongName
			}
		}
	}
	return ""
}

// FromNearby picks the first nearby place whose name is neither a
// restatement of the street address nor a bare city or area name.
func (p *HeuristicNamePicker) FromNearby(places []maps.PlacesSearchResult, formattedAddress string) string {
	for _, place := range places {
		name := strings.TrimSpace(place.Name)
		if name == "" {
			continue
		}
		if addressShapePattern.MatchString(name) {
			continue
		}
		if p.isBareAreaName(name, formattedAddress) {
			continue
		}
		return name
	}
	return ""
}

func (p *HeuristicNamePicker) isBareAreaName(name, formattedAddress string) bool {
	lower := strings.ToLower(name)
	if genericAreaNames[lower] {
		return true
	}

	// A name that merely repeats one segment of the formatted address
	// (city, state, street) labels nothing.
	for _, segment := range strings.Split(formattedAddress, ",") {
		if strings.EqualFold(strings.TrimSpace(segment), name) {
			return true
		}
	}

	return false
}
