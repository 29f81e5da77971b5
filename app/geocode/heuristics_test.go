package geocode

import (
	"testing"

	"googlemaps.github.io/maps"
)

func TestFromGeocodePrefersPOIComponent(t *testing.T) {
	picker := &HeuristicNamePicker{}

	result := maps.GeocodingResult{
		AddressComponents: []maps.AddressComponent{
			{LongName: "123", Types: []string{"street_number"}},
			{LongName: "Main St", Types: []string{"route"}},
			{LongName: "Lincoln High School", Types: []string{"school", "point_of_interest"}},
		},
	}

	if got := picker.FromGeocode(result); got != "Lincoln High School" {
		t.Errorf("Expected POI component name, got %q", got)
	}
}

func TestFromGeocodeNoPOIComponent(t *testing.T) {
	picker := &HeuristicNamePicker{}

	result := maps.GeocodingResult{
		AddressComponents: []maps.AddressComponent{
			{LongName: "123", Types: []string{"street_number"}},
			{LongName: "Main St", Types: []string{"route"}},
			{LongName: "Springfield", Types: []string{"locality", "political"}},
		},
	}

	if got := picker.FromGeocode(result); got != "" {
		t.Errorf("Expected empty name without POI component, got %q", got)
	}
}

func TestFromNearbySkipsAddressShapedNames(t *testing.T) {
	picker := &HeuristicNamePicker{}

	places := []maps.PlacesSearchResult{
		{Name: "123 Main St"},
		{Name: "Riverside Park"},
	}

	if got := picker.FromNearby(places, "123 Main St, Springfield, IL"); got != "Riverside Park" {
		t.Errorf("Expected address-shaped name skipped, got %q", got)
	}
}

func TestFromNearbySkipsBareAreaNames(t *testing.T) {
	picker := &HeuristicNamePicker{}

	places := []maps.PlacesSearchResult{
		{Name: "Downtown"},
		{Name: "Springfield"},
		{Name: "Memorial Stadium"},
	}

	if got := picker.FromNearby(places, "400 Oak Ave, Springfield, IL"); got != "Memorial Stadium" {
		t.Errorf("Expected area names skipped, got %q", got)
	}
}

func TestFromNearbyNoUsableName(t *testing.T) {
	picker := &HeuristicNamePicker{}

	places := []maps.PlacesSearchResult{
		{Name: ""},
		{Name: "55 Elm St"},
	}

	if got := picker.FromNearby(places, "55 Elm St, Springfield, IL"); got != "" {
		t.Errorf("Expected no usable name, got %q", got)
	}
}
