package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"
	"googlemaps.github.io/maps"

	"github.com/teamnest/teamnest/app/database"
)

// GeocodeError reports a failed or unusable external geocoding call.
// It is always non-fatal: callers degrade to no enrichment.
type GeocodeError struct {
	Address string
	Err     error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("failed to geocode %q: %v", e.Address, e.Err)
}

func (e *GeocodeError) Unwrap() error {
	return e.Err
}

// mapsAPI is the slice of the Google Maps client the resolver uses.
type mapsAPI interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// Client resolves free-text locations to short human-readable place
// names, consulting and populating the durable cache before calling the
// external geocoding API. Outbound calls are bounded by a semaphore to
// stay under external rate limits.
type Client struct {
	api          mapsAPI
	cache        database.GeocodeRepository
	picker       NamePicker
	sem          *semaphore.Weighted
	nearbyRadius uint
}

// NewClient builds a geocoding client. An empty API key disables
// outbound calls: lookups then resolve from the cache only.
func NewClient(apiKey string, cache database.GeocodeRepository, concurrency int64, nearbyRadius uint) (*Client, error) {
	client := &Client{
		cache:        cache,
		picker:       &HeuristicNamePicker{},
		sem:          semaphore.NewWeighted(concurrency),
		nearbyRadius: nearbyRadius,
	}

	if apiKey != "" {
		api, err := maps.NewClient(maps.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create maps client: %w", err)
		}
		client.api = api
	}

	return client, nil
}

// Resolve returns a (locationName, formattedAddress) pair for a
// free-text address, or (nil, nil) when unresolvable. Only genuinely
// resolved names are cached, so a transient failure is retried on the
// next sync instead of poisoning the cache.
func (c *Client) Resolve(ctx context.Context, address string) (*string, *string, error) {
	key := NormalizeAddress(address)
	if key == "" {
		return nil, nil, nil
	}

	entry, err := c.cache.GetEntry(ctx, key)
	if err != nil {
		return nil, nil, &GeocodeError{Address: address, Err: err}
	}
	if entry != nil {
		return &entry.LocationName, &entry.FormattedAddress, nil
	}

	if c.api == nil {
		return nil, nil, nil
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, &GeocodeError{Address: address, Err: err}
	}
	defer c.sem.Release(1)

	results, err := c.api.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, nil, &GeocodeError{Address: address, Err: err}
	}
	if len(results) == 0 {
		return nil, nil, nil
	}

	best := results[0]
	name := c.picker.FromGeocode(best)

	if name == "" {
		name = c.nearbyName(ctx, best)
	}

	if name == "" {
		return nil, nil, nil
	}

	formatted := best.FormattedAddress
	if err := c.cache.UpsertEntry(ctx, database.GeocodeEntry{
		AddressKey:       key,
		LocationName:     name,
		FormattedAddress: formatted,
	}); err != nil {
		// Caching is best effort; the resolved name is still usable.
		slog.Warn("Failed to cache geocode result", "address", key, "error", err)
	}

	return &name, &formatted, nil
}

// nearbyName runs the secondary nearby-places search around the
// geocoded coordinates and applies the name heuristics.
func (c *Client) nearbyName(ctx context.Context, result maps.GeocodingResult) string {
	resp, err := c.api.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		},
		Radius: c.nearbyRadius,
	})
	if err != nil {
		slog.Debug("Nearby search failed", "error", err)
		return ""
	}

	return c.picker.FromNearby(resp.Results, result.FormattedAddress)
}

// NormalizeAddress produces the cache key for an address string.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
