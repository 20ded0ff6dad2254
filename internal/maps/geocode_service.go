package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"kirana/internal/types"
)

// Geocoder turns a delivery pin into a human-readable locality for
// the owner and rider notifications. Implementations must be nil-safe
// to call through the NopGeocoder when no API key is configured.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, pt types.Point) (string, error)
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a new GeocodeService with the given API Key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// ReverseGeocode returns the formatted address of the first geocoding
// result, preferring Hindi output for the shop staff.
func (s *GeocodeService) ReverseGeocode(ctx context.Context, pt types.Point) (string, error) {
	results, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: pt.Lat, Lng: pt.Lng},
		Language: "hi",
	})
	if err != nil {
		return "", fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}

// NopGeocoder is used when MAPS_API_KEY is absent; notifications fall
// back to the bare map link.
type NopGeocoder struct{}

func (NopGeocoder) ReverseGeocode(context.Context, types.Point) (string, error) {
	return "", nil
}
