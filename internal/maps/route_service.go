package maps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"wayfare/internal/modules/fare"
	"wayfare/internal/modules/itinerary"
)

// walkLimit is the longest walk offered before switching to a taxi.
const walkLimit = 20 * time.Minute

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client directionsClient
	fares  *fare.Service
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string, fares *fare.Service) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newRouteService(client, fares), nil
}

func newRouteService(client directionsClient, fares *fare.Service) *RouteService {
	if fares == nil {
		fares = fare.NewService(nil)
	}
	return &RouteService{client: client, fares: fares}
}

// GetTravelEstimate returns the duration and distance in meters for a trip in the given mode.
func (s *RouteService) GetTravelEstimate(ctx context.Context, origin, destination string, mode maps.Mode) (time.Duration, int, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		Language:    "en",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, 0, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return leg.Duration, leg.Distance.Meters, nil
}

// ResearchTransit walks when the walk is short and otherwise takes a taxi priced by the
// fare table. Quotes are cached per address pair regardless of departure time, so the taxi
// price leaves out the night surcharge.
func (s *RouteService) ResearchTransit(ctx context.Context, from, to, location string) (itinerary.TransitQuote, error) {
	origin, destination := qualify(from, location), qualify(to, location)

	walk, _, err := s.GetTravelEstimate(ctx, origin, destination, maps.TravelModeWalking)
	if err == nil && walk <= walkLimit {
		return itinerary.TransitQuote{
			Method:      fare.ModeWalking,
			Minutes:     ceilMinutes(walk),
			Description: fmt.Sprintf("Walk to %s", to),
		}, nil
	}

	drive, meters, err := s.GetTravelEstimate(ctx, origin, destination, maps.TravelModeDriving)
	if err != nil {
		return itinerary.TransitQuote{}, err
	}
	cost, err := s.fares.EstimateMoney(ctx, fare.FareRequest{
		Mode:        fare.ModeTaxi,
		DistanceKm:  float64(meters) / 1000,
		DurationMin: drive.Minutes(),
	})
	if err != nil {
		return itinerary.TransitQuote{}, fmt.Errorf("estimate taxi fare: %w", err)
	}
	return itinerary.TransitQuote{
		Method:      fare.ModeTaxi,
		Minutes:     ceilMinutes(drive),
		Cost:        cost,
		Description: fmt.Sprintf("Taxi to %s (%.1f km)", to, float64(meters)/1000),
	}, nil
}

// qualify appends the city so that bare venue addresses resolve in the right place.
func qualify(address, location string) string {
	if location == "" || strings.Contains(strings.ToLower(address), strings.ToLower(location)) {
		return address
	}
	return address + ", " + location
}

func ceilMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
