package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

const (
	venuesPerInterest = 5
	minRating         = 3.5
)

// priceLevelDollars maps the Places 0-4 price scale to a per-person estimate.
var priceLevelDollars = map[int]float64{0: 0, 1: 15, 2: 30, 3: 60, 4: 100}

const unknownPriceDollars = 20

// Place represents a simplified location result.
type Place struct {
	Name             string
	Address          string
	Rating           float32
	PlaceID          string
	UserRatingsTotal int
	PriceLevel       int
	Types            []string
}

type textSearchClient interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client textSearchClient
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// SearchNearby searches for places matching the query in the given location.
func (s *PlacesService) SearchNearby(ctx context.Context, location, query string) ([]Place, error) {
	fullQuery := query
	if location != "" {
		fullQuery = fmt.Sprintf("%s in %s", query, location)
	}

	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{Query: fullQuery, Language: "en"})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		if result.PermanentlyClosed || (result.Rating > 0 && result.Rating < minRating) {
			continue
		}
		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
			PriceLevel:       result.PriceLevel,
			Types:            result.Types,
		})
		if len(results) >= venuesPerInterest {
			break
		}
	}
	return results, nil
}

// ResearchVenues runs one text search per interest. Failed interests are skipped and
// reported together; the venues that were found are still returned.
func (s *PlacesService) ResearchVenues(ctx context.Context, location string, interests []string) (map[string][]itinerary.Candidate, error) {
	out := make(map[string][]itinerary.Candidate, len(interests))
	var errs []error
	for _, interest := range interests {
		places, err := s.SearchNearby(ctx, location, interest)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", interest, err))
			continue
		}
		for _, p := range places {
			out[interest] = append(out[interest], placeCandidate(p, interest))
		}
	}
	return out, errors.Join(errs...)
}

func placeCandidate(p Place, interest string) itinerary.Candidate {
	dollars, ok := priceLevelDollars[p.PriceLevel]
	if !ok || (p.PriceLevel == 0 && !isFreeKind(p.Types)) {
		dollars = unknownPriceDollars
	}
	return itinerary.Candidate{
		Name:         p.Name,
		Category:     strings.ToLower(interest),
		Cost:         types.FromDollars(dollars),
		DurationText: visitLength(interest, p.Types),
		Address:      p.Address,
		Description:  fmt.Sprintf("Rated %.1f by %d visitors", p.Rating, p.UserRatingsTotal),
		URL:          "https://www.google.com/maps/place/?q=place_id:" + p.PlaceID,
	}
}

// isFreeKind reports place types for which a missing price level usually means free entry.
func isFreeKind(placeTypes []string) bool {
	for _, t := range placeTypes {
		switch t {
		case "park", "church", "tourist_attraction", "natural_feature":
			return true
		}
	}
	return false
}

func visitLength(interest string, placeTypes []string) string {
	kinds := strings.ToLower(interest + " " + strings.Join(placeTypes, " "))
	switch {
	case strings.Contains(kinds, "museum"), strings.Contains(kinds, "amusement_park"):
		return "2 hours"
	case strings.Contains(kinds, "park"), strings.Contains(kinds, "gallery"):
		return "90 minutes"
	case strings.Contains(kinds, "restaurant"), strings.Contains(kinds, "dining"), strings.Contains(kinds, "food"):
		return "75 minutes"
	}
	return "1 hour"
}
