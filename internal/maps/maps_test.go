package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"wayfare/internal/modules/fare"
)

type stubDirections struct {
	byMode map[maps.Mode]*maps.Leg
	err    map[maps.Mode]error
	seen   []*maps.DirectionsRequest
}

func (s *stubDirections) Directions(_ context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error) {
	s.seen = append(s.seen, r)
	if err := s.err[r.Mode]; err != nil {
		return nil, nil, err
	}
	leg, ok := s.byMode[r.Mode]
	if !ok {
		return nil, nil, nil
	}
	return []maps.Route{{Legs: []*maps.Leg{leg}}}, nil, nil
}

func leg(d time.Duration, meters int) *maps.Leg {
	return &maps.Leg{Duration: d, Distance: maps.Distance{Meters: meters}}
}

func TestRouteService_ShortWalk(t *testing.T) {
	dir := &stubDirections{byMode: map[maps.Mode]*maps.Leg{
		maps.TravelModeWalking: leg(12*time.Minute+20*time.Second, 900),
	}}
	s := newRouteService(dir, nil)

	q, err := s.ResearchTransit(context.Background(), "Pier 39", "Coit Tower", "San Francisco")
	require.NoError(t, err)
	assert.Equal(t, "walking", q.Method)
	assert.Equal(t, 13, q.Minutes)
	assert.Equal(t, int64(0), q.Cost.Amount)
	require.Len(t, dir.seen, 1)
	assert.Equal(t, "Pier 39, San Francisco", dir.seen[0].Origin)
}

func TestRouteService_LongWalkTakesTaxi(t *testing.T) {
	dir := &stubDirections{byMode: map[maps.Mode]*maps.Leg{
		maps.TravelModeWalking: leg(55*time.Minute, 4200),
		maps.TravelModeDriving: leg(14*time.Minute, 5000),
	}}
	s := newRouteService(dir, nil)

	q, err := s.ResearchTransit(context.Background(), "Pier 39", "Twin Peaks, San Francisco", "San Francisco")
	require.NoError(t, err)
	assert.Equal(t, "taxi", q.Method)
	assert.Equal(t, 14, q.Minutes)
	assert.Greater(t, q.Cost.Amount, int64(0))
	assert.Equal(t, "Twin Peaks, San Francisco", dir.seen[1].Destination)

	// Same price whatever the wall clock says; a night quote would add the surcharge.
	day, err := fare.NewService(nil).EstimateMoney(context.Background(), fare.FareRequest{
		Mode:        fare.ModeTaxi,
		DistanceKm:  5,
		DurationMin: 14,
		RequestTime: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, day.Amount, q.Cost.Amount)
}

func TestRouteService_Errors(t *testing.T) {
	dir := &stubDirections{err: map[maps.Mode]error{
		maps.TravelModeWalking: errors.New("OVER_QUERY_LIMIT"),
		maps.TravelModeDriving: errors.New("OVER_QUERY_LIMIT"),
	}}
	_, err := newRouteService(dir, nil).ResearchTransit(context.Background(), "a", "b", "")
	assert.Error(t, err)

	_, err = newRouteService(&stubDirections{}, nil).ResearchTransit(context.Background(), "a", "b", "")
	assert.Error(t, err)
}

type stubTextSearch struct {
	results map[string][]maps.PlacesSearchResult
	fail    map[string]bool
}

func (s *stubTextSearch) TextSearch(_ context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error) {
	if s.fail[r.Query] {
		return maps.PlacesSearchResponse{}, errors.New("REQUEST_DENIED")
	}
	return maps.PlacesSearchResponse{Results: s.results[r.Query]}, nil
}

func TestPlacesService_ResearchVenues(t *testing.T) {
	ts := &stubTextSearch{
		results: map[string][]maps.PlacesSearchResult{
			"museum in Lisbon": {
				{Name: "Gulbenkian", FormattedAddress: "Av. de Berna 45A", Rating: 4.7, PriceLevel: 2, PlaceID: "g1", Types: []string{"museum"}},
				{Name: "Tiny Museum", Rating: 2.9, PriceLevel: 1},
				{Name: "Closed Museum", Rating: 4.9, PermanentlyClosed: true},
			},
			"park in Lisbon": {
				{Name: "Parque Eduardo VII", Rating: 4.5, Types: []string{"park"}},
			},
		},
		fail: map[string]bool{"nightlife in Lisbon": true},
	}
	s := &PlacesService{client: ts}

	got, err := s.ResearchVenues(context.Background(), "Lisbon", []string{"museum", "park", "nightlife"})
	assert.Error(t, err)

	require.Len(t, got["museum"], 1)
	m := got["museum"][0]
	assert.Equal(t, "Gulbenkian", m.Name)
	assert.Equal(t, "museum", m.Category)
	assert.Equal(t, int64(3000), m.Cost.Amount)
	assert.Equal(t, 120, m.Minutes())
	assert.Contains(t, m.URL, "g1")

	require.Len(t, got["park"], 1)
	assert.Equal(t, int64(0), got["park"][0].Cost.Amount)
	assert.Equal(t, 90, got["park"][0].Minutes())
	assert.Empty(t, got["nightlife"])
}
