package ai

import (
	"context"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

// ResearchProvider defines the contract for the model-backed research collaborators.
// It allows swapping providers (Gemini, a scraper, fixtures) behind the planner.
type ResearchProvider interface {
	// ResearchVenues returns candidate activities keyed by interest.
	ResearchVenues(ctx context.Context, location string, interests []string) (map[string][]itinerary.Candidate, error)

	// ResearchTransit estimates a single hop between two addresses in the location.
	ResearchTransit(ctx context.Context, from, to, location string) (itinerary.TransitQuote, error)

	// AllocateCosts suggests how the budget should be split across categories.
	AllocateCosts(ctx context.Context, location string, categories []string, budget types.Money) (itinerary.Allocation, error)
}

var _ ResearchProvider = (*GeminiProvider)(nil)
