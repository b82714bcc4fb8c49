package ai

import (
	"strings"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

// ActivityResult is one researched activity as returned by the model.
type ActivityResult struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`

	// EstimatedCost is the per-person price in dollars. Zero means free.
	EstimatedCost float64 `json:"estimated_cost"`

	// Duration is free text such as "2 hours" or "half day".
	Duration string `json:"duration"`

	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ActivityList is the top-level venue research response.
type ActivityList struct {
	Activities []ActivityResult `json:"activities"`
}

// TransitResult is the model's answer for a single hop.
type TransitResult struct {
	Method          string  `json:"method"`
	DurationMinutes int     `json:"duration_minutes"`
	Cost            float64 `json:"cost"`
	Description     string  `json:"description"`
}

// AllocationResult splits a budget into a transit reserve and per-category shares, in dollars.
type AllocationResult struct {
	TransitBudget float64            `json:"transit_budget"`
	Categories    map[string]float64 `json:"categories"`
}

// Candidate converts the activity, filing it under the given interest when the model
// left the category blank.
func (a ActivityResult) Candidate(interest string) (itinerary.Candidate, bool) {
	name := strings.TrimSpace(a.Name)
	if name == "" || a.EstimatedCost < 0 {
		return itinerary.Candidate{}, false
	}
	category := strings.TrimSpace(a.Category)
	if category == "" {
		category = interest
	}
	return itinerary.Candidate{
		Name:         name,
		Category:     strings.ToLower(category),
		Cost:         types.FromDollars(a.EstimatedCost),
		DurationText: a.Duration,
		Address:      strings.TrimSpace(a.Address),
		Description:  a.Description,
		Phone:        a.Phone,
		URL:          a.URL,
	}, true
}

func (t TransitResult) Quote() itinerary.TransitQuote {
	cost := t.Cost
	if cost < 0 {
		cost = 0
	}
	return itinerary.TransitQuote{
		Method:      t.Method,
		Minutes:     t.DurationMinutes,
		Cost:        types.FromDollars(cost),
		Description: t.Description,
	}
}

// Allocation converts the result, dropping negative shares.
func (r AllocationResult) Allocation() itinerary.Allocation {
	alloc := itinerary.Allocation{ByCategory: make(map[string]types.Money, len(r.Categories))}
	if r.TransitBudget > 0 {
		alloc.TransitBudget = types.FromDollars(r.TransitBudget)
	}
	for k, v := range r.Categories {
		if v < 0 {
			continue
		}
		alloc.ByCategory[strings.ToLower(strings.TrimSpace(k))] = types.FromDollars(v)
	}
	return alloc
}
