// README: Itinerary domain types: candidates, transit legs, scheduled items and plans.
package itinerary

import (
	"errors"
	"time"

	"wayfare/internal/types"
)

var (
	ErrNegativeBudget = errors.New("budget must not be negative")
	ErrInvalidWindow  = errors.New("window end must be after window start")
)

// Candidate is an unscheduled venue or activity produced by venue research.
type Candidate struct {
	Name         string
	Category     string
	Cost         types.Money
	DurationText string
	// DurationMinutes overrides DurationText when positive.
	DurationMinutes int
	// Address may be empty; an empty address never produces a transit leg.
	Address     string
	Description string
	Phone       string
	URL         string
}

// Minutes returns the resolved visit duration, at most MaxVisitMinutes.
func (c Candidate) Minutes() int {
	if c.DurationMinutes > MaxVisitMinutes {
		return MaxVisitMinutes
	}
	if c.DurationMinutes > 0 {
		return c.DurationMinutes
	}
	return ParseDuration(c.DurationText)
}

type TransitMethod string

const (
	MethodWalking TransitMethod = "walking"
	MethodTransit TransitMethod = "transit"
	MethodTaxi    TransitMethod = "taxi"
	MethodDriving TransitMethod = "driving"
)

// TransitLeg is a travel segment between two consecutively visited addresses.
type TransitLeg struct {
	Method      TransitMethod
	Minutes     int
	Cost        types.Money
	Description string
	From        string
	To          string
}

type ItemKind string

const (
	KindVenue   ItemKind = "venue"
	KindTransit ItemKind = "transit"
)

// ScheduledItem is either a venue visit or a transit leg. Exactly one of Candidate and
// Leg is set, matching Kind.
type ScheduledItem struct {
	Kind      ItemKind
	Candidate *Candidate
	Leg       *TransitLeg
	Start     time.Time
	End       time.Time
}

func (it ScheduledItem) Cost() types.Money {
	switch it.Kind {
	case KindVenue:
		return it.Candidate.Cost
	case KindTransit:
		return it.Leg.Cost
	}
	return types.Money{}
}

func (it ScheduledItem) Minutes() int {
	return int(it.End.Sub(it.Start) / time.Minute)
}

// Window is the absolute time range a plan must fit in.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Request is the input of a single scheduling run.
type Request struct {
	Location string
	Budget   types.Money
	Window   Window
	// Interests select the primary pool. When empty every non-meal candidate is primary.
	Interests            []string
	CandidatesByCategory map[string][]Candidate
	// CostAllocation maps a category to its per-activity share in dollars.
	CostAllocation map[string]float64
	// StartAddress is where the traveller begins; empty means unknown.
	StartAddress string
}

// Plan is the chronologically ordered output of a run.
type Plan struct {
	Location  string
	Interests []string
	Budget    types.Money
	Window    Window
	Items     []ScheduledItem
	Spent     types.Money
}

func (p *Plan) Remaining() types.Money {
	return p.Budget.Sub(p.Spent)
}

// Venues returns only the venue items, in order.
func (p *Plan) Venues() []ScheduledItem {
	var out []ScheduledItem
	for _, it := range p.Items {
		if it.Kind == KindVenue {
			out = append(out, it)
		}
	}
	return out
}
