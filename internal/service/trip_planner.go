package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

const (
	fallbackVenueCost     = 5000 // cents
	fallbackVenueDuration = "3 hours"
)

var ErrBadRequest = errors.New("bad request")

// VenueResearcher discovers candidate venues per interest.
type VenueResearcher interface {
	ResearchVenues(ctx context.Context, location string, interests []string) (map[string][]itinerary.Candidate, error)
}

// CostAllocator suggests per-category spending targets.
type CostAllocator interface {
	AllocateCosts(ctx context.Context, location string, categories []string, budget types.Money) (itinerary.Allocation, error)
}

// PlanStore persists finished plans.
type PlanStore interface {
	Save(ctx context.Context, p *itinerary.Plan) (types.ID, error)
}

// PlanRequest is a scheduling request as received from a client.
type PlanRequest struct {
	UserRequest  string
	Location     string
	Budget       types.Money
	Interests    []string
	Start        time.Time
	End          time.Time
	StartAddress string
}

// PlanResult is a produced plan and its stored ID (empty when no store is configured).
type PlanResult struct {
	ID   types.ID
	Plan *itinerary.Plan
}

// TripPlanner orchestrates venue research, cost allocation, scheduling and persistence.
type TripPlanner struct {
	venues    VenueResearcher
	allocator CostAllocator
	scheduler *itinerary.Scheduler
	store     PlanStore
	log       *zap.Logger
}

// NewTripPlanner creates a TripPlanner. venues, allocator and store may be nil.
func NewTripPlanner(venues VenueResearcher, allocator CostAllocator, scheduler *itinerary.Scheduler, store PlanStore, log *zap.Logger) *TripPlanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &TripPlanner{
		venues:    venues,
		allocator: allocator,
		scheduler: scheduler,
		store:     store,
		log:       log,
	}
}

// PlanTrip builds and stores an itinerary. Collaborator failures degrade the plan; only
// invalid requests and storage failures are returned as errors.
func (p *TripPlanner) PlanTrip(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, fmt.Errorf("%w: location is required", ErrBadRequest)
	}
	interests := cleanInterests(req.Interests)
	p.log.Debug("planning trip",
		zap.String("location", req.Location),
		zap.Strings("interests", interests),
		zap.String("user_request", req.UserRequest))

	pool := p.research(ctx, req.Location, interests)
	alloc := p.allocate(ctx, req.Location, categoriesOf(interests, pool), req.Budget)

	plan, err := p.scheduler.Run(ctx, itinerary.Request{
		Location:             req.Location,
		Budget:               req.Budget,
		Window:               itinerary.Window{Start: req.Start, End: req.End},
		Interests:            interests,
		CandidatesByCategory: pool,
		CostAllocation:       alloc.Dollars(),
		StartAddress:         req.StartAddress,
	})
	if err != nil {
		return nil, err
	}

	p.log.Info("plan built",
		zap.String("location", plan.Location),
		zap.Int("items", len(plan.Items)),
		zap.Int("venues", len(plan.Venues())),
		zap.Float64("spent", plan.Spent.Dollars()),
		zap.Float64("budget", plan.Budget.Dollars()))

	res := &PlanResult{Plan: plan}
	if p.store != nil {
		id, err := p.store.Save(ctx, plan)
		if err != nil {
			return nil, fmt.Errorf("save plan: %w", err)
		}
		res.ID = id
	}
	return res, nil
}

func (p *TripPlanner) research(ctx context.Context, location string, interests []string) map[string][]itinerary.Candidate {
	var pool map[string][]itinerary.Candidate
	if p.venues != nil {
		var err error
		pool, err = p.venues.ResearchVenues(ctx, location, interests)
		if err != nil {
			p.log.Warn("venue research failed", zap.String("location", location), zap.Error(err))
		}
	}
	if pool == nil {
		pool = make(map[string][]itinerary.Candidate)
	}
	for _, in := range interests {
		if len(pool[in]) == 0 {
			pool[in] = []itinerary.Candidate{fallbackVenue(in)}
		}
	}
	return pool
}

func (p *TripPlanner) allocate(ctx context.Context, location string, categories []string, budget types.Money) itinerary.Allocation {
	if p.allocator != nil && len(categories) > 0 {
		alloc, err := p.allocator.AllocateCosts(ctx, location, categories, budget)
		if err == nil {
			return alloc
		}
		p.log.Warn("cost allocation failed, using even split", zap.Error(err))
	}
	return itinerary.FallbackAllocation(categories, budget)
}

// fallbackVenue stands in for an interest that research returned nothing for.
func fallbackVenue(interest string) itinerary.Candidate {
	title := strings.ToUpper(interest[:1]) + interest[1:]
	return itinerary.Candidate{
		Name:         fmt.Sprintf("Popular %s Activity", title),
		Category:     interest,
		Cost:         types.Cents(fallbackVenueCost),
		DurationText: fallbackVenueDuration,
		Description:  fmt.Sprintf("A well-reviewed local %s option.", interest),
	}
}

func cleanInterests(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// categoriesOf lists the interests first, then any other research keys sorted.
func categoriesOf(interests []string, pool map[string][]itinerary.Candidate) []string {
	seen := make(map[string]bool, len(pool))
	out := make([]string, 0, len(pool))
	for _, in := range interests {
		seen[in] = true
		out = append(out, in)
	}
	extra := make([]string, 0, len(pool))
	for k := range pool {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
