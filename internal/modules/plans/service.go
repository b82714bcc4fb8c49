// README: Plan service renders finished plans and persists them for later retrieval.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var ErrNotFound = errors.New("plan not found")

type repository interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id types.ID) (*Record, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

type Service struct {
	store repository
	now   func() time.Time
}

func NewService(store repository) *Service {
	return &Service{store: store, now: time.Now}
}

// Save stores the plan's view and returns the new plan ID.
func (s *Service) Save(ctx context.Context, p *itinerary.Plan) (types.ID, error) {
	if p == nil {
		return "", errors.New("nil plan")
	}
	body, err := json.Marshal(p.View())
	if err != nil {
		return "", fmt.Errorf("encode plan view: %w", err)
	}

	r := &Record{
		ID:          types.NewID(),
		Location:    p.Location,
		Interests:   p.Interests,
		Budget:      p.Budget,
		Spent:       p.Spent,
		WindowStart: p.Window.Start,
		WindowEnd:   p.Window.End,
		Body:        body,
		CreatedAt:   s.now().UTC(),
	}
	if r.Interests == nil {
		r.Interests = []string{}
	}
	if err := s.store.Create(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Record, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Recent lists stored plans, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.ListRecent(ctx, limit)
}
