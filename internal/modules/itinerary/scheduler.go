// README: Scheduler turns a candidate pool, budget and window into an ordered plan.
package itinerary

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"wayfare/internal/types"
)

// TransitEstimator is what the packer needs from transit estimation. *Estimator satisfies it.
type TransitEstimator interface {
	Estimate(ctx context.Context, from, to, location string) TransitLeg
}

// Config holds the tunable thresholds of a run. Minute values are transit minutes.
type Config struct {
	TransitCeiling        int
	RelaxedTransitCeiling int
	BatchSize             int
	Concurrency           int
	MealTransitReserve    time.Duration
	MealTolerance         time.Duration
	AggressiveIterations  int
	FinalPassIterations   int
	MinRemainingTime      time.Duration
	MinRemainingBudget    types.Money
}

func DefaultConfig() Config {
	return Config{
		TransitCeiling:        30,
		RelaxedTransitCeiling: 60,
		BatchSize:             3,
		Concurrency:           8,
		MealTransitReserve:    15 * time.Minute,
		MealTolerance:         90 * time.Minute,
		AggressiveIterations:  30,
		FinalPassIterations:   50,
		MinRemainingTime:      30 * time.Minute,
		MinRemainingBudget:    types.Cents(500),
	}
}

// withDefaults gives zero fields their default so a partially filled Config is usable.
// A negative iteration count or floor turns that limit off.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TransitCeiling <= 0 {
		c.TransitCeiling = d.TransitCeiling
	}
	if c.RelaxedTransitCeiling == 0 {
		c.RelaxedTransitCeiling = d.RelaxedTransitCeiling
	}
	if c.RelaxedTransitCeiling < c.TransitCeiling {
		c.RelaxedTransitCeiling = c.TransitCeiling
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.MealTransitReserve < 0 {
		c.MealTransitReserve = 0
	}
	if c.MealTolerance <= 0 {
		c.MealTolerance = d.MealTolerance
	}
	switch {
	case c.AggressiveIterations == 0:
		c.AggressiveIterations = d.AggressiveIterations
	case c.AggressiveIterations < 0:
		c.AggressiveIterations = 0
	}
	switch {
	case c.FinalPassIterations == 0:
		c.FinalPassIterations = d.FinalPassIterations
	case c.FinalPassIterations < 0:
		c.FinalPassIterations = 0
	}
	switch {
	case c.MinRemainingTime == 0:
		c.MinRemainingTime = d.MinRemainingTime
	case c.MinRemainingTime < 0:
		c.MinRemainingTime = 0
	}
	switch {
	case c.MinRemainingBudget.Amount == 0:
		c.MinRemainingBudget = d.MinRemainingBudget
	case c.MinRemainingBudget.IsNegative():
		c.MinRemainingBudget = types.Money{Currency: c.MinRemainingBudget.Currency}
	}
	return c
}

type Scheduler struct {
	estimator TransitEstimator
	cfg       Config
	logger    *zap.Logger
}

type Option func(*Scheduler)

func WithConfig(cfg Config) Option {
	return func(s *Scheduler) { s.cfg = cfg.withDefaults() }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler builds a Scheduler. A nil estimator falls back to an Estimator without a
// researcher, which resolves every unknown pair to the walking default.
func NewScheduler(estimator TransitEstimator, opts ...Option) *Scheduler {
	s := &Scheduler{
		estimator: estimator,
		cfg:       DefaultConfig(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.estimator == nil {
		s.estimator = NewEstimator(nil, WithEstimatorLogger(s.logger))
	}
	return s
}

// Run plans one itinerary. Only precondition violations return an error; an empty plan
// is a valid result.
func (s *Scheduler) Run(ctx context.Context, req Request) (*Plan, error) {
	if req.Budget.IsNegative() {
		return nil, ErrNegativeBudget
	}
	if !req.Window.End.After(req.Window.Start) {
		return nil, ErrInvalidWindow
	}

	all := flattenCandidates(req)
	var meals, others []Candidate
	for _, c := range all {
		if IsMealCategory(c.Category) {
			meals = append(meals, c)
		} else {
			others = append(others, c)
		}
	}
	primary := others
	if len(req.Interests) > 0 {
		primary = nil
		for _, c := range others {
			if MatchesAny(c.Category, req.Interests) {
				primary = append(primary, c)
			}
		}
	}

	st := newRunState(req)
	slots := PlanMealSlots(req.Window, meals)
	log := s.logger.With(zap.String("location", req.Location))
	log.Debug("starting run",
		zap.Int("candidates", len(all)),
		zap.Int("primary", len(primary)),
		zap.Int("meal_slots", len(slots)))

	for i, slot := range slots {
		if slot.Candidate == nil {
			continue
		}
		st.pending = pendingMeals(slots[i:])
		meal := slot.Candidate
		deadline := req.Window.End.Add(-minutes(meal.Minutes()) - s.cfg.MealTransitReserve)
		if slot.Target.Before(deadline) {
			deadline = slot.Target
		}
		s.fillGap(ctx, st, deadline, primary, s.cfg.TransitCeiling, s.cfg.BatchSize)

		st.pending = pendingMeals(slots[i+1:])
		if !s.placeMeal(ctx, st, slot) {
			log.Debug("meal skipped", zap.String("meal", meal.Name), zap.Time("target", slot.Target))
		}
	}
	st.pending = nil

	s.fillGap(ctx, st, req.Window.End, primary, s.cfg.TransitCeiling, s.cfg.BatchSize)
	s.fillAggressively(ctx, st, others)

	plan := st.plan(req.Interests)
	log.Info("itinerary planned",
		zap.Int("items", len(plan.Items)),
		zap.Int("venues", len(plan.Venues())),
		zap.Float64("spent", plan.Spent.Dollars()),
		zap.Float64("remaining", plan.Remaining().Dollars()))
	return plan, nil
}

// placeMeal schedules the slot's meal at the clock. An empty schedule may wait for the target.
func (s *Scheduler) placeMeal(ctx context.Context, st *runState, slot MealSlot) bool {
	meal := slot.Candidate
	if st.placed[meal.Name] {
		return false
	}
	start := st.clock
	if len(st.items) == 0 && start.Before(slot.Target) {
		start = slot.Target
	}
	if start.After(slot.Target.Add(s.cfg.MealTolerance)) {
		return false
	}
	leg := s.estimator.Estimate(ctx, st.lastAddress, meal.Address, st.location)
	if leg.Minutes+meal.Minutes() > minutesUntil(start, st.window.End) {
		return false
	}
	need := meal.Cost.Add(leg.Cost).Add(s.mealReserve(ctx, st, meal.Address))
	if need.Amount > st.unspent().Amount {
		return false
	}
	st.placeAt(meal, leg, start)
	return true
}

// affordable is fits plus the money the pending meals need afterwards, their legs included,
// when the run continues from c.
func (s *Scheduler) affordable(ctx context.Context, st *runState, c *Candidate, leg TransitLeg, deadline time.Time) bool {
	if !st.fits(c, leg, deadline) {
		return false
	}
	if len(st.pending) == 0 {
		return true
	}
	need := c.Cost.Add(leg.Cost).Add(s.mealReserve(ctx, st, c.Address))
	return need.Amount <= st.unspent().Amount
}

// mealReserve prices the pending meals visited in order starting from the given address.
func (s *Scheduler) mealReserve(ctx context.Context, st *runState, from string) types.Money {
	var total types.Money
	for _, m := range st.pending {
		leg := s.estimator.Estimate(ctx, from, m.Address, st.location)
		total = total.Add(m.Cost).Add(leg.Cost)
		from = m.Address
	}
	return total
}

func pendingMeals(slots []MealSlot) []*Candidate {
	var out []*Candidate
	for _, s := range slots {
		if s.Candidate != nil {
			out = append(out, s.Candidate)
		}
	}
	return out
}

// flattenCandidates lists categories named by an interest first, then the rest sorted,
// keeps the first candidate for each name and pre-orders each category by its cost share.
func flattenCandidates(req Request) []Candidate {
	sorted := make([]string, 0, len(req.CandidatesByCategory))
	for k := range req.CandidatesByCategory {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var keys []string
	seenKey := make(map[string]bool)
	for _, interest := range req.Interests {
		for _, k := range sorted {
			if !seenKey[k] && strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(interest)) {
				keys = append(keys, k)
				seenKey[k] = true
			}
		}
	}
	for _, k := range sorted {
		if !seenKey[k] {
			keys = append(keys, k)
		}
	}

	var out []Candidate
	seenName := make(map[string]bool)
	for _, k := range keys {
		cands := req.CandidatesByCategory[k]
		if share, ok := lookupShare(req.CostAllocation, k); ok {
			cands = orderByShare(cands, share)
		}
		for _, c := range cands {
			if c.Name == "" || seenName[c.Name] || c.Cost.IsNegative() {
				continue
			}
			seenName[c.Name] = true
			if c.Category == "" {
				c.Category = k
			}
			c.Category = normalizeCategory(c.Category)
			if c.Cost.Currency == "" {
				c.Cost.Currency = types.DefaultCurrency
			}
			c.DurationMinutes = c.Minutes()
			out = append(out, c)
		}
	}
	return out
}

func lookupShare(alloc map[string]float64, category string) (types.Money, bool) {
	if v, ok := alloc[category]; ok {
		return types.FromDollars(v), true
	}
	if v, ok := alloc[normalizeCategory(category)]; ok {
		return types.FromDollars(v), true
	}
	return types.Money{}, false
}
