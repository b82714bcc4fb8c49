package itinerary

import (
	"time"

	"wayfare/internal/types"
)

// runState is owned by a single Run: clock, ledger, placed names and the schedule.
type runState struct {
	location    string
	window      Window
	budget      types.Money
	spent       types.Money
	pending     []*Candidate
	clock       time.Time
	lastAddress string
	placed      map[string]bool
	items       []ScheduledItem
}

func newRunState(req Request) *runState {
	return &runState{
		location:    req.Location,
		window:      req.Window,
		budget:      req.Budget,
		spent:       types.Money{Currency: req.Budget.Currency},
		clock:       req.Window.Start,
		lastAddress: req.StartAddress,
		placed:      make(map[string]bool),
	}
}

// available is what a new placement may spend without touching the prices of pending meals.
func (s *runState) available() types.Money {
	out := s.budget.Sub(s.spent)
	for _, m := range s.pending {
		out = out.Sub(m.Cost)
	}
	return out
}

func (s *runState) unspent() types.Money {
	return s.budget.Sub(s.spent)
}

func (s *runState) remainingTime() time.Duration {
	return s.window.End.Sub(s.clock)
}

// fits reports whether the leg and the visit can start now and finish by the deadline
// within the available money.
func (s *runState) fits(c *Candidate, leg TransitLeg, deadline time.Time) bool {
	if s.window.End.Before(deadline) {
		deadline = s.window.End
	}
	if leg.Minutes+c.Minutes() > minutesUntil(s.clock, deadline) {
		return false
	}
	return c.Cost.Add(leg.Cost).Amount <= s.available().Amount
}

// place appends the leg (when it takes time) and the visit starting at the clock.
func (s *runState) place(c *Candidate, leg TransitLeg) {
	s.placeAt(c, leg, s.clock)
}

func (s *runState) placeAt(c *Candidate, leg TransitLeg, start time.Time) {
	if leg.Minutes > 0 {
		l := leg
		end := start.Add(minutes(l.Minutes))
		s.items = append(s.items, ScheduledItem{Kind: KindTransit, Leg: &l, Start: start, End: end})
		s.spent = s.spent.Add(l.Cost)
		start = end
	}
	end := start.Add(minutes(c.Minutes()))
	s.items = append(s.items, ScheduledItem{Kind: KindVenue, Candidate: c, Start: start, End: end})
	s.spent = s.spent.Add(c.Cost)
	s.clock = end
	s.lastAddress = c.Address
	s.placed[c.Name] = true
}

func (s *runState) plan(interests []string) *Plan {
	return &Plan{
		Location:  s.location,
		Interests: interests,
		Budget:    s.budget,
		Window:    s.window,
		Items:     s.items,
		Spent:     s.spent,
	}
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// minutesUntil is the whole minutes from t to deadline, negative when deadline has passed.
func minutesUntil(t, deadline time.Time) int {
	return int(deadline.Sub(t) / time.Minute)
}
