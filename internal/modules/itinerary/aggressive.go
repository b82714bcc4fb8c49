package itinerary

import (
	"context"

	"go.uber.org/zap"
)

// broadeningCategories are swept in order once the interest pool is exhausted.
var broadeningCategories = []string{
	"entertainment", "sightseeing", "cultural", "shopping", "outdoor", "museum", "park", "gallery",
}

func (s *Scheduler) hasSlack(st *runState) bool {
	return st.remainingTime() > s.cfg.MinRemainingTime &&
		st.available().Amount > s.cfg.MinRemainingBudget.Amount
}

// fillAggressively pushes the schedule towards the window end using the whole non-meal pool.
func (s *Scheduler) fillAggressively(ctx context.Context, st *runState, pool []Candidate) int {
	byCategory := make([][]Candidate, len(broadeningCategories))
	for i, cat := range broadeningCategories {
		for _, c := range pool {
			if MatchesCategory(c.Category, cat) {
				byCategory[i] = append(byCategory[i], c)
			}
		}
	}

	total := 0
	for iter := 0; iter < s.cfg.AggressiveIterations && s.hasSlack(st); iter++ {
		swept := 0
		for i := range broadeningCategories {
			if len(byCategory[i]) == 0 {
				continue
			}
			swept += s.fillGap(ctx, st, st.window.End, byCategory[i], s.cfg.TransitCeiling, s.cfg.BatchSize)
		}
		total += swept
		if swept == 0 {
			break
		}
	}

	for iter := 0; iter < s.cfg.FinalPassIterations && s.hasSlack(st); iter++ {
		n := s.fillPass(ctx, st, st.window.End, pool, s.cfg.RelaxedTransitCeiling, 1)
		if n == 0 {
			break
		}
		total += n
	}
	if total > 0 {
		s.logger.Debug("aggressive fill placed venues", zap.Int("count", total))
	}
	return total
}
