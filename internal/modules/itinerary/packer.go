// README: Greedy gap packer. Ranks candidates by transit, duration, cost and input order.
package itinerary

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type option struct {
	c     *Candidate
	leg   TransitLeg
	order int
}

// fillGap runs passes until one of them places nothing. It returns the venues placed.
func (s *Scheduler) fillGap(ctx context.Context, st *runState, deadline time.Time, pool []Candidate, ceiling, batch int) int {
	total := 0
	for {
		if ctx.Err() != nil {
			return total
		}
		n := s.fillPass(ctx, st, deadline, pool, ceiling, batch)
		if n == 0 {
			return total
		}
		total += n
	}
}

// fillPass ranks the unplaced part of pool from the current address and accepts up to
// batch candidates in rank order, stopping at the first that no longer fits.
func (s *Scheduler) fillPass(ctx context.Context, st *runState, deadline time.Time, pool []Candidate, ceiling, batch int) int {
	if !st.clock.Before(deadline) {
		return 0
	}
	var open []option
	for i := range pool {
		if !st.placed[pool[i].Name] {
			open = append(open, option{c: &pool[i], order: i})
		}
	}
	if len(open) == 0 {
		return 0
	}

	s.estimateAll(ctx, st.lastAddress, st.location, open)

	feasible := open[:0]
	for _, o := range open {
		if o.leg.Minutes > ceiling {
			continue
		}
		if s.affordable(ctx, st, o.c, o.leg, deadline) {
			feasible = append(feasible, o)
		}
	}
	sort.SliceStable(feasible, func(i, j int) bool {
		a, b := feasible[i], feasible[j]
		if a.leg.Minutes != b.leg.Minutes {
			return a.leg.Minutes < b.leg.Minutes
		}
		if da, db := a.c.Minutes(), b.c.Minutes(); da != db {
			return da < db
		}
		if a.c.Cost.Amount != b.c.Cost.Amount {
			return a.c.Cost.Amount < b.c.Cost.Amount
		}
		return a.order < b.order
	})

	placed := 0
	for _, o := range feasible {
		if placed >= batch {
			break
		}
		leg := o.leg
		if placed > 0 {
			// the running address moved; the ranked estimate no longer applies
			leg = s.estimator.Estimate(ctx, st.lastAddress, o.c.Address, st.location)
			if leg.Minutes > ceiling {
				break
			}
		}
		if !s.affordable(ctx, st, o.c, leg, deadline) {
			break
		}
		st.place(o.c, leg)
		placed++
		s.logger.Debug("placed venue",
			zap.String("venue", o.c.Name),
			zap.Int("transit_minutes", leg.Minutes),
			zap.Time("end", st.clock))
	}
	return placed
}

// estimateAll fans the lookups out and writes each result into its own slot, so the
// completion order never reaches the ranking.
func (s *Scheduler) estimateAll(ctx context.Context, from, location string, open []option) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range open {
		i := i
		g.Go(func() error {
			open[i].leg = s.estimator.Estimate(gctx, from, open[i].c.Address, location)
			return nil
		})
	}
	_ = g.Wait()
}
