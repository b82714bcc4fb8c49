// README: Per-category cost shares used to pre-order candidates within a category.
package itinerary

import (
	"sort"

	"wayfare/internal/types"
)

const (
	transitShareRate = 0.12
	transitShareCap  = 5000 // cents
)

// Allocation splits a budget into a transit reserve and per-activity shares by category.
// It is a hint only; the ledger is the hard constraint.
type Allocation struct {
	TransitBudget types.Money
	ByCategory    map[string]types.Money
}

// FallbackAllocation is used when the cost allocation collaborator is unavailable:
// transit takes 12% of the budget capped at $50, the rest is split evenly.
func FallbackAllocation(categories []string, budget types.Money) Allocation {
	transit := int64(float64(budget.Amount) * transitShareRate)
	if transit > transitShareCap {
		transit = transitShareCap
	}
	if transit < 0 {
		transit = 0
	}
	alloc := Allocation{
		TransitBudget: types.Money{Amount: transit, Currency: budget.Currency},
		ByCategory:    make(map[string]types.Money, len(categories)),
	}
	if len(categories) == 0 {
		return alloc
	}
	rest := budget.Amount - transit
	if rest < 0 {
		rest = 0
	}
	share := rest / int64(len(categories))
	for _, c := range categories {
		alloc.ByCategory[c] = types.Money{Amount: share, Currency: budget.Currency}
	}
	return alloc
}

// Dollars flattens the allocation into the request's map form.
func (a Allocation) Dollars() map[string]float64 {
	out := make(map[string]float64, len(a.ByCategory))
	for k, v := range a.ByCategory {
		out[k] = v.Dollars()
	}
	return out
}

// orderByShare puts candidates within the share first, closest to it first, and keeps
// over-share candidates after them in their original order.
func orderByShare(cands []Candidate, share types.Money) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	within := func(c Candidate) bool { return c.Cost.Amount <= share.Amount }
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := within(out[i]), within(out[j])
		if wi != wj {
			return wi
		}
		if !wi {
			return false
		}
		return share.Amount-out[i].Cost.Amount < share.Amount-out[j].Cost.Amount
	})
	return out
}
