// README: Meal anchors derived from the window shape, and meal-to-slot matching.
package itinerary

import (
	"sort"
	"strings"
	"time"
)

type MealKind string

const (
	MealBreakfast MealKind = "breakfast"
	MealBrunch    MealKind = "brunch"
	MealLunch     MealKind = "lunch"
	MealDinner    MealKind = "dinner"
)

// MealSlot is a meal anchor. Candidate is nil when no meal candidate was matched.
type MealSlot struct {
	Kind      MealKind
	Target    time.Time
	Candidate *Candidate
}

// PlanMealSlots computes meal anchors for the window and matches meal candidates to them.
// Targets past the window end are pulled back to the end; the scheduler moves the meal
// earlier so that it still finishes inside the window.
func PlanMealSlots(w Window, meals []Candidate) []MealSlot {
	slots := mealAnchors(w)
	assignMeals(slots, meals)
	return slots
}

func mealAnchors(w Window) []MealSlot {
	start := w.Start
	length := w.Duration()
	if length <= 0 {
		return nil
	}
	at := func(hour, minute int) time.Time {
		return time.Date(start.Year(), start.Month(), start.Day(), hour, minute, 0, 0, start.Location())
	}

	var slots []MealSlot
	switch {
	case length >= 8*time.Hour && start.Hour() < 11:
		slots = []MealSlot{
			{Kind: MealBrunch, Target: start.Add(time.Hour)},
			{Kind: MealLunch, Target: at(12, 30)},
			{Kind: MealDinner, Target: at(18, 30)},
		}
	case length >= 8*time.Hour:
		dinner := at(18, 30)
		if later := start.Add(6 * time.Hour); later.After(dinner) {
			dinner = later
		}
		slots = []MealSlot{
			{Kind: MealLunch, Target: start.Add(time.Hour)},
			{Kind: MealDinner, Target: dinner},
			{Kind: MealDinner, Target: dinner.Add(3 * time.Hour)},
		}
	case length >= 5*time.Hour:
		slots = []MealSlot{
			{Kind: mealKindAt(start.Add(length / 3)), Target: start.Add(length / 3)},
			{Kind: mealKindAt(start.Add(length * 3 / 4)), Target: start.Add(length * 3 / 4)},
		}
	default:
		mid := start.Add(length / 2)
		slots = []MealSlot{{Kind: mealKindAt(mid), Target: mid}}
	}

	out := slots[:0]
	for _, s := range slots {
		if s.Target.Before(w.Start) {
			continue
		}
		if !s.Target.Before(w.End) {
			s.Target = w.End
		}
		if n := len(out); n > 0 && !s.Target.After(out[n-1].Target) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func mealKindAt(t time.Time) MealKind {
	switch h := t.Hour(); {
	case h < 11:
		return MealBreakfast
	case h < 16:
		return MealLunch
	default:
		return MealDinner
	}
}

// candidateMealKind reads the meal kind from the name and category; "" means generic.
func candidateMealKind(c Candidate) MealKind {
	text := strings.ToLower(c.Name + " " + c.Category)
	switch {
	case strings.Contains(text, "breakfast"):
		return MealBreakfast
	case strings.Contains(text, "brunch"):
		return MealBrunch
	case strings.Contains(text, "lunch"):
		return MealLunch
	case strings.Contains(text, "dinner"), strings.Contains(text, "supper"):
		return MealDinner
	}
	return ""
}

func mealPriority(k MealKind) int {
	switch k {
	case MealBreakfast, MealBrunch:
		return 0
	case MealLunch:
		return 1
	case MealDinner:
		return 2
	}
	return 3
}

func sameMeal(a, b MealKind) bool {
	return a != "" && b != "" && mealPriority(a) == mealPriority(b)
}

func assignMeals(slots []MealSlot, meals []Candidate) {
	ordered := make([]Candidate, len(meals))
	copy(ordered, meals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return mealPriority(candidateMealKind(ordered[i])) < mealPriority(candidateMealKind(ordered[j]))
	})

	var rest []int
	for i := range ordered {
		kind := candidateMealKind(ordered[i])
		matched := false
		for s := range slots {
			if slots[s].Candidate == nil && sameMeal(slots[s].Kind, kind) {
				slots[s].Candidate = &ordered[i]
				matched = true
				break
			}
		}
		if !matched {
			rest = append(rest, i)
		}
	}
	for _, i := range rest {
		for s := range slots {
			if slots[s].Candidate == nil {
				slots[s].Candidate = &ordered[i]
				break
			}
		}
	}
}
