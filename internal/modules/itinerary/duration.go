// README: Free-text duration parsing ("2 hours", "half day") into minutes.
package itinerary

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultDurationMinutes = 60
	halfDayMinutes         = 240
	fullDayMinutes         = 480
)

// MaxVisitMinutes caps any single visit at one day.
const MaxVisitMinutes = 24 * 60

var (
	hourPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)\b`)
	minutePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:minutes?|mins?|m)\b`)
)

// ParseDuration converts a duration description into minutes. Hour and minute fragments
// are additive; anything unrecognised yields DefaultDurationMinutes and the result never
// exceeds MaxVisitMinutes.
func ParseDuration(text string) int {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return DefaultDurationMinutes
	}
	switch {
	case strings.Contains(t, "half day"), strings.Contains(t, "half-day"):
		return halfDayMinutes
	case strings.Contains(t, "full day"), strings.Contains(t, "full-day"), strings.Contains(t, "all day"):
		return fullDayMinutes
	}

	total := 0.0
	matched := false
	for _, m := range hourPattern.FindAllStringSubmatch(t, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			total += v * 60
			matched = true
		}
	}
	for _, m := range minutePattern.FindAllStringSubmatch(t, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			total += v
			matched = true
		}
	}
	if !matched {
		return DefaultDurationMinutes
	}
	if total > MaxVisitMinutes {
		return MaxVisitMinutes
	}
	minutes := int(math.Round(total))
	if minutes <= 0 {
		return DefaultDurationMinutes
	}
	return minutes
}
