// README: Heuristic interest/category matching and meal-category detection.
package itinerary

import "strings"

// categoryKeywords maps an interest to substrings that count as a match in a venue
// category. False positives are acceptable.
var categoryKeywords = map[string][]string{
	"eat":           {"dining", "food", "restaurant", "meal", "cafe", "brunch", "lunch", "dinner"},
	"dining":        {"dining", "food", "restaurant", "meal", "cafe", "brunch", "lunch", "dinner"},
	"sightsee":      {"sightseeing", "landmark", "monument", "museum", "attraction", "tour"},
	"sightseeing":   {"sightseeing", "landmark", "monument", "museum", "attraction", "tour"},
	"entertainment": {"entertainment", "show", "concert", "theater", "theatre", "performance", "music", "comedy"},
	"shop":          {"shop", "shopping", "mall", "market", "boutique", "store"},
	"shopping":      {"shop", "shopping", "mall", "market", "boutique", "store"},
	"adventure":     {"adventure", "outdoor", "hike", "hiking", "climb", "rafting", "ski", "zip"},
	"cultural":      {"cultural", "culture", "museum", "gallery", "art", "history", "heritage"},
	"outdoor":       {"outdoor", "park", "trail", "hike", "hiking", "garden", "beach", "bike"},
	"relaxation":    {"relax", "spa", "retreat", "wellness"},
	"museum":        {"museum", "gallery", "exhibit"},
	"park":          {"park", "garden", "outdoor"},
	"gallery":       {"gallery", "art", "exhibit"},
}

var mealCategories = map[string]bool{
	"breakfast": true,
	"brunch":    true,
	"lunch":     true,
	"dinner":    true,
	"eat":       true,
	"dining":    true,
	"food":      true,
}

// MatchesCategory reports whether a venue category satisfies an interest.
func MatchesCategory(candidateCategory, interest string) bool {
	c := normalizeCategory(candidateCategory)
	i := normalizeCategory(interest)
	if c == "" || i == "" {
		return false
	}
	if c == i {
		return true
	}
	for _, kw := range categoryKeywords[i] {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether the category satisfies at least one interest.
func MatchesAny(candidateCategory string, interests []string) bool {
	for _, i := range interests {
		if MatchesCategory(candidateCategory, i) {
			return true
		}
	}
	return false
}

// IsMealCategory reports whether the category belongs to the meal set.
func IsMealCategory(category string) bool {
	return mealCategories[normalizeCategory(category)]
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
