package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 60},
		{"2 hours", 120},
		{"1 hour", 60},
		{"2.5 hours", 150},
		{"45 minutes", 45},
		{"1 hour 30 minutes", 90},
		{"1h 15m", 75},
		{"3 hrs", 180},
		{"90 mins", 90},
		{"half day", 240},
		{"Half-Day tour", 240},
		{"full day", 480},
		{"flexible", 60},
		{"a while", 60},
		{"0 hours", 60},
		{"36 hours", MaxVisitMinutes},
		{"2562048 hours", MaxVisitMinutes},
		{"9999999999999999999999999999 minutes", MaxVisitMinutes},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.text))
		})
	}
}

func TestCandidateMinutes(t *testing.T) {
	assert.Equal(t, 30, Candidate{DurationText: "2 hours", DurationMinutes: 30}.Minutes())
	assert.Equal(t, 120, Candidate{DurationText: "2 hours"}.Minutes())
	assert.Equal(t, DefaultDurationMinutes, Candidate{}.Minutes())
	assert.Equal(t, MaxVisitMinutes, Candidate{DurationMinutes: 1 << 40}.Minutes())
}
