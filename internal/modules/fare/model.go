// README: Fare rate definition for each paid transit mode.
package fare

import "time"

const (
	ModeWalking = "walking"
	ModeTransit = "transit"
	ModeTaxi    = "taxi"
	ModeDriving = "driving"
)

// Rate amounts are in cents.
type Rate struct {
	Mode     string
	BaseFare int64
	PerKm    int64
	PerMin   int64
	Flat     int64
	Currency string
}

type FareRequest struct {
	Mode        string
	DistanceKm  float64
	DurationMin float64
	RequestTime time.Time
}

type FareResult struct {
	TotalAmount int64
	Currency    string
	Breakdown   map[string]int64
}
