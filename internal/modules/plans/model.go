package plans

import (
	"encoding/json"
	"time"

	"wayfare/internal/types"
)

// Record is a stored plan. Body holds the rendered plan view as JSON.
type Record struct {
	ID          types.ID
	Location    string
	Interests   []string
	Budget      types.Money
	Spent       types.Money
	WindowStart time.Time
	WindowEnd   time.Time
	Body        json.RawMessage
	CreatedAt   time.Time
}
