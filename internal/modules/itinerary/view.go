// README: JSON view of a plan with activities keyed "Activity N" in schedule order.
package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TimeLayout is the wire format of activity timestamps (always UTC).
const TimeLayout = "2006-01-02T15:04:05.000Z"

type ItemView struct {
	Venue           string  `json:"venue"`
	Type            string  `json:"type"`
	Category        string  `json:"category"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Cost            float64 `json:"cost"`
	Description     string  `json:"description"`
	Address         string  `json:"address"`
	Phone           string  `json:"phone,omitempty"`
	URL             string  `json:"url,omitempty"`
	Method          string  `json:"method,omitempty"`
}

type ActivityEntry struct {
	Key  string
	Item ItemView
}

// ActivityMap is an ordered JSON object.
type ActivityMap []ActivityEntry

func (m ActivityMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Item)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *ActivityMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("activities: expected object, got %v", tok)
	}
	var out ActivityMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("activities: expected key, got %v", tok)
		}
		var item ItemView
		if err := dec.Decode(&item); err != nil {
			return fmt.Errorf("activities[%s]: %w", key, err)
		}
		out = append(out, ActivityEntry{Key: key, Item: item})
	}
	*m = out
	return nil
}

type Summary struct {
	TotalActivities int     `json:"total_activities"`
	TotalCost       float64 `json:"total_cost"`
	RemainingBudget float64 `json:"remaining_budget"`
}

type PlanView struct {
	Location           string      `json:"location"`
	Budget             float64     `json:"budget"`
	InterestActivities []string    `json:"interest_activities"`
	Activities         ActivityMap `json:"activities"`
	TotalCost          float64     `json:"total_cost"`
	RemainingBudget    float64     `json:"remaining_budget"`
	Summary            Summary     `json:"summary"`
}

// View renders the plan for the wire.
func (p *Plan) View() PlanView {
	activities := make(ActivityMap, 0, len(p.Items))
	for i, it := range p.Items {
		activities = append(activities, ActivityEntry{
			Key:  fmt.Sprintf("Activity %d", i+1),
			Item: itemView(it),
		})
	}
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	return PlanView{
		Location:           p.Location,
		Budget:             p.Budget.Dollars(),
		InterestActivities: interests,
		Activities:         activities,
		TotalCost:          p.Spent.Dollars(),
		RemainingBudget:    p.Remaining().Dollars(),
		Summary: Summary{
			TotalActivities: len(p.Venues()),
			TotalCost:       p.Spent.Dollars(),
			RemainingBudget: p.Remaining().Dollars(),
		},
	}
}

func itemView(it ScheduledItem) ItemView {
	v := ItemView{
		Type:            string(it.Kind),
		StartTime:       it.Start.UTC().Format(TimeLayout),
		EndTime:         it.End.UTC().Format(TimeLayout),
		DurationMinutes: it.Minutes(),
		Cost:            it.Cost().Dollars(),
	}
	switch it.Kind {
	case KindVenue:
		c := it.Candidate
		v.Venue = c.Name
		v.Category = c.Category
		v.Description = c.Description
		v.Address = c.Address
		v.Phone = c.Phone
		v.URL = c.URL
	case KindTransit:
		l := it.Leg
		v.Venue = l.Description
		v.Category = "transit"
		v.Description = fmt.Sprintf("%s from %s to %s", capitalize(string(l.Method)), l.From, l.To)
		v.Address = l.To
		v.Method = string(l.Method)
	}
	return v
}
