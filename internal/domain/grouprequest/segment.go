package grouprequest

import "strings"

// DefaultHub is the fixed connecting airport non-direct routes are split
// through.
const DefaultHub = "CMB"

// SegmentExtras holds the per-leg options entered by agents and the values the
// route controller offers back.
type SegmentExtras struct {
	ExtraBaggageKg      float64  `json:"extra_baggage_kg,omitempty"`
	Meal                string   `json:"meal,omitempty"`
	Notes               string   `json:"notes,omitempty"`
	ProposedDate        string   `json:"proposed_date,omitempty"`
	ProposedTime        string   `json:"proposed_time,omitempty"`
	OfferedBaggageKg    float64  `json:"offered_baggage_kg,omitempty"`
	SpecialRequirements []string `json:"special_requirements,omitempty"`
}

// Segment is one flight leg of a group request. Legs are ordered; the API
// exposes a 1-based index.
type Segment struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Date   string        `json:"date"` // yyyy-MM-dd, may be empty until planned
	Extras SegmentExtras `json:"extras"`
}

// Replan produces the canonical ordered leg sequence for an origin/destination
// pair, splitting through the hub when neither endpoint is the hub. Date and
// extras already entered are preserved by index position; positions that exist
// only in the new plan start blank.
//
// One-way: a single leg when either endpoint is the hub, otherwise two
// hub-connecting legs. Return (and multi-city between two non-hub endpoints):
// out and back, each split through the hub when needed. Missing or identical
// endpoints cannot produce a valid leg, so the plan is nil.
func Replan(from, to string, routing RoutingType, hub string, previous []Segment) []Segment {
	f := strings.ToUpper(strings.TrimSpace(from))
	t := strings.ToUpper(strings.TrimSpace(to))
	hub = strings.ToUpper(strings.TrimSpace(hub))

	var plan []Segment
	switch {
	case f == "" || t == "" || f == t:
		return nil
	case routing == RoutingOneWay:
		if f == hub || t == hub {
			plan = []Segment{{From: f, To: t}}
		} else {
			plan = []Segment{{From: f, To: hub}, {From: hub, To: t}}
		}
	default:
		if f == hub || t == hub {
			plan = []Segment{{From: f, To: t}, {From: t, To: f}}
		} else {
			plan = []Segment{
				{From: f, To: hub},
				{From: hub, To: t},
				{From: t, To: hub},
				{From: hub, To: f},
			}
		}
	}

	for i := range plan {
		if i < len(previous) {
			plan[i].Date = previous[i].Date
			plan[i].Extras = previous[i].Extras
		}
	}
	return plan
}
