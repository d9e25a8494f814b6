package grouprequest

import "fmt"

// Status represents the lifecycle state of a group request.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusReviewing Status = "REVIEWING"
	StatusQuoted    Status = "QUOTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusTicketed  Status = "TICKETED"
	StatusCancelled Status = "CANCELLED"
)

// validTransitions is the single authority for forward movement. Statuses only
// move forward; CANCELLED is reachable from every non-terminal state.
var validTransitions = map[Status][]Status{
	StatusNew:       {StatusReviewing, StatusCancelled},
	StatusReviewing: {StatusQuoted, StatusCancelled},
	StatusQuoted:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusTicketed, StatusCancelled},
	StatusTicketed:  {},
	StatusCancelled: {},
}

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if moving from this status to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation.
func (s Status) String() string { return string(s) }

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid group request status: %s", s)
	}
	return status, nil
}

// RoutingType describes the requested itinerary shape.
type RoutingType string

const (
	RoutingOneWay    RoutingType = "ONE_WAY"
	RoutingReturn    RoutingType = "RETURN"
	RoutingMultiCity RoutingType = "MULTICITY"
)

// IsValid returns true if the routing type is recognized.
func (r RoutingType) IsValid() bool {
	switch r {
	case RoutingOneWay, RoutingReturn, RoutingMultiCity:
		return true
	}
	return false
}

// Category identifies the commercial channel of a request.
type Category string

const (
	CategoryDirectCustomer Category = "DIRECT_CUSTOMER"
	CategoryGSA            Category = "GSA"
	CategoryCustomerCare   Category = "CUSTOMER_CARE"
	CategoryAgent          Category = "AGENT"
)

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategoryDirectCustomer, CategoryGSA, CategoryCustomerCare, CategoryAgent:
		return true
	}
	return false
}

// GroupType classifies the travelling group.
type GroupType string

const (
	GroupTypeEducation  GroupType = "EDUCATION"
	GroupTypeConference GroupType = "CONFERENCE"
	GroupTypeSports     GroupType = "SPORTS"
	GroupTypePilgrimage GroupType = "PILGRIMAGE"
	GroupTypeMICE       GroupType = "MICE"
	GroupTypeOther      GroupType = "OTHER"
)

// IsValid returns true if the group type is recognized.
func (g GroupType) IsValid() bool {
	switch g {
	case GroupTypeEducation, GroupTypeConference, GroupTypeSports,
		GroupTypePilgrimage, GroupTypeMICE, GroupTypeOther:
		return true
	}
	return false
}
