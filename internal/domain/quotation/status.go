package quotation

import "fmt"

// Status represents the stored state of a quotation.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
	StatusResent   Status = "RESENT"
)

// validTransitions defines the quotation state machine. RESENT marks a
// quotation superseded by a new draft via the manual status override.
var validTransitions = map[Status][]Status{
	StatusDraft:    {StatusSent, StatusExpired, StatusRejected, StatusResent},
	StatusSent:     {StatusAccepted, StatusRejected, StatusExpired, StatusResent},
	StatusAccepted: {},
	StatusRejected: {},
	StatusExpired:  {},
	StatusResent:   {},
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

// IsActive returns true while the quotation occupies the single active slot of
// its group request (at most one DRAFT or SENT quotation per request).
func (s Status) IsActive() bool {
	return s == StatusDraft || s == StatusSent
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
		return "", fmt.Errorf("invalid quotation status: %s", s)
	}
	return status, nil
}
