package grouprequest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

var pnrPattern = regexp.MustCompile(`^[A-Z0-9]{6,8}$`)

// ContactInfo is the requesting party's contact details.
type ContactInfo struct {
	Salutation    string `json:"salutation,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number,omitempty"`
}

// PaxCounts breaks the group size down by passenger type.
type PaxCounts struct {
	Adult  int `json:"adult"`
	Child  int `json:"child"`
	Infant int `json:"infant"`
}

// Total returns the seat-occupying headcount (adults and children).
func (p PaxCounts) Total() int { return p.Adult + p.Child }

// GroupRequest is the aggregate root for one customer/agent itinerary request.
type GroupRequest struct {
	id      uuid.UUID
	status  Status
	contact ContactInfo

	agentName   string
	fromAirport string
	toAirport   string
	routing     RoutingType
	segments    []Segment

	pax           PaxCounts
	requestDate   string // yyyy-MM-dd
	departureDate string
	returnDate    string

	category       Category
	posCode        string
	currency       string
	groupType      GroupType
	flightNumber   string
	specialRequest string
	partnerID      string

	quotedFare         *string
	assignedRcUsername *string
	pnrCode            *string
	cancelNote         string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewGroupRequest creates a request in status NEW with a hub-planned itinerary.
// When segments is empty the itinerary is replanned from the endpoints.
func NewGroupRequest(
	contact ContactInfo,
	agentName string,
	fromAirport, toAirport string,
	routing RoutingType,
	segments []Segment,
	pax PaxCounts,
	requestDate, departureDate, returnDate string,
	category Category,
	posCode, currency string,
	groupType GroupType,
	flightNumber, specialRequest, partnerID string,
) (*GroupRequest, error) {
	if contact.Email == "" {
		return nil, shared.NewValidationError("contact email is required")
	}
	if agentName == "" {
		return nil, shared.NewValidationError("agent name is required")
	}
	if !routing.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid routing type: %s", routing))
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid category: %s", category))
	}
	if groupType != "" && !groupType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid group type: %s", groupType))
	}
	if pax.Adult < 1 {
		return nil, shared.NewValidationError("at least one adult passenger is required")
	}
	if posCode == "" {
		return nil, shared.NewValidationError("POS code is required")
	}
	if departureDate == "" {
		return nil, shared.NewValidationError("departure date is required")
	}
	if routing == RoutingReturn && returnDate == "" {
		return nil, shared.NewValidationError("return date is required for return routing")
	}
	for _, s := range segments {
		if s.From == s.To {
			return nil, shared.NewValidationError(fmt.Sprintf("segment %s-%s has identical endpoints", s.From, s.To))
		}
	}

	fromAirport = strings.ToUpper(strings.TrimSpace(fromAirport))
	toAirport = strings.ToUpper(strings.TrimSpace(toAirport))
	if fromAirport != "" && fromAirport == toAirport {
		return nil, shared.NewValidationError("origin and destination airports must differ")
	}
	if len(segments) == 0 {
		if fromAirport == "" || toAirport == "" {
			return nil, shared.NewValidationError("origin and destination airports are required")
		}
		segments = Replan(fromAirport, toAirport, routing, DefaultHub, nil)
	}
	if requestDate == "" {
		requestDate = time.Now().UTC().Format(time.DateOnly)
	}
	if currency == "" {
		currency = "LKR"
	}

	now := time.Now().UTC()
	return &GroupRequest{
		id:             uuid.New(),
		status:         StatusNew,
		contact:        contact,
		agentName:      agentName,
		fromAirport:    fromAirport,
		toAirport:      toAirport,
		routing:        routing,
		segments:       segments,
		pax:            pax,
		requestDate:    requestDate,
		departureDate:  departureDate,
		returnDate:     returnDate,
		category:       category,
		posCode:        posCode,
		currency:       currency,
		groupType:      groupType,
		flightNumber:   flightNumber,
		specialRequest: specialRequest,
		partnerID:      partnerID,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a GroupRequest from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	status Status,
	contact ContactInfo,
	agentName, fromAirport, toAirport string,
	routing RoutingType,
	segments []Segment,
	pax PaxCounts,
	requestDate, departureDate, returnDate string,
	category Category,
	posCode, currency string,
	groupType GroupType,
	flightNumber, specialRequest, partnerID string,
	quotedFare, assignedRcUsername, pnrCode *string,
	cancelNote string,
	version int64,
	createdAt, updatedAt time.Time,
) *GroupRequest {
	return &GroupRequest{
		id:                 id,
		status:             status,
		contact:            contact,
		agentName:          agentName,
		fromAirport:        fromAirport,
		toAirport:          toAirport,
		routing:            routing,
		segments:           segments,
		pax:                pax,
		requestDate:        requestDate,
		departureDate:      departureDate,
		returnDate:         returnDate,
		category:           category,
		posCode:            posCode,
		currency:           currency,
		groupType:          groupType,
		flightNumber:       flightNumber,
		specialRequest:     specialRequest,
		partnerID:          partnerID,
		quotedFare:         quotedFare,
		assignedRcUsername: assignedRcUsername,
		pnrCode:            pnrCode,
		cancelNote:         cancelNote,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

func (g *GroupRequest) ID() uuid.UUID               { return g.id }
func (g *GroupRequest) Status() Status              { return g.status }
func (g *GroupRequest) Contact() ContactInfo        { return g.contact }
func (g *GroupRequest) AgentName() string           { return g.agentName }
func (g *GroupRequest) FromAirport() string         { return g.fromAirport }
func (g *GroupRequest) ToAirport() string           { return g.toAirport }
func (g *GroupRequest) Routing() RoutingType        { return g.routing }
func (g *GroupRequest) Pax() PaxCounts              { return g.pax }
func (g *GroupRequest) RequestDate() string         { return g.requestDate }
func (g *GroupRequest) DepartureDate() string       { return g.departureDate }
func (g *GroupRequest) ReturnDate() string          { return g.returnDate }
func (g *GroupRequest) Category() Category          { return g.category }
func (g *GroupRequest) POSCode() string             { return g.posCode }
func (g *GroupRequest) Currency() string            { return g.currency }
func (g *GroupRequest) GroupType() GroupType        { return g.groupType }
func (g *GroupRequest) FlightNumber() string        { return g.flightNumber }
func (g *GroupRequest) SpecialRequest() string      { return g.specialRequest }
func (g *GroupRequest) PartnerID() string           { return g.partnerID }
func (g *GroupRequest) QuotedFare() *string         { return g.quotedFare }
func (g *GroupRequest) AssignedRcUsername() *string { return g.assignedRcUsername }
func (g *GroupRequest) PNRCode() *string            { return g.pnrCode }
func (g *GroupRequest) CancelNote() string          { return g.cancelNote }
func (g *GroupRequest) Version() int64              { return g.version }
func (g *GroupRequest) CreatedAt() time.Time        { return g.createdAt }
func (g *GroupRequest) UpdatedAt() time.Time        { return g.updatedAt }

// Segments returns a copy of the ordered itinerary legs.
func (g *GroupRequest) Segments() []Segment {
	out := make([]Segment, len(g.segments))
	copy(out, g.segments)
	return out
}

// Route returns the display form of the itinerary, e.g. "DAC-CMB-KUL".
func (g *GroupRequest) Route() string {
	if len(g.segments) == 0 {
		return g.fromAirport + "-" + g.toAirport
	}
	route := g.segments[0].From
	for _, s := range g.segments {
		route += "-" + s.To
	}
	return route
}

// --- Behavior ---

// AssignToRouteController moves the request from NEW to REVIEWING and records
// the assignee. The caller is responsible for validating that the username
// names an enabled route controller.
func (g *GroupRequest) AssignToRouteController(rcUsername string) error {
	if !g.status.CanTransitionTo(StatusReviewing) {
		return shared.NewInvalidTransitionError(string(g.status), string(StatusReviewing))
	}
	if rcUsername == "" {
		return shared.NewValidationError("route controller username is required")
	}
	g.status = StatusReviewing
	g.assignedRcUsername = &rcUsername
	g.touch()
	return nil
}

// MarkQuoted moves the request from REVIEWING to QUOTED when a quotation is
// created for it.
func (g *GroupRequest) MarkQuoted() error {
	if !g.status.CanTransitionTo(StatusQuoted) {
		return shared.NewInvalidTransitionError(string(g.status), string(StatusQuoted))
	}
	g.status = StatusQuoted
	g.touch()
	return nil
}

// ConfirmWithFare moves the request from QUOTED to CONFIRMED and records the
// accepted fare. The quoted fare is set exactly once, here.
func (g *GroupRequest) ConfirmWithFare(totalFare string) error {
	if !g.status.CanTransitionTo(StatusConfirmed) {
		return shared.NewInvalidTransitionError(string(g.status), string(StatusConfirmed))
	}
	g.status = StatusConfirmed
	g.quotedFare = &totalFare
	g.touch()
	return nil
}

// MarkTicketed transitions the request to TICKETED. Ticketing is permitted
// from any live status; only repeat ticketing and cancelled requests are
// rejected.
func (g *GroupRequest) MarkTicketed() error {
	if g.status == StatusTicketed || g.status == StatusCancelled {
		return shared.NewInvalidTransitionError(string(g.status), string(StatusTicketed))
	}
	g.status = StatusTicketed
	g.touch()
	return nil
}

// Cancel moves the request to CANCELLED from any non-terminal status.
func (g *GroupRequest) Cancel(reason string) error {
	if !g.status.CanTransitionTo(StatusCancelled) {
		return shared.NewInvalidTransitionError(string(g.status), string(StatusCancelled))
	}
	g.status = StatusCancelled
	g.cancelNote = reason
	g.touch()
	return nil
}

// IssuePNR records the PNR code. Requires that none is recorded yet and that
// the code is 6-8 uppercase alphanumerics. Eligibility against payments is
// checked by the application service.
func (g *GroupRequest) IssuePNR(pnrCode string) error {
	if g.pnrCode != nil {
		return shared.NewAlreadyIssuedError(g.id.String())
	}
	if !pnrPattern.MatchString(pnrCode) {
		return shared.NewInvalidFormatError(fmt.Sprintf("invalid PNR code: %q", pnrCode))
	}
	g.pnrCode = &pnrCode
	g.touch()
	return nil
}

// Deletable reports whether the request may be hard-deleted. Only NEW requests
// qualify; anything further along has quotations or payments attached.
func (g *GroupRequest) Deletable() bool {
	return g.status == StatusNew
}

// SetSegments replaces the itinerary legs.
func (g *GroupRequest) SetSegments(segments []Segment) error {
	for _, s := range segments {
		if s.From == s.To {
			return shared.NewValidationError(fmt.Sprintf("segment %s-%s has identical endpoints", s.From, s.To))
		}
	}
	g.segments = segments
	g.touch()
	return nil
}

// UpdateSegmentDate sets the departure date of one leg. index is 1-based as
// exposed by the API.
func (g *GroupRequest) UpdateSegmentDate(index int, date string) error {
	if index < 1 || index > len(g.segments) {
		return shared.NewValidationError(fmt.Sprintf("segment index %d out of range", index))
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return shared.NewValidationError(fmt.Sprintf("invalid segment date: %q", date))
	}
	g.segments[index-1].Date = date
	g.touch()
	return nil
}

// UpdateSegmentExtras merges the provided extras into one leg. index is
// 1-based.
func (g *GroupRequest) UpdateSegmentExtras(index int, extras SegmentExtras) error {
	if index < 1 || index > len(g.segments) {
		return shared.NewValidationError(fmt.Sprintf("segment index %d out of range", index))
	}
	g.segments[index-1].Extras = extras
	g.touch()
	return nil
}

// UpdateDetails applies an edit of the request's mutable descriptive fields as
// one validated change set.
func (g *GroupRequest) UpdateDetails(contact ContactInfo, agentName string, pax PaxCounts, departureDate, returnDate, flightNumber, specialRequest string) error {
	if g.status.IsTerminal() {
		return shared.NewInvalidTransitionError(string(g.status), "update")
	}
	if contact.Email == "" {
		return shared.NewValidationError("contact email is required")
	}
	if agentName == "" {
		return shared.NewValidationError("agent name is required")
	}
	if pax.Adult < 1 {
		return shared.NewValidationError("at least one adult passenger is required")
	}
	g.contact = contact
	g.agentName = agentName
	g.pax = pax
	if departureDate != "" {
		g.departureDate = departureDate
	}
	g.returnDate = returnDate
	g.flightNumber = flightNumber
	g.specialRequest = specialRequest
	g.touch()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (g *GroupRequest) IncrementVersion() {
	g.version++
	g.updatedAt = time.Now().UTC()
}

func (g *GroupRequest) touch() {
	g.updatedAt = time.Now().UTC()
}
