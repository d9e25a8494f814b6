package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics used by the group desk service.
const (
	// TopicGroupDeskEvents carries domain facts about requests, quotations
	// and payments.
	TopicGroupDeskEvents = "groupdesk.events"

	// TopicNotificationEvents carries agent-facing email requests consumed by
	// the notifier service.
	TopicNotificationEvents = "notification.events"

	// TopicRemittanceEvents is the inbound stream of settled bank remittances.
	TopicRemittanceEvents = "remittance.events"
)

// Event types.
const (
	RequestCreated   = "groupdesk.request.created"
	RequestAssigned  = "groupdesk.request.assigned"
	RequestTicketed  = "groupdesk.request.ticketed"
	RequestCancelled = "groupdesk.request.cancelled"
	QuotationCreated = "groupdesk.quotation.created"
	QuotationSent    = "groupdesk.quotation.sent"
	QuotationAccepted = "groupdesk.quotation.accepted"
	QuotationResent  = "groupdesk.quotation.resent"
	PaymentPaid      = "groupdesk.payment.paid"
	PNRIssued        = "groupdesk.pnr.issued"
	SegmentsChanged  = "groupdesk.segments.changed"

	RemittanceReceived = "remittance.received"
)

// RequestCreatedEvent is published when a group request enters the system.
type RequestCreatedEvent struct {
	RequestID    uuid.UUID `json:"request_id"`
	AgentName    string    `json:"agent_name"`
	ContactEmail string    `json:"contact_email"`
	Route        string    `json:"route"`
	PaxTotal     int       `json:"pax_total"`
	Category     string    `json:"category"`
	POSCode      string    `json:"pos_code"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// RequestAssignedEvent is published when a request is sent to a route
// controller.
type RequestAssignedEvent struct {
	RequestID  uuid.UUID `json:"request_id"`
	RCUsername string    `json:"rc_username"`
	AssignedBy string    `json:"assigned_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RequestTicketedEvent is published when a request is marked ticketed.
type RequestTicketedEvent struct {
	RequestID  uuid.UUID `json:"request_id"`
	TicketedBy string    `json:"ticketed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RequestCancelledEvent is published when a request is cancelled.
type RequestCancelledEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	CancelledBy string    `json:"cancelled_by"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// QuotationCreatedEvent is published when a draft quotation is created.
type QuotationCreatedEvent struct {
	QuotationID uuid.UUID `json:"quotation_id"`
	RequestID   uuid.UUID `json:"request_id"`
	TotalFare   string    `json:"total_fare"`
	Currency    string    `json:"currency"`
	ExpiryDate  time.Time `json:"expiry_date"`
	CreatedBy   string    `json:"created_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// QuotationSentEvent asks the notifier to email the quotation to the agent.
type QuotationSentEvent struct {
	QuotationID  uuid.UUID `json:"quotation_id"`
	RequestID    uuid.UUID `json:"request_id"`
	AgentName    string    `json:"agent_name"`
	ContactEmail string    `json:"contact_email"`
	TotalFare    string    `json:"total_fare"`
	Currency     string    `json:"currency"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Subject      string    `json:"subject,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// QuotationAcceptedEvent is published when a quotation is accepted.
type QuotationAcceptedEvent struct {
	QuotationID uuid.UUID `json:"quotation_id"`
	RequestID   uuid.UUID `json:"request_id"`
	TotalFare   string    `json:"total_fare"`
	Currency    string    `json:"currency"`
	ApprovedBy  string    `json:"approved_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// QuotationResentEvent is published when a quotation is superseded by a new
// draft.
type QuotationResentEvent struct {
	OldQuotationID uuid.UUID `json:"old_quotation_id"`
	NewQuotationID uuid.UUID `json:"new_quotation_id"`
	RequestID      uuid.UUID `json:"request_id"`
	Mode           string    `json:"mode"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PaymentPaidEvent is published when a payment is marked paid.
type PaymentPaidEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	RequestID  uuid.UUID `json:"request_id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Reference  string    `json:"reference,omitempty"`
	MarkedBy   string    `json:"marked_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PNRIssuedEvent asks the notifier to email the PNR to the agent.
type PNRIssuedEvent struct {
	RequestID    uuid.UUID `json:"request_id"`
	PNRCode      string    `json:"pnr_code"`
	AgentName    string    `json:"agent_name"`
	ContactEmail string    `json:"contact_email"`
	IssuedBy     string    `json:"issued_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// SegmentsChangedEvent asks the notifier to email updated segment details to
// the agent.
type SegmentsChangedEvent struct {
	RequestID    uuid.UUID `json:"request_id"`
	AgentName    string    `json:"agent_name"`
	ContactEmail string    `json:"contact_email"`
	Route        string    `json:"route"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// RemittanceReceivedEvent is the inbound payload from the settlement gateway:
// a bank remittance matched to one of our payments.
type RemittanceReceivedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	Reference  string    `json:"reference"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}
