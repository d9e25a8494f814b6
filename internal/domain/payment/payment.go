package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

// Status represents the stored state of a payment.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"

	// StatusOverdue is a derived, view-only state. It is never persisted: a
	// PENDING payment whose due date has passed projects to OVERDUE via
	// EffectiveStatus.
	StatusOverdue Status = "OVERDUE"
)

// IsValid returns true for statuses that may be stored.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid
}

// String returns the string representation.
func (s Status) String() string { return string(s) }

// Payment is an amount owed against a group request, created when a quotation
// is accepted.
type Payment struct {
	id             uuid.UUID
	groupRequestID uuid.UUID
	status         Status
	amount         string
	currency       string
	dueDate        time.Time
	reference      *string
	paidAt         *time.Time
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// New creates a PENDING payment.
func New(groupRequestID uuid.UUID, amount, currency string, dueDate time.Time) (*Payment, error) {
	if groupRequestID == uuid.Nil {
		return nil, shared.NewValidationError("group request ID is required")
	}
	if amount == "" {
		return nil, shared.NewValidationError("amount is required")
	}

	now := time.Now().UTC()
	return &Payment{
		id:             uuid.New(),
		groupRequestID: groupRequestID,
		status:         StatusPending,
		amount:         amount,
		currency:       currency,
		dueDate:        dueDate.UTC(),
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Payment from persistence data (no validation).
func Reconstruct(
	id, groupRequestID uuid.UUID,
	status Status,
	amount, currency string,
	dueDate time.Time,
	reference *string,
	paidAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:             id,
		groupRequestID: groupRequestID,
		status:         status,
		amount:         amount,
		currency:       currency,
		dueDate:        dueDate,
		reference:      reference,
		paidAt:         paidAt,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID             { return p.id }
func (p *Payment) GroupRequestID() uuid.UUID { return p.groupRequestID }
func (p *Payment) Status() Status            { return p.status }
func (p *Payment) Amount() string            { return p.amount }
func (p *Payment) Currency() string          { return p.currency }
func (p *Payment) DueDate() time.Time        { return p.dueDate }
func (p *Payment) Reference() *string        { return p.reference }
func (p *Payment) PaidAt() *time.Time        { return p.paidAt }
func (p *Payment) Version() int64            { return p.version }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time      { return p.updatedAt }

// EffectiveStatus projects OVERDUE for pending payments past their due date.
// The stored record is never mutated by this projection.
func (p *Payment) EffectiveStatus(now time.Time) Status {
	if p.status == StatusPending && now.After(p.dueDate) {
		return StatusOverdue
	}
	return p.status
}

// MarkPaid transitions the payment from PENDING to PAID and stores the
// optional reference. Repeat calls fail with AlreadyPaid.
func (p *Payment) MarkPaid(reference string, now time.Time) error {
	if p.status == StatusPaid {
		return shared.NewAlreadyPaidError(p.id.String())
	}
	now = now.UTC()
	p.status = StatusPaid
	if reference != "" {
		p.reference = &reference
	}
	p.paidAt = &now
	p.touch()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Payment) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}

func (p *Payment) touch() {
	p.updatedAt = time.Now().UTC()
}
