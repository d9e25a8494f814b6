package quotation

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

// Validity is the fixed offer window: a quotation expires exactly 48 hours
// after creation.
const Validity = 48 * time.Hour

// Quotation is a fare offer tied to one group request.
type Quotation struct {
	id             uuid.UUID
	groupRequestID uuid.UUID
	status         Status
	totalFare      string
	currency       string
	note           string
	approvedBy     *string
	createdDate    time.Time
	expiryDate     time.Time
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// New creates a DRAFT quotation with expiry = now + Validity.
func New(groupRequestID uuid.UUID, totalFare, currency, note string, now time.Time) (*Quotation, error) {
	if groupRequestID == uuid.Nil {
		return nil, shared.NewValidationError("group request ID is required")
	}
	if totalFare == "" {
		return nil, shared.NewValidationError("total fare is required")
	}
	if currency == "" {
		return nil, shared.NewValidationError("currency is required")
	}

	now = now.UTC()
	return &Quotation{
		id:             uuid.New(),
		groupRequestID: groupRequestID,
		status:         StatusDraft,
		totalFare:      totalFare,
		currency:       currency,
		note:           note,
		createdDate:    now,
		expiryDate:     now.Add(Validity),
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Quotation from persistence data (no validation).
func Reconstruct(
	id, groupRequestID uuid.UUID,
	status Status,
	totalFare, currency, note string,
	approvedBy *string,
	createdDate, expiryDate time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Quotation {
	return &Quotation{
		id:             id,
		groupRequestID: groupRequestID,
		status:         status,
		totalFare:      totalFare,
		currency:       currency,
		note:           note,
		approvedBy:     approvedBy,
		createdDate:    createdDate,
		expiryDate:     expiryDate,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (q *Quotation) ID() uuid.UUID             { return q.id }
func (q *Quotation) GroupRequestID() uuid.UUID { return q.groupRequestID }
func (q *Quotation) Status() Status            { return q.status }
func (q *Quotation) TotalFare() string         { return q.totalFare }
func (q *Quotation) Currency() string          { return q.currency }
func (q *Quotation) Note() string              { return q.note }
func (q *Quotation) ApprovedBy() *string       { return q.approvedBy }
func (q *Quotation) CreatedDate() time.Time    { return q.createdDate }
func (q *Quotation) ExpiryDate() time.Time     { return q.expiryDate }
func (q *Quotation) Version() int64            { return q.version }
func (q *Quotation) CreatedAt() time.Time      { return q.createdAt }
func (q *Quotation) UpdatedAt() time.Time      { return q.updatedAt }

// IsExpiredAt reports whether the offer window has passed at the given time.
func (q *Quotation) IsExpiredAt(now time.Time) bool {
	return now.After(q.expiryDate)
}

// EffectiveStatus is the read-time expiry projection: a DRAFT/SENT quotation
// whose expiry date has passed reads as EXPIRED without the stored record
// changing. ACCEPTED and REJECTED are final and never reproject.
func (q *Quotation) EffectiveStatus(now time.Time) Status {
	if q.status == StatusAccepted || q.status == StatusRejected {
		return q.status
	}
	if q.IsExpiredAt(now) {
		return StatusExpired
	}
	return q.status
}

// --- Behavior ---

// Send transitions the quotation from DRAFT to SENT. Expired drafts cannot be
// sent.
func (q *Quotation) Send(now time.Time) error {
	if q.status != StatusDraft {
		return shared.NewInvalidTransitionError(string(q.status), string(StatusSent))
	}
	if q.IsExpiredAt(now) {
		return shared.NewExpiredError("quotation has expired and cannot be sent")
	}
	q.status = StatusSent
	q.touch()
	return nil
}

// Accept transitions the quotation from SENT to ACCEPTED and records who
// approved it.
func (q *Quotation) Accept(approvedBy string, now time.Time) error {
	if q.status != StatusSent {
		return shared.NewInvalidTransitionError(string(q.status), string(StatusAccepted))
	}
	if q.IsExpiredAt(now) {
		return shared.NewExpiredError("quotation has expired and cannot be accepted")
	}
	q.status = StatusAccepted
	q.approvedBy = &approvedBy
	q.touch()
	return nil
}

// Reject transitions the quotation to REJECTED.
func (q *Quotation) Reject() error {
	if !q.status.CanTransitionTo(StatusRejected) {
		return shared.NewInvalidTransitionError(string(q.status), string(StatusRejected))
	}
	q.status = StatusRejected
	q.touch()
	return nil
}

// MarkExpired persists the EXPIRED state. Used by resend and the background
// sweep; foreground reads use EffectiveStatus instead.
func (q *Quotation) MarkExpired() error {
	if !q.status.CanTransitionTo(StatusExpired) {
		return shared.NewInvalidTransitionError(string(q.status), string(StatusExpired))
	}
	q.status = StatusExpired
	q.touch()
	return nil
}

// OverrideStatus applies a manual status change from the console, still
// subject to the transition table.
func (q *Quotation) OverrideStatus(target Status, approvedBy string) error {
	if !q.status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError(string(q.status), string(target))
	}
	q.status = target
	if approvedBy != "" {
		q.approvedBy = &approvedBy
	}
	q.touch()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (q *Quotation) IncrementVersion() {
	q.version++
	q.updatedAt = time.Now().UTC()
}

func (q *Quotation) touch() {
	q.updatedAt = time.Now().UTC()
}
