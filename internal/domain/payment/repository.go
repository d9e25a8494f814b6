package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for payments.
type Repository interface {
	// FindByID retrieves a payment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByGroupRequestID retrieves all payments for a request, oldest first.
	FindByGroupRequestID(ctx context.Context, groupRequestID uuid.UUID) ([]*Payment, error)

	// List retrieves payments newest-first with pagination.
	List(ctx context.Context, page, limit int) ([]*Payment, int64, error)

	// HasPaid reports whether at least one payment for the request is PAID.
	HasPaid(ctx context.Context, groupRequestID uuid.UUID) (bool, error)

	// AllPaid reports whether every payment for the request is PAID.
	// Implementations return false when the request has no payments at all.
	AllPaid(ctx context.Context, groupRequestID uuid.UUID) (bool, error)

	// CountDueBetween counts PENDING payments with a due date in [from, to)
	// whose group request is in the given status.
	CountDueBetween(ctx context.Context, from, to time.Time, requestStatus string) (int64, error)

	// Save persists a new payment.
	Save(ctx context.Context, p *Payment) error

	// Update persists changes to an existing payment with optimistic locking.
	Update(ctx context.Context, p *Payment) error
}

// AttachmentRepository defines the persistence contract for payment
// attachment metadata.
type AttachmentRepository interface {
	Save(ctx context.Context, a *Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Attachment, error)
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*Attachment, error)
}
