package quotation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for quotations.
type Repository interface {
	// FindByID retrieves a quotation by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Quotation, error)

	// FindByGroupRequestID retrieves all quotations for a request, newest
	// first.
	FindByGroupRequestID(ctx context.Context, groupRequestID uuid.UUID) ([]*Quotation, error)

	// FindActiveByGroupRequestID returns the DRAFT or SENT quotation for a
	// request, or nil when none exists.
	FindActiveByGroupRequestID(ctx context.Context, groupRequestID uuid.UUID) (*Quotation, error)

	// List retrieves quotations newest-first with pagination.
	List(ctx context.Context, page, limit int) ([]*Quotation, int64, error)

	// FindExpiredActive returns DRAFT/SENT quotations whose expiry date is
	// strictly before the cutoff, up to limit rows. Used by the expiry sweep.
	FindExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]*Quotation, error)

	// CountExpiringBetween counts SENT quotations whose expiry falls in
	// [from, to).
	CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error)

	// Save persists a new quotation.
	Save(ctx context.Context, q *Quotation) error

	// Update persists changes to an existing quotation with optimistic
	// locking.
	Update(ctx context.Context, q *Quotation) error
}
