package grouprequest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for group request aggregates.
type Repository interface {
	// FindByID retrieves a group request by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*GroupRequest, error)

	// List retrieves group requests ordered newest-first with pagination.
	List(ctx context.Context, page, limit int) ([]*GroupRequest, int64, error)

	// ListByAssignee retrieves requests assigned to a route controller.
	ListByAssignee(ctx context.Context, rcUsername string, page, limit int) ([]*GroupRequest, int64, error)

	// CountByStatus returns request counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CountCreatedSince returns how many requests were created at or after the
	// given instant.
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)

	// Save persists a new group request.
	Save(ctx context.Context, request *GroupRequest) error

	// Update persists changes to an existing request with optimistic locking.
	Update(ctx context.Context, request *GroupRequest) error

	// Delete removes a request. Callers must check Deletable first.
	Delete(ctx context.Context, id uuid.UUID) error
}
