package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for users.
type Repository interface {
	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername retrieves a user by unique username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// List retrieves all users, optionally filtered by role ("" for all).
	List(ctx context.Context, role Role) ([]*User, error)

	// Save persists a new user.
	Save(ctx context.Context, u *User) error

	// Update persists changes to an existing user.
	Update(ctx context.Context, u *User) error
}
