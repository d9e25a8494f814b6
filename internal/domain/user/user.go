package user

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
)

// Role is a user's console role.
type Role string

const (
	RoleGroupDesk       Role = auth.RoleGroupDesk
	RoleRouteController Role = auth.RoleRouteController
	RoleAdmin           Role = auth.RoleAdmin
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleGroupDesk, RoleRouteController, RoleAdmin:
		return true
	}
	return false
}

// User is an authenticated actor of the group desk console.
type User struct {
	id           uuid.UUID
	username     string
	passwordHash string
	role         Role
	enabled      bool
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates an enabled user with a bcrypt-hashed password.
func New(username, password string, role Role) (*User, error) {
	if username == "" {
		return nil, shared.NewValidationError("username is required")
	}
	if len(password) < 8 {
		return nil, shared.NewValidationError("password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("invalid role: " + string(role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		username:     username,
		passwordHash: string(hash),
		role:         role,
		enabled:      true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a User from persistence.
func Reconstruct(id uuid.UUID, username, passwordHash string, role Role, enabled bool, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		enabled:      enabled,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() Role           { return u.role }
func (u *User) Enabled() bool        { return u.enabled }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// CheckPassword verifies a login attempt.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

// SetEnabled toggles the account.
func (u *User) SetEnabled(enabled bool) {
	u.enabled = enabled
	u.updatedAt = time.Now().UTC()
}

// ResetPassword replaces the password hash.
func (u *User) ResetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.passwordHash = string(hash)
	u.updatedAt = time.Now().UTC()
	return nil
}

// CanQuoteFor reports whether this user may be assigned quotation work, i.e.
// is an enabled route controller.
func (u *User) CanQuoteFor() bool {
	return u.enabled && u.role == RoleRouteController
}
