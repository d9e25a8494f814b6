package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/user"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/database"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"not null;size:100;uniqueIndex"`
	PasswordHash string    `gorm:"not null;size:100"`
	Role         string    `gorm:"not null;size:20;index"`
	Enabled      bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of user.Repository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a user by ID.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByUsername retrieves a user by unique username.
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserModel
	if err := r.conn(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("User", username)
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return toDomainUser(&model), nil
}

// List retrieves users, optionally filtered by role.
func (r *GormUserRepository) List(ctx context.Context, role user.Role) ([]*user.User, error) {
	query := r.conn(ctx).Order("username ASC")
	if role != "" {
		query = query.Where("role = ?", string(role))
	}

	var models []UserModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*user.User, len(models))
	for i, m := range models {
		users[i] = toDomainUser(&m)
	}
	return users, nil
}

// Save persists a new user.
func (r *GormUserRepository) Save(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Update persists changes to an existing user.
func (r *GormUserRepository) Update(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	result := r.conn(ctx).
		Model(&UserModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"password_hash": model.PasswordHash,
			"enabled":       model.Enabled,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("User", model.ID.String())
	}
	return nil
}

// --- Conversion helpers ---

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Username:     u.Username(),
		PasswordHash: u.PasswordHash(),
		Role:         string(u.Role()),
		Enabled:      u.Enabled(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

func toDomainUser(m *UserModel) *user.User {
	return user.Reconstruct(
		m.ID,
		m.Username,
		m.PasswordHash,
		user.Role(m.Role),
		m.Enabled,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
