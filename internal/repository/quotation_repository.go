package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/quotation"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/database"
)

// QuotationModel is the GORM model for the quotations table.
type QuotationModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupRequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status         string    `gorm:"not null;size:20;index"`
	TotalFare      string    `gorm:"not null;size:20"`
	Currency       string    `gorm:"not null;size:3"`
	Note           string    `gorm:"size:1000"`
	ApprovedBy     *string   `gorm:"size:100"`
	CreatedDate    time.Time `gorm:"not null"`
	ExpiryDate     time.Time `gorm:"not null;index"`
	Version        int64     `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (QuotationModel) TableName() string {
	return "quotations"
}

// GormQuotationRepository is the GORM-based implementation of
// quotation.Repository.
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository.
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

func (r *GormQuotationRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a quotation by its unique identifier.
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*quotation.Quotation, error) {
	var model QuotationModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Quotation", id.String())
		}
		return nil, fmt.Errorf("failed to find quotation by ID: %w", err)
	}
	return toDomainQuotation(&model), nil
}

// FindByGroupRequestID retrieves all quotations for a request, newest first.
func (r *GormQuotationRepository) FindByGroupRequestID(ctx context.Context, groupRequestID uuid.UUID) ([]*quotation.Quotation, error) {
	var models []QuotationModel
	if err := r.conn(ctx).
		Where("group_request_id = ?", groupRequestID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find quotations by request: %w", err)
	}

	quotations := make([]*quotation.Quotation, len(models))
	for i, m := range models {
		quotations[i] = toDomainQuotation(&m)
	}
	return quotations, nil
}

// FindActiveByGroupRequestID returns the DRAFT or SENT quotation for a
// request, or nil when none exists.
func (r *GormQuotationRepository) FindActiveByGroupRequestID(ctx context.Context, groupRequestID uuid.UUID) (*quotation.Quotation, error) {
	var model QuotationModel
	err := r.conn(ctx).
		Where("group_request_id = ? AND status IN ?", groupRequestID,
			[]string{string(quotation.StatusDraft), string(quotation.StatusSent)}).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active quotation: %w", err)
	}
	return toDomainQuotation(&model), nil
}

// List retrieves quotations newest-first with pagination.
func (r *GormQuotationRepository) List(ctx context.Context, page, limit int) ([]*quotation.Quotation, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&QuotationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quotations: %w", err)
	}

	var models []QuotationModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quotations: %w", err)
	}

	quotations := make([]*quotation.Quotation, len(models))
	for i, m := range models {
		quotations[i] = toDomainQuotation(&m)
	}
	return quotations, total, nil
}

// FindExpiredActive returns DRAFT/SENT quotations past the cutoff, up to
// limit rows.
func (r *GormQuotationRepository) FindExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]*quotation.Quotation, error) {
	var models []QuotationModel
	if err := r.conn(ctx).
		Where("status IN ? AND expiry_date < ?",
			[]string{string(quotation.StatusDraft), string(quotation.StatusSent)}, cutoff).
		Order("expiry_date ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired quotations: %w", err)
	}

	quotations := make([]*quotation.Quotation, len(models))
	for i, m := range models {
		quotations[i] = toDomainQuotation(&m)
	}
	return quotations, nil
}

// CountExpiringBetween counts SENT quotations whose expiry falls in [from, to).
func (r *GormQuotationRepository) CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := r.conn(ctx).Model(&QuotationModel{}).
		Where("status = ? AND expiry_date >= ? AND expiry_date < ?",
			string(quotation.StatusSent), from, to).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count expiring quotations: %w", err)
	}
	return count, nil
}

// Save persists a new quotation.
func (r *GormQuotationRepository) Save(ctx context.Context, q *quotation.Quotation) error {
	model := toQuotationModel(q)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save quotation: %w", err)
	}
	return nil
}

// Update persists changes with optimistic locking.
func (r *GormQuotationRepository) Update(ctx context.Context, q *quotation.Quotation) error {
	model := toQuotationModel(q)
	expectedVersion := q.Version() - 1
	result := r.conn(ctx).
		Model(&QuotationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"total_fare":  model.TotalFare,
			"currency":    model.Currency,
			"note":        model.Note,
			"approved_by": model.ApprovedBy,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update quotation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("quotation was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toQuotationModel(q *quotation.Quotation) *QuotationModel {
	return &QuotationModel{
		ID:             q.ID(),
		GroupRequestID: q.GroupRequestID(),
		Status:         string(q.Status()),
		TotalFare:      q.TotalFare(),
		Currency:       q.Currency(),
		Note:           q.Note(),
		ApprovedBy:     q.ApprovedBy(),
		CreatedDate:    q.CreatedDate(),
		ExpiryDate:     q.ExpiryDate(),
		Version:        q.Version(),
		CreatedAt:      q.CreatedAt(),
		UpdatedAt:      q.UpdatedAt(),
	}
}

func toDomainQuotation(m *QuotationModel) *quotation.Quotation {
	return quotation.Reconstruct(
		m.ID,
		m.GroupRequestID,
		quotation.Status(m.Status),
		m.TotalFare,
		m.Currency,
		m.Note,
		m.ApprovedBy,
		m.CreatedDate,
		m.ExpiryDate,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
