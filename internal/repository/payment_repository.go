package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/payment"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/database"
)

// PaymentModel is the GORM model for the payments table.
type PaymentModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	GroupRequestID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status         string     `gorm:"not null;size:20;index"`
	Amount         string     `gorm:"not null;size:20"`
	Currency       string     `gorm:"not null;size:3"`
	DueDate        time.Time  `gorm:"not null;index"`
	Reference      *string    `gorm:"size:100"`
	PaidAt         *time.Time `gorm:""`
	Version        int64      `gorm:"not null;default:1"`
	CreatedAt      time.Time  `gorm:"not null;index"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// AttachmentModel is the GORM model for the payment_attachments table.
type AttachmentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename    string    `gorm:"not null;size:255"`
	ContentType string    `gorm:"size:100"`
	Size        int64     `gorm:"not null"`
	StorageKey  string    `gorm:"not null;size:100"`
	UploadedBy  string    `gorm:"size:100"`
	UploadedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AttachmentModel) TableName() string {
	return "payment_attachments"
}

// GormPaymentRepository is the GORM-based implementation of
// payment.Repository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a payment by its unique identifier.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var model PaymentModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Payment", id.String())
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}
	return toDomainPayment(&model), nil
}

// FindByGroupRequestID retrieves all payments for a request, oldest first so
// installment order is stable.
func (r *GormPaymentRepository) FindByGroupRequestID(ctx context.Context, groupRequestID uuid.UUID) ([]*payment.Payment, error) {
	var models []PaymentModel
	if err := r.conn(ctx).
		Where("group_request_id = ?", groupRequestID).
		Order("due_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find payments by request: %w", err)
	}

	payments := make([]*payment.Payment, len(models))
	for i, m := range models {
		payments[i] = toDomainPayment(&m)
	}
	return payments, nil
}

// List retrieves payments newest-first with pagination.
func (r *GormPaymentRepository) List(ctx context.Context, page, limit int) ([]*payment.Payment, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&PaymentModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var models []PaymentModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*payment.Payment, len(models))
	for i, m := range models {
		payments[i] = toDomainPayment(&m)
	}
	return payments, total, nil
}

// HasPaid reports whether at least one payment for the request is PAID.
func (r *GormPaymentRepository) HasPaid(ctx context.Context, groupRequestID uuid.UUID) (bool, error) {
	var count int64
	if err := r.conn(ctx).Model(&PaymentModel{}).
		Where("group_request_id = ? AND status = ?", groupRequestID, string(payment.StatusPaid)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check paid payments: %w", err)
	}
	return count > 0, nil
}

// AllPaid reports whether the request has payments and every one is PAID.
func (r *GormPaymentRepository) AllPaid(ctx context.Context, groupRequestID uuid.UUID) (bool, error) {
	var total, paid int64
	if err := r.conn(ctx).Model(&PaymentModel{}).
		Where("group_request_id = ?", groupRequestID).
		Count(&total).Error; err != nil {
		return false, fmt.Errorf("failed to count payments for request: %w", err)
	}
	if total == 0 {
		return false, nil
	}
	if err := r.conn(ctx).Model(&PaymentModel{}).
		Where("group_request_id = ? AND status = ?", groupRequestID, string(payment.StatusPaid)).
		Count(&paid).Error; err != nil {
		return false, fmt.Errorf("failed to count paid payments: %w", err)
	}
	return paid == total, nil
}

// CountDueBetween counts PENDING payments due in [from, to) whose group
// request is in the given status.
func (r *GormPaymentRepository) CountDueBetween(ctx context.Context, from, to time.Time, requestStatus string) (int64, error) {
	var count int64
	if err := r.conn(ctx).Model(&PaymentModel{}).
		Joins("JOIN group_requests ON group_requests.id = payments.group_request_id").
		Where("payments.status = ? AND payments.due_date >= ? AND payments.due_date < ? AND group_requests.status = ?",
			string(payment.StatusPending), from, to, requestStatus).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count due payments: %w", err)
	}
	return count, nil
}

// Save persists a new payment.
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// Update persists changes with optimistic locking.
func (r *GormPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)
	expectedVersion := p.Version() - 1
	result := r.conn(ctx).
		Model(&PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"reference":  model.Reference,
			"paid_at":    model.PaidAt,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("payment was modified by another transaction")
	}
	return nil
}

// GormAttachmentRepository is the GORM-based implementation of
// payment.AttachmentRepository.
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository.
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

func (r *GormAttachmentRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// Save persists attachment metadata.
func (r *GormAttachmentRepository) Save(ctx context.Context, a *payment.Attachment) error {
	model := &AttachmentModel{
		ID:          a.ID(),
		PaymentID:   a.PaymentID(),
		Filename:    a.Filename(),
		ContentType: a.ContentType(),
		Size:        a.Size(),
		StorageKey:  a.StorageKey(),
		UploadedBy:  a.UploadedBy(),
		UploadedAt:  a.UploadedAt(),
	}
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save attachment: %w", err)
	}
	return nil
}

// FindByID retrieves one attachment record.
func (r *GormAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Attachment, error) {
	var model AttachmentModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Attachment", id.String())
		}
		return nil, fmt.Errorf("failed to find attachment by ID: %w", err)
	}
	return toDomainAttachment(&model), nil
}

// FindByPaymentID retrieves all attachments for a payment, oldest first.
func (r *GormAttachmentRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*payment.Attachment, error) {
	var models []AttachmentModel
	if err := r.conn(ctx).
		Where("payment_id = ?", paymentID).
		Order("uploaded_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find attachments by payment: %w", err)
	}

	attachments := make([]*payment.Attachment, len(models))
	for i, m := range models {
		attachments[i] = toDomainAttachment(&m)
	}
	return attachments, nil
}

// --- Conversion helpers ---

func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:             p.ID(),
		GroupRequestID: p.GroupRequestID(),
		Status:         string(p.Status()),
		Amount:         p.Amount(),
		Currency:       p.Currency(),
		DueDate:        p.DueDate(),
		Reference:      p.Reference(),
		PaidAt:         p.PaidAt(),
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

func toDomainPayment(m *PaymentModel) *payment.Payment {
	return payment.Reconstruct(
		m.ID,
		m.GroupRequestID,
		payment.Status(m.Status),
		m.Amount,
		m.Currency,
		m.DueDate,
		m.Reference,
		m.PaidAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainAttachment(m *AttachmentModel) *payment.Attachment {
	return payment.ReconstructAttachment(
		m.ID,
		m.PaymentID,
		m.Filename,
		m.ContentType,
		m.Size,
		m.StorageKey,
		m.UploadedBy,
		m.UploadedAt,
	)
}
