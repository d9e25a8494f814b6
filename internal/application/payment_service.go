package application

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/payment"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/events"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/kafka"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/storage"
)

// PaymentDTO is the response representation of a payment. Status is the
// clock-projected effective status; StoredStatus is what the record holds.
type PaymentDTO struct {
	ID             uuid.UUID  `json:"id"`
	GroupRequestID uuid.UUID  `json:"group_request_id"`
	Status         string     `json:"status"`
	StoredStatus   string     `json:"stored_status"`
	Amount         string     `json:"amount"`
	Currency       string     `json:"currency"`
	DueDate        time.Time  `json:"due_date"`
	Reference      *string    `json:"reference,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AttachmentDTO is the response representation of a payment attachment.
type AttachmentDTO struct {
	ID          uuid.UUID `json:"id"`
	PaymentID   uuid.UUID `json:"payment_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// PaymentService is the application service orchestrating payment use cases.
type PaymentService struct {
	repo           payment.Repository
	attachmentRepo payment.AttachmentRepository
	blobs          storage.BlobStore
	producer       *kafka.Producer
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	repo payment.Repository,
	attachmentRepo payment.AttachmentRepository,
	blobs storage.BlobStore,
	producer *kafka.Producer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		repo:           repo,
		attachmentRepo: attachmentRepo,
		blobs:          blobs,
		producer:       producer,
		logger:         logger,
	}
}

// Get retrieves one payment with its effective status projected.
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*PaymentDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toPaymentDTO(p, time.Now().UTC())
	return &result, nil
}

// List retrieves payments newest-first with pagination.
func (s *PaymentService) List(ctx context.Context, page, limit int) (*shared.PaginatedResult[PaymentDTO], error) {
	payments, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p, now)
	}
	result := shared.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListByRequest retrieves all payments of one request in installment order.
func (s *PaymentService) ListByRequest(ctx context.Context, groupRequestID uuid.UUID) ([]PaymentDTO, error) {
	payments, err := s.repo.FindByGroupRequestID(ctx, groupRequestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p, now)
	}
	return dtos, nil
}

// MarkPaid settles a pending payment and stores the settlement reference.
func (s *PaymentService) MarkPaid(ctx context.Context, caller auth.Identity, id uuid.UUID, reference string) (*PaymentDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := p.MarkPaid(reference, now); err != nil {
		return nil, err
	}

	p.IncrementVersion()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	evt := events.PaymentPaidEvent{
		PaymentID:  p.ID(),
		RequestID:  p.GroupRequestID(),
		Amount:     p.Amount(),
		Currency:   p.Currency(),
		Reference:  reference,
		MarkedBy:   caller.Username,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.PaymentPaid, p.GroupRequestID().String(), evt)

	result := toPaymentDTO(p, now)
	return &result, nil
}

// UploadAttachment stores a settlement document (bank slip, remittance advice)
// against a payment.
func (s *PaymentService) UploadAttachment(ctx context.Context, caller auth.Identity, paymentID uuid.UUID, filename, contentType string, size int64, r io.Reader) (*AttachmentDTO, error) {
	if _, err := s.repo.FindByID(ctx, paymentID); err != nil {
		return nil, err
	}

	key, err := s.blobs.Put(r)
	if err != nil {
		return nil, err
	}

	a, err := payment.NewAttachment(paymentID, filename, contentType, size, key, caller.Username)
	if err != nil {
		if delErr := s.blobs.Delete(key); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	if err := s.attachmentRepo.Save(ctx, a); err != nil {
		if delErr := s.blobs.Delete(key); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	result := toAttachmentDTO(a)
	return &result, nil
}

// ListAttachments retrieves attachment metadata for a payment.
func (s *PaymentService) ListAttachments(ctx context.Context, paymentID uuid.UUID) ([]AttachmentDTO, error) {
	attachments, err := s.attachmentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	dtos := make([]AttachmentDTO, len(attachments))
	for i, a := range attachments {
		dtos[i] = toAttachmentDTO(a)
	}
	return dtos, nil
}

// OpenAttachment returns the attachment metadata and a reader over its bytes.
// The caller must close the reader.
func (s *PaymentService) OpenAttachment(ctx context.Context, attachmentID uuid.UUID) (*AttachmentDTO, io.ReadCloser, error) {
	a, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Get(a.StorageKey())
	if err != nil {
		return nil, nil, err
	}

	dto := toAttachmentDTO(a)
	return &dto, rc, nil
}

// --- Helpers ---

func toPaymentDTO(p *payment.Payment, now time.Time) PaymentDTO {
	return PaymentDTO{
		ID:             p.ID(),
		GroupRequestID: p.GroupRequestID(),
		Status:         string(p.EffectiveStatus(now)),
		StoredStatus:   string(p.Status()),
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

func toAttachmentDTO(a *payment.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:          a.ID(),
		PaymentID:   a.PaymentID(),
		Filename:    a.Filename(),
		ContentType: a.ContentType(),
		Size:        a.Size(),
		UploadedBy:  a.UploadedBy(),
		UploadedAt:  a.UploadedAt(),
	}
}

func (s *PaymentService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	publishEvent(ctx, s.producer, s.logger, topic, eventType, key, data)
}
