package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

// Attachment is the metadata record for one binary file associated with a
// payment. The bytes live in the blob store under StorageKey.
type Attachment struct {
	id          uuid.UUID
	paymentID   uuid.UUID
	filename    string
	contentType string
	size        int64
	storageKey  string
	uploadedBy  string
	uploadedAt  time.Time
}

// NewAttachment creates an attachment metadata record.
func NewAttachment(paymentID uuid.UUID, filename, contentType string, size int64, storageKey, uploadedBy string) (*Attachment, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewValidationError("payment ID is required")
	}
	if filename == "" {
		return nil, shared.NewValidationError("filename is required")
	}
	if size <= 0 {
		return nil, shared.NewValidationError("attachment is empty")
	}
	if storageKey == "" {
		return nil, shared.NewValidationError("storage key is required")
	}

	return &Attachment{
		id:          uuid.New(),
		paymentID:   paymentID,
		filename:    filename,
		contentType: contentType,
		size:        size,
		storageKey:  storageKey,
		uploadedBy:  uploadedBy,
		uploadedAt:  time.Now().UTC(),
	}, nil
}

// ReconstructAttachment rebuilds an Attachment from persistence.
func ReconstructAttachment(id, paymentID uuid.UUID, filename, contentType string, size int64, storageKey, uploadedBy string, uploadedAt time.Time) *Attachment {
	return &Attachment{
		id:          id,
		paymentID:   paymentID,
		filename:    filename,
		contentType: contentType,
		size:        size,
		storageKey:  storageKey,
		uploadedBy:  uploadedBy,
		uploadedAt:  uploadedAt,
	}
}

func (a *Attachment) ID() uuid.UUID        { return a.id }
func (a *Attachment) PaymentID() uuid.UUID { return a.paymentID }
func (a *Attachment) Filename() string     { return a.filename }
func (a *Attachment) ContentType() string  { return a.contentType }
func (a *Attachment) Size() int64          { return a.size }
func (a *Attachment) StorageKey() string   { return a.storageKey }
func (a *Attachment) UploadedBy() string   { return a.uploadedBy }
func (a *Attachment) UploadedAt() time.Time { return a.uploadedAt }
