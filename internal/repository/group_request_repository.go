package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/grouprequest"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/database"
)

// GroupRequestModel is the GORM model for the group_requests table.
type GroupRequestModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Status             string          `gorm:"not null;size:20;index"`
	Contact            json.RawMessage `gorm:"type:jsonb;not null"`
	AgentName          string          `gorm:"not null;size:200;index"`
	FromAirport        string          `gorm:"size:3"`
	ToAirport          string          `gorm:"size:3"`
	Routing            string          `gorm:"not null;size:10"`
	Segments           json.RawMessage `gorm:"type:jsonb;not null"`
	PaxAdult           int             `gorm:"not null"`
	PaxChild           int             `gorm:"not null"`
	PaxInfant          int             `gorm:"not null"`
	RequestDate        string          `gorm:"not null;size:10"`
	DepartureDate      string          `gorm:"not null;size:10"`
	ReturnDate         string          `gorm:"size:10"`
	Category           string          `gorm:"not null;size:20"`
	PosCode            string          `gorm:"not null;size:10"`
	Currency           string          `gorm:"not null;size:3"`
	GroupType          string          `gorm:"size:20"`
	FlightNumber       string          `gorm:"size:10"`
	SpecialRequest     string          `gorm:"size:1000"`
	PartnerID          string          `gorm:"size:50"`
	QuotedFare         *string         `gorm:"size:20"`
	AssignedRcUsername *string         `gorm:"size:100;index"`
	PnrCode            *string         `gorm:"size:8"`
	CancelNote         string          `gorm:"size:500"`
	Version            int64           `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"not null;index"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (GroupRequestModel) TableName() string {
	return "group_requests"
}

// GormGroupRequestRepository is the GORM-based implementation of
// grouprequest.Repository.
type GormGroupRequestRepository struct {
	db *gorm.DB
}

// NewGormGroupRequestRepository creates a new GormGroupRequestRepository.
func NewGormGroupRequestRepository(db *gorm.DB) *GormGroupRequestRepository {
	return &GormGroupRequestRepository{db: db}
}

func (r *GormGroupRequestRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a group request by its unique identifier.
func (r *GormGroupRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*grouprequest.GroupRequest, error) {
	var model GroupRequestModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("GroupRequest", id.String())
		}
		return nil, fmt.Errorf("failed to find group request by ID: %w", err)
	}
	return toDomainGroupRequest(&model)
}

// List retrieves group requests ordered newest-first with pagination.
func (r *GormGroupRequestRepository) List(ctx context.Context, page, limit int) ([]*grouprequest.GroupRequest, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&GroupRequestModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count group requests: %w", err)
	}

	var models []GroupRequestModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list group requests: %w", err)
	}

	return toDomainGroupRequests(models, total)
}

// ListByAssignee retrieves requests assigned to a route controller.
func (r *GormGroupRequestRepository) ListByAssignee(ctx context.Context, rcUsername string, page, limit int) ([]*grouprequest.GroupRequest, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&GroupRequestModel{}).
		Where("assigned_rc_username = ?", rcUsername).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assigned requests: %w", err)
	}

	var models []GroupRequestModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Where("assigned_rc_username = ?", rcUsername).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list assigned requests: %w", err)
	}

	return toDomainGroupRequests(models, total)
}

// CountByStatus returns request counts grouped by status.
func (r *GormGroupRequestRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.conn(ctx).Model(&GroupRequestModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// CountCreatedSince returns how many requests were created at or after the
// given instant.
func (r *GormGroupRequestRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.conn(ctx).Model(&GroupRequestModel{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent requests: %w", err)
	}
	return count, nil
}

// Save persists a new group request.
func (r *GormGroupRequestRepository) Save(ctx context.Context, req *grouprequest.GroupRequest) error {
	model, err := toGroupRequestModel(req)
	if err != nil {
		return fmt.Errorf("failed to convert group request to model: %w", err)
	}
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save group request: %w", err)
	}
	return nil
}

// Update persists changes with optimistic locking.
func (r *GormGroupRequestRepository) Update(ctx context.Context, req *grouprequest.GroupRequest) error {
	model, err := toGroupRequestModel(req)
	if err != nil {
		return fmt.Errorf("failed to convert group request to model: %w", err)
	}

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := req.Version() - 1
	result := r.conn(ctx).
		Model(&GroupRequestModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"contact":              model.Contact,
			"agent_name":           model.AgentName,
			"segments":             model.Segments,
			"pax_adult":            model.PaxAdult,
			"pax_child":            model.PaxChild,
			"pax_infant":           model.PaxInfant,
			"departure_date":       model.DepartureDate,
			"return_date":          model.ReturnDate,
			"flight_number":        model.FlightNumber,
			"special_request":      model.SpecialRequest,
			"quoted_fare":          model.QuotedFare,
			"assigned_rc_username": model.AssignedRcUsername,
			"pnr_code":             model.PnrCode,
			"cancel_note":          model.CancelNote,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update group request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("group request was modified by another transaction")
	}
	return nil
}

// Delete removes a request.
func (r *GormGroupRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Where("id = ?", id).Delete(&GroupRequestModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete group request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("GroupRequest", id.String())
	}
	return nil
}

// --- Conversion helpers ---

func toGroupRequestModel(req *grouprequest.GroupRequest) (*GroupRequestModel, error) {
	contactJSON, err := json.Marshal(req.Contact())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact: %w", err)
	}
	segmentsJSON, err := json.Marshal(req.Segments())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal segments: %w", err)
	}

	pax := req.Pax()
	return &GroupRequestModel{
		ID:                 req.ID(),
		Status:             string(req.Status()),
		Contact:            contactJSON,
		AgentName:          req.AgentName(),
		FromAirport:        req.FromAirport(),
		ToAirport:          req.ToAirport(),
		Routing:            string(req.Routing()),
		Segments:           segmentsJSON,
		PaxAdult:           pax.Adult,
		PaxChild:           pax.Child,
		PaxInfant:          pax.Infant,
		RequestDate:        req.RequestDate(),
		DepartureDate:      req.DepartureDate(),
		ReturnDate:         req.ReturnDate(),
		Category:           string(req.Category()),
		PosCode:            req.POSCode(),
		Currency:           req.Currency(),
		GroupType:          string(req.GroupType()),
		FlightNumber:       req.FlightNumber(),
		SpecialRequest:     req.SpecialRequest(),
		PartnerID:          req.PartnerID(),
		QuotedFare:         req.QuotedFare(),
		AssignedRcUsername: req.AssignedRcUsername(),
		PnrCode:            req.PNRCode(),
		CancelNote:         req.CancelNote(),
		Version:            req.Version(),
		CreatedAt:          req.CreatedAt(),
		UpdatedAt:          req.UpdatedAt(),
	}, nil
}

func toDomainGroupRequest(m *GroupRequestModel) (*grouprequest.GroupRequest, error) {
	var contact grouprequest.ContactInfo
	if err := json.Unmarshal(m.Contact, &contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact: %w", err)
	}
	var segments []grouprequest.Segment
	if err := json.Unmarshal(m.Segments, &segments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal segments: %w", err)
	}

	status, err := grouprequest.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return grouprequest.Reconstruct(
		m.ID,
		status,
		contact,
		m.AgentName,
		m.FromAirport,
		m.ToAirport,
		grouprequest.RoutingType(m.Routing),
		segments,
		grouprequest.PaxCounts{Adult: m.PaxAdult, Child: m.PaxChild, Infant: m.PaxInfant},
		m.RequestDate,
		m.DepartureDate,
		m.ReturnDate,
		grouprequest.Category(m.Category),
		m.PosCode,
		m.Currency,
		grouprequest.GroupType(m.GroupType),
		m.FlightNumber,
		m.SpecialRequest,
		m.PartnerID,
		m.QuotedFare,
		m.AssignedRcUsername,
		m.PnrCode,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainGroupRequests(models []GroupRequestModel, total int64) ([]*grouprequest.GroupRequest, int64, error) {
	requests := make([]*grouprequest.GroupRequest, len(models))
	for i, m := range models {
		req, err := toDomainGroupRequest(&m)
		if err != nil {
			return nil, 0, err
		}
		requests[i] = req
	}
	return requests, total, nil
}
