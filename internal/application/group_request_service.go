package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitsair-platform/service-groupdesk/internal/config"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/grouprequest"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/payment"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/quotation"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/user"
	"github.com/fitsair-platform/service-groupdesk/internal/events"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/kafka"
)

const eventSource = "service-groupdesk"

// CreateGroupRequestRequest holds the data needed to create a group request.
type CreateGroupRequestRequest struct {
	Contact        grouprequest.ContactInfo `json:"contact" binding:"required"`
	AgentName      string                   `json:"agent_name" binding:"required"`
	FromAirport    string                   `json:"from_airport"`
	ToAirport      string                   `json:"to_airport"`
	Routing        string                   `json:"routing" binding:"required"`
	Segments       []grouprequest.Segment   `json:"segments"`
	Pax            grouprequest.PaxCounts   `json:"pax" binding:"required"`
	RequestDate    string                   `json:"request_date"`
	DepartureDate  string                   `json:"departure_date" binding:"required"`
	ReturnDate     string                   `json:"return_date"`
	Category       string                   `json:"category" binding:"required"`
	POSCode        string                   `json:"pos_code" binding:"required"`
	Currency       string                   `json:"currency"`
	GroupType      string                   `json:"group_type"`
	FlightNumber   string                   `json:"flight_number"`
	SpecialRequest string                   `json:"special_request"`
	PartnerID      string                   `json:"partner_id"`
}

// UpdateGroupRequestRequest holds the editable fields of a request.
type UpdateGroupRequestRequest struct {
	Contact        grouprequest.ContactInfo `json:"contact" binding:"required"`
	AgentName      string                   `json:"agent_name" binding:"required"`
	Pax            grouprequest.PaxCounts   `json:"pax" binding:"required"`
	DepartureDate  string                   `json:"departure_date"`
	ReturnDate     string                   `json:"return_date"`
	FlightNumber   string                   `json:"flight_number"`
	SpecialRequest string                   `json:"special_request"`
}

// GroupRequestDTO is the response representation of a group request.
type GroupRequestDTO struct {
	ID                 uuid.UUID                `json:"id"`
	Status             string                   `json:"status"`
	Contact            grouprequest.ContactInfo `json:"contact"`
	AgentName          string                   `json:"agent_name"`
	Route              string                   `json:"route"`
	Routing            string                   `json:"routing"`
	Segments           []grouprequest.Segment   `json:"segments"`
	Pax                grouprequest.PaxCounts   `json:"pax"`
	RequestDate        string                   `json:"request_date"`
	DepartureDate      string                   `json:"departure_date"`
	ReturnDate         string                   `json:"return_date,omitempty"`
	Category           string                   `json:"category"`
	POSCode            string                   `json:"pos_code"`
	Currency           string                   `json:"currency"`
	GroupType          string                   `json:"group_type,omitempty"`
	FlightNumber       string                   `json:"flight_number,omitempty"`
	SpecialRequest     string                   `json:"special_request,omitempty"`
	PartnerID          string                   `json:"partner_id,omitempty"`
	QuotedFare         *string                  `json:"quoted_fare,omitempty"`
	AssignedRcUsername *string                  `json:"assigned_rc_username,omitempty"`
	PNRCode            *string                  `json:"pnr_code,omitempty"`
	CancelNote         string                   `json:"cancel_note,omitempty"`
	Version            int64                    `json:"version"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// GroupRequestDetailDTO bundles a request with its quotations and payments for
// the detail view.
type GroupRequestDetailDTO struct {
	Request    GroupRequestDTO `json:"request"`
	Quotations []QuotationDTO  `json:"quotations"`
	Payments   []PaymentDTO    `json:"payments"`
}

// DashboardStatsDTO holds the console landing-page counters.
type DashboardStatsDTO struct {
	TotalRequests         int64            `json:"total_requests"`
	ByStatus              map[string]int64 `json:"by_status"`
	NewThisWeek           int64            `json:"new_this_week"`
	QuotationsExpiring24h int64            `json:"quotations_expiring_24h"`
	PaymentsDueThisWeek   int64            `json:"payments_due_this_week"`
}

// GroupRequestService is the application service orchestrating group request
// use cases.
type GroupRequestService struct {
	repo          grouprequest.Repository
	quotationRepo quotation.Repository
	paymentRepo   payment.Repository
	userRepo      user.Repository
	producer      *kafka.Producer
	policy        config.WorkflowConfig
	logger        *zap.Logger
}

// NewGroupRequestService creates a new GroupRequestService.
func NewGroupRequestService(
	repo grouprequest.Repository,
	quotationRepo quotation.Repository,
	paymentRepo payment.Repository,
	userRepo user.Repository,
	producer *kafka.Producer,
	policy config.WorkflowConfig,
	logger *zap.Logger,
) *GroupRequestService {
	return &GroupRequestService{
		repo:          repo,
		quotationRepo: quotationRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		producer:      producer,
		policy:        policy,
		logger:        logger,
	}
}

// Create creates a group request on behalf of a console user.
func (s *GroupRequestService) Create(ctx context.Context, caller auth.Identity, req CreateGroupRequestRequest) (*GroupRequestDTO, error) {
	return s.create(ctx, req)
}

// CreatePublic creates a group request from the unauthenticated public
// submission form. Public submissions always enter as direct-customer unless
// an agent category was chosen on the form.
func (s *GroupRequestService) CreatePublic(ctx context.Context, req CreateGroupRequestRequest) (*GroupRequestDTO, error) {
	if req.Category == "" {
		req.Category = string(grouprequest.CategoryDirectCustomer)
	}
	return s.create(ctx, req)
}

func (s *GroupRequestService) create(ctx context.Context, req CreateGroupRequestRequest) (*GroupRequestDTO, error) {
	gr, err := grouprequest.NewGroupRequest(
		req.Contact,
		req.AgentName,
		req.FromAirport,
		req.ToAirport,
		grouprequest.RoutingType(req.Routing),
		req.Segments,
		req.Pax,
		req.RequestDate,
		req.DepartureDate,
		req.ReturnDate,
		grouprequest.Category(req.Category),
		req.POSCode,
		req.Currency,
		grouprequest.GroupType(req.GroupType),
		req.FlightNumber,
		req.SpecialRequest,
		req.PartnerID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, gr); err != nil {
		return nil, fmt.Errorf("failed to save group request: %w", err)
	}

	evt := events.RequestCreatedEvent{
		RequestID:    gr.ID(),
		AgentName:    gr.AgentName(),
		ContactEmail: gr.Contact().Email,
		Route:        gr.Route(),
		PaxTotal:     gr.Pax().Total(),
		Category:     string(gr.Category()),
		POSCode:      gr.POSCode(),
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.RequestCreated, gr.ID().String(), evt)

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// Get retrieves a single group request.
func (s *GroupRequestService) Get(ctx context.Context, id uuid.UUID) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toGroupRequestDTO(gr)
	return &result, nil
}

// GetDetail retrieves a request with its quotations and payments. Quotation
// and payment statuses are projected against the clock, never rewritten.
func (s *GroupRequestService) GetDetail(ctx context.Context, id uuid.UUID) (*GroupRequestDetailDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	quotations, err := s.quotationRepo.FindByGroupRequestID(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByGroupRequestID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	qDTOs := make([]QuotationDTO, len(quotations))
	for i, q := range quotations {
		qDTOs[i] = toQuotationDTO(q, now)
	}
	pDTOs := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		pDTOs[i] = toPaymentDTO(p, now)
	}

	return &GroupRequestDetailDTO{
		Request:    toGroupRequestDTO(gr),
		Quotations: qDTOs,
		Payments:   pDTOs,
	}, nil
}

// List retrieves requests visible to the caller. Route controllers only see
// requests assigned to them; everyone else sees all.
func (s *GroupRequestService) List(ctx context.Context, caller auth.Identity, page, limit int) (*shared.PaginatedResult[GroupRequestDTO], error) {
	var (
		requests []*grouprequest.GroupRequest
		total    int64
		err      error
	)
	if caller.Role == auth.RoleRouteController {
		requests, total, err = s.repo.ListByAssignee(ctx, caller.Username, page, limit)
	} else {
		requests, total, err = s.repo.List(ctx, page, limit)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]GroupRequestDTO, len(requests))
	for i, gr := range requests {
		dtos[i] = toGroupRequestDTO(gr)
	}
	result := shared.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// Update applies an edit of the request's descriptive fields.
func (s *GroupRequestService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, req UpdateGroupRequestRequest) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := gr.UpdateDetails(req.Contact, req.AgentName, req.Pax, req.DepartureDate, req.ReturnDate, req.FlightNumber, req.SpecialRequest); err != nil {
		return nil, err
	}

	gr.IncrementVersion()
	if err := s.repo.Update(ctx, gr); err != nil {
		return nil, err
	}

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// AssignToRouteController moves a NEW request to REVIEWING, assigned to an
// enabled route controller.
func (s *GroupRequestService) AssignToRouteController(ctx context.Context, caller auth.Identity, id uuid.UUID, rcUsername string) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assignee, err := s.userRepo.FindByUsername(ctx, rcUsername)
	if err != nil {
		if shared.IsKind(err, shared.KindNotFound) {
			return nil, shared.NewUnknownAssigneeError(rcUsername)
		}
		return nil, err
	}
	if !assignee.CanQuoteFor() {
		return nil, shared.NewUnknownAssigneeError(rcUsername)
	}

	if err := gr.AssignToRouteController(rcUsername); err != nil {
		return nil, err
	}

	gr.IncrementVersion()
	if err := s.repo.Update(ctx, gr); err != nil {
		return nil, err
	}

	evt := events.RequestAssignedEvent{
		RequestID:  gr.ID(),
		RCUsername: rcUsername,
		AssignedBy: caller.Username,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.RequestAssigned, gr.ID().String(), evt)

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// MarkTicketed transitions a request to TICKETED. When the payment gate is
// enabled, every payment must be PAID first.
func (s *GroupRequestService) MarkTicketed(ctx context.Context, caller auth.Identity, id uuid.UUID) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.policy.RequirePaidBeforeTicketing {
		allPaid, err := s.paymentRepo.AllPaid(ctx, id)
		if err != nil {
			return nil, err
		}
		if !allPaid {
			return nil, shared.NewNotEligibleError("request has unpaid payments")
		}
	}

	if err := gr.MarkTicketed(); err != nil {
		return nil, err
	}

	gr.IncrementVersion()
	if err := s.repo.Update(ctx, gr); err != nil {
		return nil, err
	}

	evt := events.RequestTicketedEvent{
		RequestID:  gr.ID(),
		TicketedBy: caller.Username,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.RequestTicketed, gr.ID().String(), evt)

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// IssuePNR records the PNR code on a request with at least one paid payment
// and asks the notifier to email the agent.
func (s *GroupRequestService) IssuePNR(ctx context.Context, caller auth.Identity, id uuid.UUID, pnrCode string) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hasPaid, err := s.paymentRepo.HasPaid(ctx, id)
	if err != nil {
		return nil, err
	}
	if !hasPaid {
		return nil, shared.NewNotEligibleError("no paid payment exists for this request")
	}

	if err := gr.IssuePNR(pnrCode); err != nil {
		return nil, err
	}

	gr.IncrementVersion()
	if err := s.repo.Update(ctx, gr); err != nil {
		return nil, err
	}

	evt := events.PNRIssuedEvent{
		RequestID:    gr.ID(),
		PNRCode:      pnrCode,
		AgentName:    gr.AgentName(),
		ContactEmail: gr.Contact().Email,
		IssuedBy:     caller.Username,
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicNotificationEvents, events.PNRIssued, gr.ID().String(), evt)

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// Cancel moves a request to CANCELLED, subject to the cancellation policy.
func (s *GroupRequestService) Cancel(ctx context.Context, caller auth.Identity, id uuid.UUID, reason string) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(s.policy.CancellableFrom) > 0 && !contains(s.policy.CancellableFrom, string(gr.Status())) {
		return nil, shared.NewInvalidTransitionError(string(gr.Status()), string(grouprequest.StatusCancelled))
	}

	if err := gr.Cancel(reason); err != nil {
		return nil, err
	}

	gr.IncrementVersion()
	if err := s.repo.Update(ctx, gr); err != nil {
		return nil, err
	}

	evt := events.RequestCancelledEvent{
		RequestID:   gr.ID(),
		CancelledBy: caller.Username,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.RequestCancelled, gr.ID().String(), evt)

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// Delete hard-deletes a request that is still NEW.
func (s *GroupRequestService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !gr.Deletable() {
		return shared.NewNotDeletableError(id.String(), string(gr.Status()))
	}
	return s.repo.Delete(ctx, id)
}

// UpdateSegmentDate sets the departure date of one itinerary leg.
func (s *GroupRequestService) UpdateSegmentDate(ctx context.Context, caller auth.Identity, id uuid.UUID, segmentIndex int, date string) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := gr.UpdateSegmentDate(segmentIndex, date); err != nil {
		return nil, err
	}

	gr.IncrementVersion()
	if err := s.repo.Update(ctx, gr); err != nil {
		return nil, err
	}

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// UpdateSegmentExtras replaces the extras of one itinerary leg.
func (s *GroupRequestService) UpdateSegmentExtras(ctx context.Context, caller auth.Identity, id uuid.UUID, segmentIndex int, extras grouprequest.SegmentExtras) (*GroupRequestDTO, error) {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := gr.UpdateSegmentExtras(segmentIndex, extras); err != nil {
		return nil, err
	}

	gr.IncrementVersion()
	if err := s.repo.Update(ctx, gr); err != nil {
		return nil, err
	}

	result := toGroupRequestDTO(gr)
	return &result, nil
}

// NotifyAgentSegments asks the notifier to email the current itinerary to the
// agent.
func (s *GroupRequestService) NotifyAgentSegments(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	gr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	evt := events.SegmentsChangedEvent{
		RequestID:    gr.ID(),
		AgentName:    gr.AgentName(),
		ContactEmail: gr.Contact().Email,
		Route:        gr.Route(),
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicNotificationEvents, events.SegmentsChanged, gr.ID().String(), evt)
	return nil
}

// DashboardStats computes the console landing-page counters.
func (s *GroupRequestService) DashboardStats(ctx context.Context) (*DashboardStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}

	now := time.Now().UTC()
	newThisWeek, err := s.repo.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	expiring, err := s.quotationRepo.CountExpiringBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	due, err := s.paymentRepo.CountDueBetween(ctx, now, now.AddDate(0, 0, 7), string(grouprequest.StatusConfirmed))
	if err != nil {
		return nil, err
	}

	return &DashboardStatsDTO{
		TotalRequests:         total,
		ByStatus:              counts,
		NewThisWeek:           newThisWeek,
		QuotationsExpiring24h: expiring,
		PaymentsDueThisWeek:   due,
	}, nil
}

// --- Helpers ---

func toGroupRequestDTO(gr *grouprequest.GroupRequest) GroupRequestDTO {
	return GroupRequestDTO{
		ID:                 gr.ID(),
		Status:             string(gr.Status()),
		Contact:            gr.Contact(),
		AgentName:          gr.AgentName(),
		Route:              gr.Route(),
		Routing:            string(gr.Routing()),
		Segments:           gr.Segments(),
		Pax:                gr.Pax(),
		RequestDate:        gr.RequestDate(),
		DepartureDate:      gr.DepartureDate(),
		ReturnDate:         gr.ReturnDate(),
		Category:           string(gr.Category()),
		POSCode:            gr.POSCode(),
		Currency:           gr.Currency(),
		GroupType:          string(gr.GroupType()),
		FlightNumber:       gr.FlightNumber(),
		SpecialRequest:     gr.SpecialRequest(),
		PartnerID:          gr.PartnerID(),
		QuotedFare:         gr.QuotedFare(),
		AssignedRcUsername: gr.AssignedRcUsername(),
		PNRCode:            gr.PNRCode(),
		CancelNote:         gr.CancelNote(),
		Version:            gr.Version(),
		CreatedAt:          gr.CreatedAt(),
		UpdatedAt:          gr.UpdatedAt(),
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func (s *GroupRequestService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	publishEvent(ctx, s.producer, s.logger, topic, eventType, key, data)
}

// publishEvent wraps data in a CloudEvent and publishes it, logging failures
// instead of failing the caller's request.
func publishEvent(ctx context.Context, producer *kafka.Producer, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishKeyed(ctx, topic, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
