package application

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitsair-platform/service-groupdesk/internal/config"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/grouprequest"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/payment"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/quotation"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/events"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/database"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/kafka"
)

// CreateQuotationRequest holds the data needed to draft a quotation.
type CreateQuotationRequest struct {
	GroupRequestID uuid.UUID `json:"group_request_id" binding:"required"`
	TotalFare      string    `json:"total_fare" binding:"required"`
	Currency       string    `json:"currency"`
	Note           string    `json:"note"`
}

// ResendQuotationRequest holds the overrides for a full resend. All fields are
// ignored by a simple resend.
type ResendQuotationRequest struct {
	TotalFare string `json:"total_fare"`
	Currency  string `json:"currency"`
	Note      string `json:"note"`
}

// QuotationDTO is the response representation of a quotation. Status is the
// clock-projected effective status; StoredStatus is what the record holds.
type QuotationDTO struct {
	ID             uuid.UUID `json:"id"`
	GroupRequestID uuid.UUID `json:"group_request_id"`
	Status         string    `json:"status"`
	StoredStatus   string    `json:"stored_status"`
	TotalFare      string    `json:"total_fare"`
	Currency       string    `json:"currency"`
	Note           string    `json:"note,omitempty"`
	ApprovedBy     *string   `json:"approved_by,omitempty"`
	CreatedDate    time.Time `json:"created_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// QuotationService is the application service orchestrating quotation use
// cases.
type QuotationService struct {
	repo        quotation.Repository
	requestRepo grouprequest.Repository
	paymentRepo payment.Repository
	txManager   *database.TxManager
	producer    *kafka.Producer
	policy      config.WorkflowConfig
	logger      *zap.Logger
}

// NewQuotationService creates a new QuotationService.
func NewQuotationService(
	repo quotation.Repository,
	requestRepo grouprequest.Repository,
	paymentRepo payment.Repository,
	txManager *database.TxManager,
	producer *kafka.Producer,
	policy config.WorkflowConfig,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		repo:        repo,
		requestRepo: requestRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		producer:    producer,
		policy:      policy,
		logger:      logger,
	}
}

// Create drafts a quotation for a request under review. Route controllers may
// only quote requests assigned to them.
func (s *QuotationService) Create(ctx context.Context, caller auth.Identity, req CreateQuotationRequest) (*QuotationDTO, error) {
	gr, err := s.requestRepo.FindByID(ctx, req.GroupRequestID)
	if err != nil {
		return nil, err
	}

	if caller.Role == auth.RoleRouteController {
		assignee := gr.AssignedRcUsername()
		if assignee == nil || *assignee != caller.Username {
			return nil, shared.NewForbiddenError("request is not assigned to this route controller")
		}
	}

	active, err := s.repo.FindActiveByGroupRequestID(ctx, req.GroupRequestID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, shared.NewDuplicateActiveQuotationError(req.GroupRequestID.String())
	}

	currency := req.Currency
	if currency == "" {
		currency = gr.Currency()
	}

	now := time.Now().UTC()
	q, err := quotation.New(req.GroupRequestID, req.TotalFare, currency, req.Note, now)
	if err != nil {
		return nil, err
	}

	if err := gr.MarkQuoted(); err != nil {
		return nil, err
	}
	gr.IncrementVersion()

	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Save(ctx, q); err != nil {
			return err
		}
		return s.requestRepo.Update(ctx, gr)
	})
	if err != nil {
		return nil, err
	}

	evt := events.QuotationCreatedEvent{
		QuotationID: q.ID(),
		RequestID:   q.GroupRequestID(),
		TotalFare:   q.TotalFare(),
		Currency:    q.Currency(),
		ExpiryDate:  q.ExpiryDate(),
		CreatedBy:   caller.Username,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.QuotationCreated, q.GroupRequestID().String(), evt)

	result := toQuotationDTO(q, now)
	return &result, nil
}

// Get retrieves one quotation with its effective status projected.
func (s *QuotationService) Get(ctx context.Context, id uuid.UUID) (*QuotationDTO, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toQuotationDTO(q, time.Now().UTC())
	return &result, nil
}

// List retrieves quotations newest-first with pagination.
func (s *QuotationService) List(ctx context.Context, page, limit int) (*shared.PaginatedResult[QuotationDTO], error) {
	quotations, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dtos := make([]QuotationDTO, len(quotations))
	for i, q := range quotations {
		dtos[i] = toQuotationDTO(q, now)
	}
	result := shared.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListByRequest retrieves all quotations of one request, newest first.
func (s *QuotationService) ListByRequest(ctx context.Context, groupRequestID uuid.UUID) ([]QuotationDTO, error) {
	quotations, err := s.repo.FindByGroupRequestID(ctx, groupRequestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dtos := make([]QuotationDTO, len(quotations))
	for i, q := range quotations {
		dtos[i] = toQuotationDTO(q, now)
	}
	return dtos, nil
}

// Send transitions a draft to SENT and asks the notifier to email the agent.
func (s *QuotationService) Send(ctx context.Context, caller auth.Identity, id uuid.UUID) (*QuotationDTO, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := q.Send(now); err != nil {
		return nil, err
	}

	q.IncrementVersion()
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}

	gr, err := s.requestRepo.FindByID(ctx, q.GroupRequestID())
	if err != nil {
		return nil, err
	}
	evt := events.QuotationSentEvent{
		QuotationID:  q.ID(),
		RequestID:    q.GroupRequestID(),
		AgentName:    gr.AgentName(),
		ContactEmail: gr.Contact().Email,
		TotalFare:    q.TotalFare(),
		Currency:     q.Currency(),
		ExpiryDate:   q.ExpiryDate(),
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicNotificationEvents, events.QuotationSent, q.GroupRequestID().String(), evt)

	result := toQuotationDTO(q, now)
	return &result, nil
}

// Accept confirms a sent quotation. In one transaction the quotation becomes
// ACCEPTED, the request becomes CONFIRMED with the quoted fare recorded, and
// the payment schedule is created in PENDING.
func (s *QuotationService) Accept(ctx context.Context, caller auth.Identity, id uuid.UUID) (*QuotationDTO, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	gr, err := s.requestRepo.FindByID(ctx, q.GroupRequestID())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := q.Accept(caller.Username, now); err != nil {
		return nil, err
	}
	if err := gr.ConfirmWithFare(q.TotalFare()); err != nil {
		return nil, err
	}

	payments, err := s.buildPaymentSchedule(gr.ID(), q.TotalFare(), q.Currency(), now)
	if err != nil {
		return nil, err
	}

	q.IncrementVersion()
	gr.IncrementVersion()

	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, q); err != nil {
			return err
		}
		if err := s.requestRepo.Update(ctx, gr); err != nil {
			return err
		}
		for _, p := range payments {
			if err := s.paymentRepo.Save(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := events.QuotationAcceptedEvent{
		QuotationID: q.ID(),
		RequestID:   q.GroupRequestID(),
		TotalFare:   q.TotalFare(),
		Currency:    q.Currency(),
		ApprovedBy:  caller.Username,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.QuotationAccepted, q.GroupRequestID().String(), evt)

	result := toQuotationDTO(q, now)
	return &result, nil
}

// Resend supersedes a quotation with a fresh draft. Full mode rejects the old
// quotation and uses the supplied fare; simple mode expires the old quotation
// and carries its fare, currency and note forward.
func (s *QuotationService) Resend(ctx context.Context, caller auth.Identity, id uuid.UUID, mode quotation.ResendMode, req ResendQuotationRequest) (*QuotationDTO, error) {
	old, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A superseded DRAFT/SENT quotation is replaced inside this operation, but
	// any other live quotation on the request still blocks a new draft.
	active, err := s.repo.FindActiveByGroupRequestID(ctx, old.GroupRequestID())
	if err != nil {
		return nil, err
	}
	if active != nil && active.ID() != old.ID() {
		return nil, shared.NewDuplicateActiveQuotationError(old.GroupRequestID().String())
	}

	now := time.Now().UTC()
	plan, err := quotation.ResendPlan(mode, old, req.TotalFare, req.Currency, req.Note, now)
	if err != nil {
		return nil, err
	}

	// A resend from EXPIRED or REJECTED leaves the old record as is; only a
	// still-live quotation needs its superseding status written.
	supersedeOld := old.Status().IsActive()
	if supersedeOld {
		switch plan.OldStatus {
		case quotation.StatusRejected:
			err = old.Reject()
		case quotation.StatusExpired:
			err = old.MarkExpired()
		default:
			err = shared.NewValidationError(fmt.Sprintf("unexpected resend status %s", plan.OldStatus))
		}
		if err != nil {
			return nil, err
		}
		old.IncrementVersion()
	}

	newDraft := plan.NewDraft
	err = s.txManager.InTx(ctx, func(ctx context.Context) error {
		if supersedeOld {
			if err := s.repo.Update(ctx, old); err != nil {
				return err
			}
		}
		return s.repo.Save(ctx, newDraft)
	})
	if err != nil {
		return nil, err
	}

	evt := events.QuotationResentEvent{
		OldQuotationID: old.ID(),
		NewQuotationID: newDraft.ID(),
		RequestID:      old.GroupRequestID(),
		Mode:           string(mode),
		OccurredAt:     time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicGroupDeskEvents, events.QuotationResent, old.GroupRequestID().String(), evt)

	result := toQuotationDTO(newDraft, now)
	return &result, nil
}

// OverrideStatus applies a manual console status change, still subject to the
// transition table.
func (s *QuotationService) OverrideStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, target quotation.Status) (*QuotationDTO, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := q.OverrideStatus(target, caller.Username); err != nil {
		return nil, err
	}

	q.IncrementVersion()
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}

	result := toQuotationDTO(q, time.Now().UTC())
	return &result, nil
}

// buildPaymentSchedule splits the fare into the configured installments. The
// last installment absorbs any rounding remainder; an unparseable fare falls
// back to a single payment carrying the fare string unchanged.
func (s *QuotationService) buildPaymentSchedule(requestID uuid.UUID, totalFare, currency string, acceptedAt time.Time) ([]*payment.Payment, error) {
	installments := s.policy.PaymentInstallments
	if installments < 1 {
		installments = 1
	}

	amounts := splitAmount(totalFare, installments)

	payments := make([]*payment.Payment, 0, len(amounts))
	for i, amount := range amounts {
		p, err := payment.New(requestID, amount, currency, acceptedAt.Add(s.dueOffset(i)))
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (s *QuotationService) dueOffset(installment int) time.Duration {
	offsets := s.policy.PaymentDueOffsets
	if len(offsets) == 0 {
		return 7 * 24 * time.Hour
	}
	if installment >= len(offsets) {
		return offsets[len(offsets)-1]
	}
	return offsets[installment]
}

// splitAmount divides a decimal amount string into n parts summing exactly to
// the original. Non-numeric amounts are returned whole as a single part.
func splitAmount(total string, n int) []string {
	if n <= 1 {
		return []string{total}
	}

	whole, ok := new(big.Rat).SetString(total)
	if !ok {
		return []string{total}
	}

	each := new(big.Rat).Quo(whole, new(big.Rat).SetInt64(int64(n)))
	parts := make([]string, n)
	sum := new(big.Rat)
	for i := 0; i < n-1; i++ {
		rounded, _ := new(big.Rat).SetString(each.FloatString(2))
		parts[i] = rounded.FloatString(2)
		sum.Add(sum, rounded)
	}
	last := new(big.Rat).Sub(whole, sum)
	parts[n-1] = last.FloatString(2)
	return parts
}

// --- Helpers ---

func toQuotationDTO(q *quotation.Quotation, now time.Time) QuotationDTO {
	return QuotationDTO{
		ID:             q.ID(),
		GroupRequestID: q.GroupRequestID(),
		Status:         string(q.EffectiveStatus(now)),
		StoredStatus:   string(q.Status()),
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

func (s *QuotationService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	publishEvent(ctx, s.producer, s.logger, topic, eventType, key, data)
}
