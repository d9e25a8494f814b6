package grouprequest_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/grouprequest"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/payment"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/quotation"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

// TestWorkflow_EndToEnd walks a request from intake through quotation,
// payment and PNR issuance across the three aggregates.
func TestWorkflow_EndToEnd(t *testing.T) {
	now := time.Now().UTC()

	gr, err := grouprequest.NewGroupRequest(
		grouprequest.ContactInfo{FirstName: "Nuwan", Email: "nuwan@example.com"},
		"Island Tours",
		"DAC", "KUL",
		grouprequest.RoutingOneWay,
		nil,
		grouprequest.PaxCounts{Adult: 20, Child: 4},
		"", "2026-09-15", "",
		grouprequest.CategoryAgent,
		"CMB", "LKR",
		grouprequest.GroupTypeEducation,
		"", "", "",
	)
	require.NoError(t, err)
	assert.Equal(t, "DAC-CMB-KUL", gr.Route())

	// Group desk assigns the request to a route controller.
	require.NoError(t, gr.AssignToRouteController("rc.silva"))

	// The RC drafts a quotation; the request moves to QUOTED.
	q, err := quotation.New(gr.ID(), "125000.00", "LKR", "group of 24", now)
	require.NoError(t, err)
	require.NoError(t, gr.MarkQuoted())

	// The quotation goes out and the agent accepts within the window.
	require.NoError(t, q.Send(now))
	require.NoError(t, q.Accept("desk.amara", now.Add(12*time.Hour)))
	require.NoError(t, gr.ConfirmWithFare(q.TotalFare()))
	require.NotNil(t, gr.QuotedFare())
	assert.Equal(t, "125000.00", *gr.QuotedFare())

	// Acceptance produces a pending payment; settlement marks it paid.
	p, err := payment.New(gr.ID(), q.TotalFare(), q.Currency(), now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, p.MarkPaid("WIRE-0042", now.Add(24*time.Hour)))

	// With a paid payment on file the PNR can be recorded once.
	require.NoError(t, gr.IssuePNR("AB12CD"))
	err = gr.IssuePNR("XY34ZW")
	assert.Equal(t, shared.KindAlreadyIssued, shared.KindOf(err))

	require.NoError(t, gr.MarkTicketed())
	assert.Equal(t, grouprequest.StatusTicketed, gr.Status())
}

// TestWorkflow_ExpiredQuotationIsResent covers the lapse-and-resend path: the
// offer window passes, the agent cannot accept, and a simple resend produces a
// fresh draft carrying the same terms.
func TestWorkflow_ExpiredQuotationIsResent(t *testing.T) {
	created := time.Now().UTC().Add(-72 * time.Hour)

	q, err := quotation.New(uuid.New(), "98000.00", "LKR", "", created)
	require.NoError(t, err)
	require.NoError(t, q.Send(created))

	now := time.Now().UTC()
	assert.Equal(t, quotation.StatusExpired, q.EffectiveStatus(now))

	err = q.Accept("desk.amara", now)
	assert.Equal(t, shared.KindExpired, shared.KindOf(err))

	plan, err := quotation.ResendPlan(quotation.ResendSimple, q, "", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, quotation.StatusExpired, plan.OldStatus)
	assert.Equal(t, "98000.00", plan.NewDraft.TotalFare())
	assert.Equal(t, now.Add(quotation.Validity), plan.NewDraft.ExpiryDate())
}
