package quotation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

func TestResendPlan_Full(t *testing.T) {
	now := time.Now().UTC()
	old := newTestQuotation(t, now.Add(-72*time.Hour))

	plan, err := ResendPlan(ResendFull, old, "135000.00", "", "revised fare", now)
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, plan.OldStatus)
	require.NotNil(t, plan.NewDraft)
	assert.Equal(t, old.GroupRequestID(), plan.NewDraft.GroupRequestID())
	assert.Equal(t, StatusDraft, plan.NewDraft.Status())
	assert.Equal(t, "135000.00", plan.NewDraft.TotalFare())
	// Currency carried from the old quotation when not overridden.
	assert.Equal(t, "LKR", plan.NewDraft.Currency())
	assert.Equal(t, "revised fare", plan.NewDraft.Note())
	assert.Equal(t, now.Add(Validity), plan.NewDraft.ExpiryDate())
}

func TestResendPlan_FullRequiresFare(t *testing.T) {
	now := time.Now().UTC()
	old := newTestQuotation(t, now)

	_, err := ResendPlan(ResendFull, old, "", "", "", now)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestResendPlan_SimpleClonesOldValues(t *testing.T) {
	now := time.Now().UTC()
	old := newTestQuotation(t, now.Add(-72*time.Hour))

	plan, err := ResendPlan(ResendSimple, old, "999.99", "USD", "ignored", now)
	require.NoError(t, err)

	assert.Equal(t, StatusExpired, plan.OldStatus)
	assert.Equal(t, old.TotalFare(), plan.NewDraft.TotalFare())
	assert.Equal(t, old.Currency(), plan.NewDraft.Currency())
	assert.Equal(t, old.Note(), plan.NewDraft.Note())
	assert.Equal(t, now.Add(Validity), plan.NewDraft.ExpiryDate())
	assert.NotEqual(t, old.ID(), plan.NewDraft.ID())
}

func TestResendPlan_ResendableStatuses(t *testing.T) {
	now := time.Now().UTC()

	build := func(status Status) *Quotation {
		return Reconstruct(uuid.New(), uuid.New(), status,
			"100.00", "LKR", "", nil, now.Add(-72*time.Hour), now.Add(-24*time.Hour), 1, now, now)
	}

	for _, status := range []Status{StatusDraft, StatusSent, StatusExpired, StatusRejected} {
		_, err := ResendPlan(ResendSimple, build(status), "", "", "", now)
		assert.NoError(t, err, "status %s", status)
	}

	for _, status := range []Status{StatusAccepted, StatusResent} {
		_, err := ResendPlan(ResendSimple, build(status), "", "", "", now)
		assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err), "status %s", status)
	}
}

func TestResendPlan_UnknownMode(t *testing.T) {
	now := time.Now().UTC()
	old := newTestQuotation(t, now)

	_, err := ResendPlan(ResendMode("PARTIAL"), old, "", "", "", now)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}
