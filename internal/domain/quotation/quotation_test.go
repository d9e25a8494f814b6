package quotation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

func newTestQuotation(t *testing.T, now time.Time) *Quotation {
	t.Helper()
	q, err := New(uuid.New(), "125000.00", "LKR", "group of 24", now)
	require.NoError(t, err)
	return q
}

func TestNew_ExpiryIsExactlyFortyEightHours(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	q := newTestQuotation(t, now)

	assert.Equal(t, StatusDraft, q.Status())
	assert.Equal(t, now, q.CreatedDate())
	assert.Equal(t, now.Add(48*time.Hour), q.ExpiryDate())
}

func TestNew_Validation(t *testing.T) {
	now := time.Now().UTC()

	_, err := New(uuid.Nil, "100.00", "LKR", "", now)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = New(uuid.New(), "", "LKR", "", now)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = New(uuid.New(), "100.00", "", "", now)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestSend(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)

	require.NoError(t, q.Send(now))
	assert.Equal(t, StatusSent, q.Status())

	// Already sent.
	err := q.Send(now)
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestSend_ExpiredDraft(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)

	err := q.Send(now.Add(Validity + time.Minute))
	assert.Equal(t, shared.KindExpired, shared.KindOf(err))
}

func TestAccept(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)
	require.NoError(t, q.Send(now))

	require.NoError(t, q.Accept("desk.amara", now.Add(time.Hour)))
	assert.Equal(t, StatusAccepted, q.Status())
	require.NotNil(t, q.ApprovedBy())
	assert.Equal(t, "desk.amara", *q.ApprovedBy())
}

func TestAccept_RequiresSent(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)

	err := q.Accept("desk.amara", now)
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestAccept_ExpiredOffer(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)
	require.NoError(t, q.Send(now))

	err := q.Accept("desk.amara", now.Add(Validity+time.Second))
	assert.Equal(t, shared.KindExpired, shared.KindOf(err))
}

func TestEffectiveStatus_ProjectsExpiryWithoutMutating(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)
	require.NoError(t, q.Send(now))

	past := now.Add(Validity + time.Hour)
	assert.Equal(t, StatusExpired, q.EffectiveStatus(past))
	// Stored status is untouched.
	assert.Equal(t, StatusSent, q.Status())

	assert.Equal(t, StatusSent, q.EffectiveStatus(now.Add(time.Hour)))
}

func TestEffectiveStatus_FinalStatesNeverReproject(t *testing.T) {
	now := time.Now().UTC()

	q := newTestQuotation(t, now)
	require.NoError(t, q.Send(now))
	require.NoError(t, q.Accept("desk.amara", now))
	assert.Equal(t, StatusAccepted, q.EffectiveStatus(now.Add(Validity+time.Hour)))

	q = newTestQuotation(t, now)
	require.NoError(t, q.Reject())
	assert.Equal(t, StatusRejected, q.EffectiveStatus(now.Add(Validity+time.Hour)))
}

func TestMarkExpired(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)
	require.NoError(t, q.Send(now))

	require.NoError(t, q.MarkExpired())
	assert.Equal(t, StatusExpired, q.Status())

	// Terminal.
	err := q.MarkExpired()
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestOverrideStatus_HonorsTransitionTable(t *testing.T) {
	now := time.Now().UTC()
	q := newTestQuotation(t, now)

	require.NoError(t, q.OverrideStatus(StatusResent, "admin"))
	assert.Equal(t, StatusResent, q.Status())
	require.NotNil(t, q.ApprovedBy())
	assert.Equal(t, "admin", *q.ApprovedBy())

	err := q.OverrideStatus(StatusSent, "admin")
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusDraft.IsActive())
	assert.True(t, StatusSent.IsActive())
	assert.False(t, StatusAccepted.IsActive())
	assert.False(t, StatusRejected.IsActive())
	assert.False(t, StatusExpired.IsActive())
	assert.False(t, StatusResent.IsActive())
}
