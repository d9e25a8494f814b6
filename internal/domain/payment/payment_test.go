package payment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

func newTestPayment(t *testing.T, due time.Time) *Payment {
	t.Helper()
	p, err := New(uuid.New(), "62500.00", "LKR", due)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	due := time.Now().UTC().Add(7 * 24 * time.Hour)
	p := newTestPayment(t, due)

	assert.Equal(t, StatusPending, p.Status())
	assert.Equal(t, "62500.00", p.Amount())
	assert.Equal(t, due, p.DueDate())
	assert.Nil(t, p.PaidAt())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(uuid.Nil, "100.00", "LKR", time.Now())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = New(uuid.New(), "", "LKR", time.Now())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestMarkPaid(t *testing.T) {
	now := time.Now().UTC()
	p := newTestPayment(t, now.Add(24*time.Hour))

	require.NoError(t, p.MarkPaid("WIRE-20260901-0042", now))
	assert.Equal(t, StatusPaid, p.Status())
	require.NotNil(t, p.Reference())
	assert.Equal(t, "WIRE-20260901-0042", *p.Reference())
	require.NotNil(t, p.PaidAt())
	assert.Equal(t, now, *p.PaidAt())
}

func TestMarkPaid_Repeat(t *testing.T) {
	now := time.Now().UTC()
	p := newTestPayment(t, now.Add(24*time.Hour))
	require.NoError(t, p.MarkPaid("", now))

	err := p.MarkPaid("WIRE-2", now)
	assert.Equal(t, shared.KindAlreadyPaid, shared.KindOf(err))
}

func TestMarkPaid_AllowedPastDueDate(t *testing.T) {
	now := time.Now().UTC()
	p := newTestPayment(t, now.Add(-48*time.Hour))

	require.NoError(t, p.MarkPaid("", now))
	assert.Equal(t, StatusPaid, p.Status())
}

func TestEffectiveStatus_OverdueProjection(t *testing.T) {
	now := time.Now().UTC()
	p := newTestPayment(t, now.Add(-time.Hour))

	assert.Equal(t, StatusOverdue, p.EffectiveStatus(now))
	// Stored status is untouched.
	assert.Equal(t, StatusPending, p.Status())

	assert.Equal(t, StatusPending, p.EffectiveStatus(now.Add(-2*time.Hour)))
}

func TestEffectiveStatus_PaidNeverProjectsOverdue(t *testing.T) {
	now := time.Now().UTC()
	p := newTestPayment(t, now.Add(-time.Hour))
	require.NoError(t, p.MarkPaid("", now))

	assert.Equal(t, StatusPaid, p.EffectiveStatus(now.Add(72*time.Hour)))
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusPaid.IsValid())
	// Derived only, never stored.
	assert.False(t, StatusOverdue.IsValid())
}
