package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

func TestNew(t *testing.T) {
	u, err := New("rc.silva", "s3cret-pass", RoleRouteController)
	require.NoError(t, err)

	assert.Equal(t, "rc.silva", u.Username())
	assert.Equal(t, RoleRouteController, u.Role())
	assert.True(t, u.Enabled())
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash())
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "s3cret-pass", RoleAdmin)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = New("rc.silva", "short", RoleAdmin)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = New("rc.silva", "s3cret-pass", Role("SUPERVISOR"))
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCheckPassword(t *testing.T) {
	u, err := New("desk.amara", "correct-horse", RoleGroupDesk)
	require.NoError(t, err)

	assert.True(t, u.CheckPassword("correct-horse"))
	assert.False(t, u.CheckPassword("wrong-horse"))
}

func TestResetPassword(t *testing.T) {
	u, err := New("desk.amara", "original-pass", RoleGroupDesk)
	require.NoError(t, err)

	require.NoError(t, u.ResetPassword("replacement-pass"))
	assert.False(t, u.CheckPassword("original-pass"))
	assert.True(t, u.CheckPassword("replacement-pass"))

	err = u.ResetPassword("tiny")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCanQuoteFor(t *testing.T) {
	rc, err := New("rc.silva", "s3cret-pass", RoleRouteController)
	require.NoError(t, err)
	assert.True(t, rc.CanQuoteFor())

	rc.SetEnabled(false)
	assert.False(t, rc.CanQuoteFor())

	desk, err := New("desk.amara", "s3cret-pass", RoleGroupDesk)
	require.NoError(t, err)
	assert.False(t, desk.CanQuoteFor())
}
