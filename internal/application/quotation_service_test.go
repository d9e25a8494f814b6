package application

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsair-platform/service-groupdesk/internal/config"
)

func TestSplitAmount(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{"single part", "125000.00", 1, []string{"125000.00"}},
		{"even split", "300.00", 3, []string{"100.00", "100.00", "100.00"}},
		{"remainder absorbed by last", "100.00", 3, []string{"33.33", "33.33", "33.34"}},
		{"two installments", "62501", 2, []string{"31250.50", "31250.50"}},
		{"non-numeric falls back whole", "TBD", 4, []string{"TBD"}},
		{"zero parts treated as one", "50.00", 0, []string{"50.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitAmount(tt.total, tt.n))
		})
	}
}

func TestBuildPaymentSchedule(t *testing.T) {
	svc := &QuotationService{
		policy: config.WorkflowConfig{
			PaymentInstallments: 2,
			PaymentDueOffsets:   []time.Duration{3 * 24 * time.Hour, 14 * 24 * time.Hour},
		},
	}

	requestID := uuid.New()
	acceptedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	payments, err := svc.buildPaymentSchedule(requestID, "100000.00", "LKR", acceptedAt)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.Equal(t, "50000.00", payments[0].Amount())
	assert.Equal(t, "50000.00", payments[1].Amount())
	assert.Equal(t, acceptedAt.Add(3*24*time.Hour), payments[0].DueDate())
	assert.Equal(t, acceptedAt.Add(14*24*time.Hour), payments[1].DueDate())
	for _, p := range payments {
		assert.Equal(t, requestID, p.GroupRequestID())
		assert.Equal(t, "LKR", p.Currency())
	}
}

func TestBuildPaymentSchedule_DefaultOffset(t *testing.T) {
	svc := &QuotationService{policy: config.WorkflowConfig{PaymentInstallments: 1}}

	acceptedAt := time.Now().UTC()
	payments, err := svc.buildPaymentSchedule(uuid.New(), "75000.00", "LKR", acceptedAt)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "75000.00", payments[0].Amount())
	assert.Equal(t, acceptedAt.Add(7*24*time.Hour), payments[0].DueDate())
}

func TestBuildPaymentSchedule_MoreInstallmentsThanOffsets(t *testing.T) {
	svc := &QuotationService{
		policy: config.WorkflowConfig{
			PaymentInstallments: 3,
			PaymentDueOffsets:   []time.Duration{24 * time.Hour},
		},
	}

	acceptedAt := time.Now().UTC()
	payments, err := svc.buildPaymentSchedule(uuid.New(), "90.00", "LKR", acceptedAt)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	// Later installments reuse the last configured offset.
	assert.Equal(t, acceptedAt.Add(24*time.Hour), payments[1].DueDate())
	assert.Equal(t, acceptedAt.Add(24*time.Hour), payments[2].DueDate())
}
