//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	groupdeskEvents "github.com/fitsair-platform/service-groupdesk/internal/events"
)

// TestRemittanceReceived_SettlesPayment verifies that when a RemittanceReceivedEvent
// is published to remittance.events, the groupdesk service picks it up, marks the
// matched payment PAID and publishes a payment.paid event of its own.
func TestRemittanceReceived_SettlesPayment(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupGroupdeskStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a confirmed request with one pending payment.
	requestID := uuid.New()
	paymentID := uuid.New()
	seedConfirmedRequestWithPendingPayment(t, infra.DB, requestID, paymentID)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish RemittanceReceivedEvent.
	evt := groupdeskEvents.RemittanceReceivedEvent{
		PaymentID:  paymentID,
		Reference:  "WIRE-20260830-0042",
		Amount:     "125000.00",
		Currency:   "LKR",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, groupdeskEvents.TopicRemittanceEvents,
		"service-remittance", groupdeskEvents.RemittanceReceived, evt)

	// Assert: payment transitions to PAID with the remittance reference recorded.
	model := waitForPaymentStatus(t, infra.DB, paymentID, "PAID", 15*time.Second)
	require.NotNil(t, model.Reference, "reference should be set")
	assert.Equal(t, "WIRE-20260830-0042", *model.Reference)
	assert.NotNil(t, model.PaidAt, "paid_at should be set")

	// Assert: PaymentPaidEvent on groupdesk.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, groupdeskEvents.TopicGroupDeskEvents,
		groupdeskEvents.PaymentPaid, 15*time.Second)

	var paid groupdeskEvents.PaymentPaidEvent
	require.NoError(t, ce.ParseData(&paid))
	assert.Equal(t, paymentID, paid.PaymentID)
	assert.Equal(t, requestID, paid.RequestID)
	assert.Equal(t, "125000.00", paid.Amount)
	assert.Equal(t, "LKR", paid.Currency)
}

// TestRemittanceReplay_IsIdempotent verifies that a replayed remittance for an
// already paid payment is swallowed without changing the stored record.
func TestRemittanceReplay_IsIdempotent(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupGroupdeskStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	requestID := uuid.New()
	paymentID := uuid.New()
	seedConfirmedRequestWithPendingPayment(t, infra.DB, requestID, paymentID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second)

	evt := groupdeskEvents.RemittanceReceivedEvent{
		PaymentID:  paymentID,
		Reference:  "WIRE-20260830-0099",
		Amount:     "125000.00",
		Currency:   "LKR",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, groupdeskEvents.TopicRemittanceEvents,
		"service-remittance", groupdeskEvents.RemittanceReceived, evt)
	first := waitForPaymentStatus(t, infra.DB, paymentID, "PAID", 15*time.Second)

	// Replay the same remittance with a different reference.
	evt.Reference = "WIRE-20260830-0100"
	publishTestEvent(t, infra.KafkaBrokers, groupdeskEvents.TopicRemittanceEvents,
		"service-remittance", groupdeskEvents.RemittanceReceived, evt)
	time.Sleep(5 * time.Second) // Give the consumer time to process the replay.

	second := waitForPaymentStatus(t, infra.DB, paymentID, "PAID", 5*time.Second)
	require.NotNil(t, second.Reference)
	assert.Equal(t, "WIRE-20260830-0099", *second.Reference, "replay must not overwrite the reference")
	assert.Equal(t, first.Version, second.Version, "replay must not bump the version")
}
