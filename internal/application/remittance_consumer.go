package application

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/events"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/kafka"
)

// RemittanceConsumer listens to settled bank remittances and marks the matched
// payments paid.
type RemittanceConsumer struct {
	consumer *kafka.Consumer
	payments *PaymentService
	logger   *zap.Logger
}

// NewRemittanceConsumer creates a new RemittanceConsumer.
func NewRemittanceConsumer(
	brokers []string,
	groupID string,
	payments *PaymentService,
	logger *zap.Logger,
) *RemittanceConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicRemittanceEvents, logger)
	return &RemittanceConsumer{
		consumer: consumer,
		payments: payments,
		logger:   logger,
	}
}

// Start begins consuming remittance events. This blocks until the context is
// cancelled.
func (c *RemittanceConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *RemittanceConsumer) Close() error {
	return c.consumer.Close()
}

func (c *RemittanceConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from remittance topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.RemittanceReceived:
		return c.handleRemittanceReceived(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled remittance event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *RemittanceConsumer) handleRemittanceReceived(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.RemittanceReceivedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse RemittanceReceivedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing remittance",
		zap.String("payment_id", evt.PaymentID.String()),
		zap.String("reference", evt.Reference),
	)

	_, err := c.payments.MarkPaid(ctx, auth.System(), evt.PaymentID, evt.Reference)
	if err != nil {
		// A replayed remittance hits the idempotency guard; that is settled
		// state, not a failure.
		if shared.IsKind(err, shared.KindAlreadyPaid) {
			c.logger.Info("remittance already applied",
				zap.String("payment_id", evt.PaymentID.String()),
			)
			return nil
		}
		c.logger.Error("failed to mark payment paid from remittance",
			zap.String("payment_id", evt.PaymentID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("payment settled from remittance",
		zap.String("payment_id", evt.PaymentID.String()),
	)
	return nil
}
