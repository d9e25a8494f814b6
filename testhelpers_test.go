//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/fitsair-platform/service-groupdesk/internal/application"
	groupdeskEvents "github.com/fitsair-platform/service-groupdesk/internal/events"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/kafka"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/storage"
	"github.com/fitsair-platform/service-groupdesk/internal/repository"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// groupdeskStack holds wired-up service components.
type groupdeskStack struct {
	Payments        *application.PaymentService
	Consumer        *application.RemittanceConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_groupdesk",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_groupdesk sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.GroupRequestModel{},
		&repository.QuotationModel{},
		&repository.PaymentModel{},
		&repository.AttachmentModel{},
		&repository.UserModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers,
		groupdeskEvents.TopicGroupDeskEvents,
		groupdeskEvents.TopicNotificationEvents,
		groupdeskEvents.TopicRemittanceEvents,
	)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupGroupdeskStack wires up the payment service and remittance consumer.
func setupGroupdeskStack(t *testing.T, db *gorm.DB, brokers []string) *groupdeskStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	paymentRepo := repository.NewGormPaymentRepository(db)
	attachmentRepo := repository.NewGormAttachmentRepository(db)
	blobStore, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	producer := kafka.NewProducer(brokers, logger)
	paymentSvc := application.NewPaymentService(paymentRepo, attachmentRepo, blobStore, producer, logger)

	groupID := fmt.Sprintf("test-groupdesk-%s", uuid.New().String()[:8])
	consumer := application.NewRemittanceConsumer(brokers, groupID, paymentSvc, logger)

	return &groupdeskStack{
		Payments:        paymentSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedConfirmedRequestWithPendingPayment inserts a CONFIRMED group request and
// one PENDING payment against it.
func seedConfirmedRequestWithPendingPayment(t *testing.T, db *gorm.DB, requestID, paymentID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	fare := "125000.00"

	contact, _ := json.Marshal(map[string]interface{}{
		"first_name": "Nuwan",
		"last_name":  "Perera",
		"email":      "nuwan@example.com",
	})
	segments, _ := json.Marshal([]map[string]interface{}{
		{"from": "DAC", "to": "CMB", "date": "2026-09-15"},
		{"from": "CMB", "to": "KUL", "date": "2026-09-15"},
	})

	request := repository.GroupRequestModel{
		ID:            requestID,
		Status:        "CONFIRMED",
		Contact:       contact,
		AgentName:     "Island Tours",
		FromAirport:   "DAC",
		ToAirport:     "KUL",
		Routing:       "ONE_WAY",
		Segments:      segments,
		PaxAdult:      20,
		PaxChild:      4,
		RequestDate:   "2026-08-20",
		DepartureDate: "2026-09-15",
		Category:      "AGENT",
		PosCode:       "CMB",
		Currency:      "LKR",
		QuotedFare:    &fare,
		Version:       4,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&request).Error, "failed to seed group request")

	pmt := repository.PaymentModel{
		ID:             paymentID,
		GroupRequestID: requestID,
		Status:         "PENDING",
		Amount:         fare,
		Currency:       "LKR",
		DueDate:        now.Add(7 * 24 * time.Hour),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&pmt).Error, "failed to seed payment")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPaymentStatus polls the payments table until the status matches.
func waitForPaymentStatus(t *testing.T, db *gorm.DB, paymentID uuid.UUID, expectedStatus string, timeout time.Duration) repository.PaymentModel {
	t.Helper()
	var result repository.PaymentModel
	require.Eventually(t, func() bool {
		var model repository.PaymentModel
		err := db.Where("id = ?", paymentID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "payment did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
