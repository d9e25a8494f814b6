package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// WorkflowConfig holds booking-workflow policy knobs that are deliberately not
// hard-coded in the domain layer.
type WorkflowConfig struct {
	// CancellableFrom lists the group request statuses a cancel is allowed
	// from. Empty means every non-terminal status.
	CancellableFrom []string

	// RequirePaidBeforeTicketing gates mark-ticketed on full payment.
	RequirePaidBeforeTicketing bool

	// PaymentInstallments is the number of payments created when a quotation
	// is accepted.
	PaymentInstallments int

	// PaymentDueOffsets are due-date offsets from acceptance, one per
	// installment. Extra installments fall back to the last offset.
	PaymentDueOffsets []time.Duration

	// ExpirySweepInterval is how often the background sweep persists EXPIRED
	// quotations. Zero disables the sweep.
	ExpirySweepInterval time.Duration
}

// ServiceConfig holds all configuration for the group desk service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	CORSOrigins    []string
	AttachmentDir  string
	DBConfig       DatabaseConfig
	JWTConfig      JWTConfig
	KafkaConfig    KafkaConfig
	WorkflowConfig WorkflowConfig
}

// Load reads configuration from GROUPDESK_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("GROUPDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("ATTACHMENT_DIR", "/var/lib/groupdesk/attachments")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "groupdesk")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "groupdesk")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TOKEN_TTL", "8h")

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "fitsair.")

	v.SetDefault("WORKFLOW_CANCELLABLE_FROM", "")
	v.SetDefault("WORKFLOW_REQUIRE_PAID_BEFORE_TICKETING", false)
	v.SetDefault("WORKFLOW_PAYMENT_INSTALLMENTS", 1)
	v.SetDefault("WORKFLOW_PAYMENT_DUE_OFFSETS", "168h")
	v.SetDefault("WORKFLOW_EXPIRY_SWEEP_INTERVAL", "15m")

	appEnv := v.GetString("APP_ENV")
	secret := v.GetString("JWT_SECRET")
	if secret == "" {
		if appEnv != "development" {
			return nil, fmt.Errorf("GROUPDESK_JWT_SECRET is required outside development")
		}
		secret = "dev-only-secret"
	}

	offsets, err := parseDurations(v.GetString("WORKFLOW_PAYMENT_DUE_OFFSETS"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKFLOW_PAYMENT_DUE_OFFSETS: %w", err)
	}

	return &ServiceConfig{
		Port:          ":" + v.GetString("SERVICE_PORT"),
		AppEnv:        appEnv,
		CORSOrigins:   splitNonEmpty(v.GetString("CORS_ORIGINS")),
		AttachmentDir: v.GetString("ATTACHMENT_DIR"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:   secret,
			TokenTTL: v.GetDuration("JWT_TOKEN_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitNonEmpty(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		WorkflowConfig: WorkflowConfig{
			CancellableFrom:            splitNonEmpty(v.GetString("WORKFLOW_CANCELLABLE_FROM")),
			RequirePaidBeforeTicketing: v.GetBool("WORKFLOW_REQUIRE_PAID_BEFORE_TICKETING"),
			PaymentInstallments:        v.GetInt("WORKFLOW_PAYMENT_INSTALLMENTS"),
			PaymentDueOffsets:          offsets,
			ExpirySweepInterval:        v.GetDuration("WORKFLOW_EXPIRY_SWEEP_INTERVAL"),
		},
	}, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurations(s string) ([]time.Duration, error) {
	parts := splitNonEmpty(s)
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
