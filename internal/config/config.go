package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/lodgical/service-reservation/internal/platform/database"
)

// KafkaConfig holds broker addresses and the consumer-group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// PricingConfig tunes the in-process pricing oracle.
type PricingConfig struct {
	NightlyRateCents int64
	FeePercent       int64
	TaxPercent       int64
	Currency         string
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port   string
	AppEnv string

	DBConfig    database.PostgresConfig
	KafkaConfig KafkaConfig
	Pricing     PricingConfig

	// PendingHoldTTL bounds how long a pending booking keeps its calendar
	// block before the hold lapses. Zero means hold indefinitely.
	PendingHoldTTL time.Duration
}

// Load reads configuration from RESERVATION_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RESERVATION")
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8084")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reservations")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "lodgical.")
	v.SetDefault("PENDING_HOLD_TTL", "0s")
	v.SetDefault("PRICING_NIGHTLY_RATE_CENTS", 12000)
	v.SetDefault("PRICING_FEE_PERCENT", 10)
	v.SetDefault("PRICING_TAX_PERCENT", 8)
	v.SetDefault("PRICING_CURRENCY", "USD")

	holdTTL, err := time.ParseDuration(v.GetString("PENDING_HOLD_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid PENDING_HOLD_TTL: %w", err)
	}

	return &ServiceConfig{
		Port:   ":" + strings.TrimPrefix(v.GetString("SERVICE_PORT"), ":"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Pricing: PricingConfig{
			NightlyRateCents: v.GetInt64("PRICING_NIGHTLY_RATE_CENTS"),
			FeePercent:       v.GetInt64("PRICING_FEE_PERCENT"),
			TaxPercent:       v.GetInt64("PRICING_TAX_PERCENT"),
			Currency:         v.GetString("PRICING_CURRENCY"),
		},
		PendingHoldTTL: holdTTL,
	}, nil
}
