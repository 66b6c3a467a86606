package app

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/messaging/kafka"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

// devJWTSecret подставляется только для memory-хранилища, чтобы сервис стартовал без настройки.
const devJWTSecret = "shop-dev-secret"

// Config описывает настройки запуска сервиса.
type Config struct {
	HTTPAddr       string
	MetricsAddr    string
	GRPCHealthAddr string

	StorageDriver string
	PostgresDSN   string
	SQLitePath    string
	AutoMigrate   bool

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	KafkaBrokers  string
	KafkaTopic    string
	KafkaDLQTopic string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	// OutboxRetention — сколько хранятся отправленные сообщения до очистки.
	OutboxRetention       time.Duration
	OutboxCleanupInterval time.Duration

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска на memory-хранилище.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:              ":8080",
		MetricsAddr:           ":9090",
		GRPCHealthAddr:        ":50051",
		StorageDriver:         StorageDriverMemory,
		SQLitePath:            "shop.db",
		AutoMigrate:           true,
		JWTTTL:                auth.DefaultTokenTTL,
		BcryptCost:            bcrypt.DefaultCost,
		KafkaTopic:            kafka.TopicShopEvents,
		KafkaDLQTopic:         kafka.TopicDeadLetterQueue,
		OutboxPollInterval:    time.Second,
		OutboxBatchSize:       100,
		OutboxMaxAttempts:     3,
		OutboxRetryDelay:      50 * time.Millisecond,
		OutboxRetention:       24 * time.Hour,
		OutboxCleanupInterval: 10 * time.Minute,
		ShutdownTimeout:       5 * time.Second,
	}
}

// Validate проверяет обязательные параметры до открытия соединений.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory, StorageDriverPostgres, StorageDriverSQLite:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.HTTPAddr == "" {
		return errors.New("http address is required")
	}
	if c.JWTSecret == "" && c.StorageDriver != StorageDriverMemory {
		return errors.New("jwt secret is required for persistent storage")
	}
	return nil
}

func (c Config) jwtSecret() string {
	if c.JWTSecret == "" {
		return devJWTSecret
	}
	return c.JWTSecret
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return c.ShutdownTimeout
}
