package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	envHTTPAddr           = "SHOP_HTTP_ADDR"
	envMetricsAddr        = "SHOP_METRICS_ADDR"
	envGRPCHealthAddr     = "SHOP_GRPC_HEALTH_ADDR"
	envStorageDriver      = "SHOP_STORAGE_DRIVER"
	envPostgresDSN        = "SHOP_POSTGRES_DSN"
	envSQLitePath         = "SHOP_SQLITE_PATH"
	envAutoMigrate        = "SHOP_AUTO_MIGRATE"
	envJWTSecret          = "SHOP_JWT_SECRET"
	envJWTTTL             = "SHOP_JWT_TTL"
	envBcryptCost         = "SHOP_BCRYPT_COST"
	envKafkaBrokers       = "SHOP_KAFKA_BROKERS"
	envKafkaTopic         = "SHOP_KAFKA_TOPIC"
	envKafkaDLQTopic      = "SHOP_KAFKA_DLQ_TOPIC"
	envOutboxPollInterval = "SHOP_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize    = "SHOP_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts  = "SHOP_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay   = "SHOP_OUTBOX_RETRY_DELAY"
	envOutboxRetention    = "SHOP_OUTBOX_RETENTION"
	envOutboxCleanup      = "SHOP_OUTBOX_CLEANUP_INTERVAL"
	EnvLogLevel           = "SHOP_LOG_LEVEL"
	EnvLogFormat          = "SHOP_LOG_FORMAT"
)

// EnvLookup совместим с os.LookupEnv.
type EnvLookup func(key string) (string, bool)

// ConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не применяются и возвращаются в виде предупреждений.
func ConfigFromEnv(lookup EnvLookup) (Config, []string) {
	cfg := DefaultConfig()
	var warnings []string
	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, raw, err))
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(envHTTPAddr, &cfg.HTTPAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envPostgresDSN, &cfg.PostgresDSN)
	str(envSQLitePath, &cfg.SQLitePath)
	str(envJWTSecret, &cfg.JWTSecret)
	str(envKafkaBrokers, &cfg.KafkaBrokers)
	str(envKafkaTopic, &cfg.KafkaTopic)
	str(envKafkaDLQTopic, &cfg.KafkaDLQTopic)

	// Пустое значение явно отключает gRPC health.
	if v, ok := lookup(envGRPCHealthAddr); ok {
		cfg.GRPCHealthAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v))
	}

	if raw, ok := lookup(envAutoMigrate); ok {
		if v, err := parseBool(raw); err != nil {
			warn(envAutoMigrate, raw, err)
		} else {
			cfg.AutoMigrate = v
		}
	}

	positive := func(v time.Duration) bool { return v > 0 }
	nonNegative := func(v time.Duration) bool { return v >= 0 }
	durations := []struct {
		key   string
		dst   *time.Duration
		valid func(time.Duration) bool
		rule  string
	}{
		{envJWTTTL, &cfg.JWTTTL, positive, "must be > 0"},
		{envOutboxPollInterval, &cfg.OutboxPollInterval, positive, "must be > 0"},
		{envOutboxRetryDelay, &cfg.OutboxRetryDelay, nonNegative, "must be >= 0"},
		{envOutboxRetention, &cfg.OutboxRetention, nonNegative, "must be >= 0"},
		{envOutboxCleanup, &cfg.OutboxCleanupInterval, positive, "must be > 0"},
	}
	for _, d := range durations {
		raw, ok := lookup(d.key)
		if !ok {
			continue
		}
		v, err := parseDuration(raw, d.valid, d.rule)
		if err != nil {
			warn(d.key, raw, err)
			continue
		}
		*d.dst = v
	}

	ints := []struct {
		key   string
		dst   *int
		valid func(int) bool
		rule  string
	}{
		{envOutboxBatchSize, &cfg.OutboxBatchSize, func(v int) bool { return v > 0 }, "must be > 0"},
		{envOutboxMaxAttempts, &cfg.OutboxMaxAttempts, func(v int) bool { return v > 0 }, "must be > 0"},
		{envBcryptCost, &cfg.BcryptCost, func(v int) bool { return v >= bcrypt.MinCost && v <= bcrypt.MaxCost }, "must be within bcrypt cost range"},
	}
	for _, i := range ints {
		raw, ok := lookup(i.key)
		if !ok {
			continue
		}
		v, err := parseInt(raw, i.valid, i.rule)
		if err != nil {
			warn(i.key, raw, err)
			continue
		}
		*i.dst = v
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, errors.New("expected boolean")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("expected integer")
	}
	if !valid(v) {
		return 0, errors.New(rule)
	}
	return v, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("expected duration")
	}
	if !valid(v) {
		return 0, errors.New(rule)
	}
	return v, nil
}
