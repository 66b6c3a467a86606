package app

import (
	"testing"
	"time"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, warnings := ConfigFromEnv(mapLookup(nil))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected default config, got %#v", cfg)
	}
}

func TestConfigFromEnv_ValidOverrides(t *testing.T) {
	cfg, warnings := ConfigFromEnv(mapLookup(map[string]string{
		envHTTPAddr:           "localhost:8081",
		envMetricsAddr:        "localhost:9091",
		envGRPCHealthAddr:     "",
		envStorageDriver:      " SqLiTe ",
		envSQLitePath:         " /tmp/shop.db ",
		envAutoMigrate:        "off",
		envJWTSecret:          "s3cret",
		envJWTTTL:             "1h",
		envBcryptCost:         "4",
		envKafkaBrokers:       "kafka:9092",
		envKafkaTopic:         "orders",
		envKafkaDLQTopic:      "orders.dlq",
		envOutboxPollInterval: "2s",
		envOutboxBatchSize:    "42",
		envOutboxMaxAttempts:  "7",
		envOutboxRetryDelay:   "0s",
		envOutboxRetention:    "1h",
		envOutboxCleanup:      "30s",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	want := DefaultConfig()
	want.HTTPAddr = "localhost:8081"
	want.MetricsAddr = "localhost:9091"
	want.GRPCHealthAddr = ""
	want.StorageDriver = StorageDriverSQLite
	want.SQLitePath = "/tmp/shop.db"
	want.AutoMigrate = false
	want.JWTSecret = "s3cret"
	want.JWTTTL = time.Hour
	want.BcryptCost = 4
	want.KafkaBrokers = "kafka:9092"
	want.KafkaTopic = "orders"
	want.KafkaDLQTopic = "orders.dlq"
	want.OutboxPollInterval = 2 * time.Second
	want.OutboxBatchSize = 42
	want.OutboxMaxAttempts = 7
	want.OutboxRetryDelay = 0
	want.OutboxRetention = time.Hour
	want.OutboxCleanupInterval = 30 * time.Second

	if cfg != want {
		t.Fatalf("unexpected config:\n got %#v\nwant %#v", cfg, want)
	}
}

func TestConfigFromEnv_InvalidValuesFallbackToDefaults(t *testing.T) {
	cfg, warnings := ConfigFromEnv(mapLookup(map[string]string{
		envAutoMigrate:        "not-bool",
		envJWTTTL:             "0s",
		envBcryptCost:         "99",
		envOutboxPollInterval: "-1s",
		envOutboxBatchSize:    "0",
		envOutboxMaxAttempts:  "bad",
		envOutboxRetryDelay:   "invalid",
		envOutboxRetention:    "-1h",
		envOutboxCleanup:      "0s",
	}))

	if len(warnings) != 9 {
		t.Fatalf("expected 9 warnings, got %d: %v", len(warnings), warnings)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults to be kept, got %#v", cfg)
	}
}

func TestParseBool(t *testing.T) {
	trueValue, err := parseBool(" YES ")
	if err != nil || !trueValue {
		t.Fatalf("expected true, got %v (%v)", trueValue, err)
	}
	falseValue, err := parseBool("off")
	if err != nil || falseValue {
		t.Fatalf("expected false, got %v (%v)", falseValue, err)
	}
	if _, err := parseBool("sometimes"); err == nil {
		t.Fatal("expected error for invalid bool value")
	}
}

func TestParseInt(t *testing.T) {
	value, err := parseInt(" 12 ", func(v int) bool { return v > 0 }, "must be > 0")
	if err != nil || value != 12 {
		t.Fatalf("expected 12, got %d (%v)", value, err)
	}
	if _, err := parseInt("0", func(v int) bool { return v > 0 }, "must be > 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseDuration(t *testing.T) {
	value, err := parseDuration(" 250ms ", func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
	if err != nil || value != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s (%v)", value, err)
	}
	if _, err := parseDuration("-1ms", func(v time.Duration) bool { return v >= 0 }, "must be >= 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func mapLookup(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
