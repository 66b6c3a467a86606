package app

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.GRPCHealthAddr != ":50051" {
		t.Errorf("expected GRPCHealthAddr :50051, got %s", cfg.GRPCHealthAddr)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Errorf("expected StorageDriver %s, got %s", StorageDriverMemory, cfg.StorageDriver)
	}
	if !cfg.AutoMigrate {
		t.Error("expected AutoMigrate to be true")
	}
	if cfg.JWTTTL != 15*time.Minute {
		t.Errorf("expected JWTTTL 15m, got %s", cfg.JWTTTL)
	}
	if cfg.BcryptCost != bcrypt.DefaultCost {
		t.Errorf("expected default bcrypt cost, got %d", cfg.BcryptCost)
	}
	if cfg.KafkaTopic != "shop.events" || cfg.KafkaDLQTopic != "shop.dlq" {
		t.Errorf("unexpected kafka topics: %s / %s", cfg.KafkaTopic, cfg.KafkaDLQTopic)
	}
	if cfg.OutboxPollInterval <= 0 || cfg.OutboxBatchSize <= 0 || cfg.OutboxMaxAttempts <= 0 {
		t.Errorf("outbox defaults must be positive: %+v", cfg)
	}
	if cfg.OutboxRetryDelay < 0 {
		t.Error("expected OutboxRetryDelay to be >= 0")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default memory config", mutate: func(*Config) {}},
		{name: "sqlite with secret", mutate: func(c *Config) {
			c.StorageDriver = StorageDriverSQLite
			c.JWTSecret = "s3cret"
		}},
		{name: "postgres without secret", mutate: func(c *Config) {
			c.StorageDriver = StorageDriverPostgres
		}, wantErr: "jwt secret"},
		{name: "unknown driver", mutate: func(c *Config) {
			c.StorageDriver = "mongo"
		}, wantErr: "unsupported storage driver"},
		{name: "empty http addr", mutate: func(c *Config) {
			c.HTTPAddr = ""
		}, wantErr: "http address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_JWTSecretFallback(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.jwtSecret() != devJWTSecret {
		t.Fatalf("expected dev secret, got %q", cfg.jwtSecret())
	}
	cfg.JWTSecret = "prod"
	if cfg.jwtSecret() != "prod" {
		t.Fatalf("expected configured secret, got %q", cfg.jwtSecret())
	}
}

func TestConfig_ShutdownTimeoutFallback(t *testing.T) {
	if got := (Config{}).shutdownTimeout(); got != 5*time.Second {
		t.Fatalf("expected 5s fallback, got %s", got)
	}
	if got := (Config{ShutdownTimeout: time.Second}).shutdownTimeout(); got != time.Second {
		t.Fatalf("expected configured timeout, got %s", got)
	}
}
