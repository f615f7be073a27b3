package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: 0123456789abcdef\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 8080 || c.Simulation.TickInterval != 800*time.Millisecond {
		t.Fatalf("defaults not applied: port=%d tick=%v", c.Server.Port, c.Simulation.TickInterval)
	}
	if c.Lifecycle.BuyDelay != 2500*time.Millisecond || c.Lifecycle.SellDelay != 1500*time.Millisecond {
		t.Fatalf("lifecycle defaults %+v", c.Lifecycle)
	}
	if c.Feeds.LogInterval != 1200*time.Millisecond || c.Feeds.DefaultLanguage != "CN" {
		t.Fatalf("feed defaults %+v", c.Feeds)
	}
	if c.Chat.Provider != "deepseek" || !strings.HasPrefix(c.Chat.Fallback, "⚠️ Connection Error") {
		t.Fatalf("chat defaults %+v", c.Chat)
	}
	if len(c.Kafka.Brokers) != 1 || c.Kafka.Enabled {
		t.Fatalf("kafka defaults %+v", c.Kafka)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
metrics:
  enabled: false
simulation:
  tick_interval: 100ms
  seed: 42
auth:
  jwt_secret: 0123456789abcdef
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Metrics.Enabled {
		t.Fatal("metrics.enabled=false ignored")
	}
	if c.Simulation.TickInterval != 100*time.Millisecond || c.Simulation.Seed != 42 {
		t.Fatalf("simulation %+v", c.Simulation)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "environment: test\n"},
		{"short secret", "auth:\n  jwt_secret: short\n"},
		{"bad provider", "auth:\n  jwt_secret: 0123456789abcdef\nchat:\n  provider: openai\n"},
		{"anthropic without key", "auth:\n  jwt_secret: 0123456789abcdef\nchat:\n  provider: anthropic\n"},
		{"bad stock", "auth:\n  jwt_secret: 0123456789abcdef\nfeeds:\n  default_stock: TSLA\n"},
		{"kafka without brokers", "auth:\n  jwt_secret: 0123456789abcdef\nkafka:\n  enabled: true\n  brokers: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("JWT_SECRET", "env-secret-0123456789")
	t.Setenv("CHAT_API_KEY", "sk-test")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("HTTP_PORT", "9090")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Auth.JWTSecret != "env-secret-0123456789" || c.Chat.APIKey != "sk-test" {
		t.Fatalf("secrets not overridden: %+v %+v", c.Auth, c.Chat)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("kafka override %+v", c.Kafka)
	}
	if !c.Redis.Enabled || c.Redis.Addr != "redis:6379" {
		t.Fatalf("redis override %+v", c.Redis)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("port = %d", c.Server.Port)
	}
}

func TestLoadWithEnvRejectsBadPort(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret-0123456789")
	t.Setenv("HTTP_PORT", "eighty")
	if _, err := LoadWithEnv(""); err == nil {
		t.Fatal("expected error for non-numeric HTTP_PORT")
	}
}
