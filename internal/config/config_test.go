package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setMinimalValidConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	setMinimalValidConfigEnv(t)

	cfg := LoadConfig()

	if cfg.AnthropicAPIKey != "sk-test" {
		t.Fatalf("unexpected API key: %q", cfg.AnthropicAPIKey)
	}
	if cfg.DBPath != "./grievancedesk.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.ClassifierDebounceMillis != 1500 {
		t.Fatalf("unexpected debounce default: %d", cfg.ClassifierDebounceMillis)
	}
	if cfg.Debounce() != 1500*time.Millisecond {
		t.Fatalf("unexpected debounce duration: %s", cfg.Debounce())
	}
	if cfg.ClassifyTimeoutSeconds != 30 {
		t.Fatalf("unexpected classify timeout default: %d", cfg.ClassifyTimeoutSeconds)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.SlackConfigured() {
		t.Fatal("slack should not be configured by default")
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
anthropic_api_key: "yaml-anthropic"
anthropic_model: "claude-test"
db_path: "/tmp/yaml.db"
classifier_debounce_millis: 2000
classify_timeout_seconds: 10
slack_bot_token: "xoxb-yaml"
escalation_channel_id: "C123"
escalation_schedule: "*/15 * * * *"
timezone: "UTC"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	// Empty env vars do not override; an ambient key must not leak in.
	t.Setenv("ANTHROPIC_API_KEY", "")
	// Env vars win over YAML values.
	t.Setenv("DB_PATH", "/tmp/env.db")

	cfg := LoadConfig()

	if cfg.AnthropicAPIKey != "yaml-anthropic" {
		t.Fatalf("unexpected API key: %q", cfg.AnthropicAPIKey)
	}
	if cfg.AnthropicModel != "claude-test" {
		t.Fatalf("unexpected model: %q", cfg.AnthropicModel)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("env override lost: %q", cfg.DBPath)
	}
	if cfg.ClassifierDebounceMillis != 2000 {
		t.Fatalf("unexpected debounce: %d", cfg.ClassifierDebounceMillis)
	}
	if !cfg.SlackConfigured() {
		t.Fatal("slack should be configured")
	}
	if cfg.EscalationSchedule != "*/15 * * * *" {
		t.Fatalf("unexpected schedule: %q", cfg.EscalationSchedule)
	}
}
