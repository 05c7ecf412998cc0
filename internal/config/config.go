package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	DBPath string `yaml:"db_path"`

	ClassifierDebounceMillis   int `yaml:"classifier_debounce_millis"`
	ClassifyTimeoutSeconds     int `yaml:"classify_timeout_seconds"`
	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	SlackBotToken       string `yaml:"slack_bot_token"`
	EscalationChannelID string `yaml:"escalation_channel_id"`
	EscalationSchedule  string `yaml:"escalation_schedule"`

	Timezone string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

// LoadConfig reads config.yaml (or $CONFIG_PATH), applies env-var
// overrides, fills defaults and validates. Invalid configuration is
// fatal: the process must not come up half-configured.
func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.AnthropicModel, "ANTHROPIC_MODEL")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.ClassifierDebounceMillis, "CLASSIFIER_DEBOUNCE_MILLIS")
	envOverrideInt(&cfg.ClassifyTimeoutSeconds, "CLASSIFY_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.EscalationChannelID, "ESCALATION_CHANNEL_ID")
	envOverride(&cfg.EscalationSchedule, "ESCALATION_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "./grievancedesk.db"
	}
	if cfg.ClassifierDebounceMillis == 0 {
		cfg.ClassifierDebounceMillis = 1500
	}
	if cfg.ClassifyTimeoutSeconds == 0 {
		cfg.ClassifyTimeoutSeconds = 30
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = 30
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatalf("Required config 'anthropic_api_key' is not set (via config.yaml or env var)")
	}
	if cfg.ClassifierDebounceMillis < 200 {
		log.Fatalf("invalid classifier_debounce_millis '%d': must be >= 200", cfg.ClassifierDebounceMillis)
	}
	if cfg.ClassifyTimeoutSeconds < 5 {
		log.Fatalf("invalid classify_timeout_seconds '%d': must be >= 5", cfg.ClassifyTimeoutSeconds)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.EscalationSchedule != "" && cfg.SlackBotToken == "" {
		log.Fatalf("escalation_schedule is set but slack_bot_token is not")
	}
	if cfg.SlackBotToken != "" && cfg.EscalationChannelID == "" {
		log.Fatalf("slack_bot_token is set but escalation_channel_id is not")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
		cfg.Timezone = time.Local.String()
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

func (c Config) Debounce() time.Duration {
	return time.Duration(c.ClassifierDebounceMillis) * time.Millisecond
}

func (c Config) ClassifyTimeout() time.Duration {
	return time.Duration(c.ClassifyTimeoutSeconds) * time.Second
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.EscalationChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
