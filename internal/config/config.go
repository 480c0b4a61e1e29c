// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :3001).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// ServerBaseURL is the externally visible base URL reported by /health.
	// When empty it is derived from the incoming request.
	ServerBaseURL string `mapstructure:"SERVER_BASE_URL"`
	// DefaultCurrency is the currency code applied to records that carry none (e.g. INR, GBP).
	DefaultCurrency string `mapstructure:"DEFAULT_CURRENCY"`

	// SheetID is the Google Sheets spreadsheet ID. The Sheets store is used only when this and credentials are set.
	SheetID string `mapstructure:"SHEET_ID"`
	// GoogleCredsPath is the path to a service-account JSON key file for Sheets access.
	GoogleCredsPath string `mapstructure:"GOOGLE_CREDS_PATH"`
	// GoogleCredsJSON is the service-account key JSON itself; preferred over the path on serverless platforms.
	GoogleCredsJSON string `mapstructure:"GOOGLE_CREDS_JSON"`
	// DatabaseURL is the Postgres DSN for the Postgres store; empty disables it.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// CSVPath is the flat-file store location (default logs/payments.csv). Always available as fallback.
	CSVPath string `mapstructure:"CSV_PATH"`

	// TwilioAccountSID, TwilioAuthToken, TwilioFromNumber, TwilioToNumber configure WhatsApp delivery.
	// When any is empty the sender runs in mock mode.
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`
	TwilioToNumber   string `mapstructure:"TWILIO_TO_NUMBER"`

	// NotifyKafkaBrokers is a comma-separated broker list. When set, the server enqueues
	// notifications to Kafka and cmd/worker delivers them.
	NotifyKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// NotifyKafkaTopic is the notification topic (default payment-notifications).
	NotifyKafkaTopic string `mapstructure:"NOTIFY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the delivery worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// MonitorIntervalSeconds is how often the sheet monitor polls the store (default 30).
	MonitorIntervalSeconds int `mapstructure:"SHEET_MONITOR_INTERVAL"`
	// EnableMonitoring turns the in-process sheet monitor on or off (default true).
	EnableMonitoring bool `mapstructure:"ENABLE_SHEET_MONITORING"`

	// DefaultOrgID and DefaultOrgName are applied when a webhook carries no organization info.
	DefaultOrgID   string `mapstructure:"DEFAULT_ORG_ID"`
	DefaultOrgName string `mapstructure:"DEFAULT_ORG_NAME"`
	// OrgDirectory maps organization ids to names, formatted "id1:Name One,id2:Name Two".
	// Used in both directions: id known looks up the name, name known looks up the id.
	OrgDirectory string `mapstructure:"ORG_DIRECTORY"`

	// OTLPEndpoint enables OTel export when set (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints (standard OTEL_EXPORTER_OTLP_INSECURE behavior).
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3001")
	v.SetDefault("SERVER_BASE_URL", "")
	v.SetDefault("DEFAULT_CURRENCY", "INR")
	v.SetDefault("SHEET_ID", "")
	v.SetDefault("GOOGLE_CREDS_PATH", "")
	v.SetDefault("GOOGLE_CREDS_JSON", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CSV_PATH", "logs/payments.csv")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_FROM_NUMBER", "")
	v.SetDefault("TWILIO_TO_NUMBER", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("NOTIFY_KAFKA_TOPIC", "payment-notifications")
	v.SetDefault("KAFKA_GROUP_ID", "payment-notify-worker")
	v.SetDefault("SHEET_MONITOR_INTERVAL", 30)
	v.SetDefault("ENABLE_SHEET_MONITORING", true)
	v.SetDefault("DEFAULT_ORG_ID", "")
	v.SetDefault("DEFAULT_ORG_NAME", "")
	v.SetDefault("ORG_DIRECTORY", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "INR"
	}
	if cfg.MonitorIntervalSeconds <= 0 {
		cfg.MonitorIntervalSeconds = 30
	}

	return &cfg, nil
}

// MonitorInterval returns the sheet-monitor poll interval as a duration.
func (c *Config) MonitorInterval() time.Duration {
	if c == nil || c.MonitorIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.MonitorIntervalSeconds) * time.Second
}

// SheetsConfigured reports whether the Google Sheets store can be used.
func (c *Config) SheetsConfigured() bool {
	return c != nil && c.SheetID != "" && (c.GoogleCredsPath != "" || c.GoogleCredsJSON != "")
}

// TwilioConfigured reports whether real WhatsApp delivery is possible; otherwise the sender mocks.
func (c *Config) TwilioConfigured() bool {
	return c != nil && c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		c.TwilioFromNumber != "" && c.TwilioToNumber != ""
}

// KafkaBrokersList returns broker addresses from the comma-separated config.
// Used to decide if queued delivery is enabled (non-empty list) and to create the writer/reader.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.NotifyKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.NotifyKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// OrganizationDirectory parses ORG_DIRECTORY ("id:Name,id2:Name Two") into an id→name map.
// Malformed entries are skipped.
func (c *Config) OrganizationDirectory() map[string]string {
	if c == nil || c.OrgDirectory == "" {
		return nil
	}
	dir := make(map[string]string)
	for _, entry := range strings.Split(c.OrgDirectory, ",") {
		id, name, ok := strings.Cut(entry, ":")
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if !ok || id == "" || name == "" {
			continue
		}
		dir[id] = name
	}
	if len(dir) == 0 {
		return nil
	}
	return dir
}
