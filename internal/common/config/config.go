// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Backend BackendConfig `mapstructure:"backend"`
	Email   EmailConfig   `mapstructure:"email"`
	Policy  PolicyConfig  `mapstructure:"policy"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points at the tender/CV intelligence backend.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UploadTimeout  int    `mapstructure:"upload_timeout"`  // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// EmailConfig holds settings for the transactional email provider.
// Provider selects the sender implementation: "emailjs" or "ses".
type EmailConfig struct {
	Provider string `mapstructure:"provider"`

	EmailJS struct {
		BaseURL              string `mapstructure:"base_url"`
		ServiceID            string `mapstructure:"service_id"`
		ValidationTemplateID string `mapstructure:"validation_template_id"`
		RejectionTemplateID  string `mapstructure:"rejection_template_id"`
		APIKey               string `mapstructure:"api_key"`
		Timeout              int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"emailjs"`

	SES struct {
		Region    string `mapstructure:"region"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
}

// PolicyConfig centralizes gating decisions so rendering and dispatch
// never embed their own literals.
type PolicyConfig struct {
	GateScore  int `mapstructure:"gate_score"`   // suitable/not-suitable threshold
	MaxCVBatch int `mapstructure:"max_cv_batch"` // upper bound per CV upload
}

// SessionConfig configures the session-scoped dispatch ledger store.
// The ledger lives only as long as the analysis session; the TTL keeps
// Redis from accumulating stale sessions.
type SessionConfig struct {
	Redis     RedisConfig `mapstructure:"redis"`
	LedgerTTL int         `mapstructure:"ledger_ttl"` // seconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// TemplateID returns the configured template for the given email kind.
func (e EmailConfig) TemplateID(validation bool) string {
	if validation {
		return e.EmailJS.ValidationTemplateID
	}
	return e.EmailJS.RejectionTemplateID
}

// AnalyzeURL returns the full analyze endpoint URL.
func (b BackendConfig) AnalyzeURL() string {
	return fmt.Sprintf("%s/api/intelligence/analyze", b.BaseURL)
}

// UploadTenderURL returns the full tender upload endpoint URL.
func (b BackendConfig) UploadTenderURL() string {
	return fmt.Sprintf("%s/api/upload-tender", b.BaseURL)
}

// UploadCVsURL returns the full CV batch upload endpoint URL.
func (b BackendConfig) UploadCVsURL() string {
	return fmt.Sprintf("%s/api/upload-cvs", b.BaseURL)
}
