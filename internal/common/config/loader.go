// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like EMAIL_JS_SERVICE_ID
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig applies the environment variable surface the
// original deployment used, for values still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Email.EmailJS.ServiceID == "" {
		if val := os.Getenv("EMAIL_JS_SERVICE_ID"); val != "" {
			cfg.Email.EmailJS.ServiceID = val
		}
	}
	if cfg.Email.EmailJS.ValidationTemplateID == "" {
		if val := os.Getenv("EMAIL_JS_TEMPLATE_VALIDATION"); val != "" {
			cfg.Email.EmailJS.ValidationTemplateID = val
		}
	}
	if cfg.Email.EmailJS.RejectionTemplateID == "" {
		if val := os.Getenv("EMAIL_JS_TEMPLATE_REJECTION"); val != "" {
			cfg.Email.EmailJS.RejectionTemplateID = val
		}
	}
	if cfg.Email.EmailJS.APIKey == "" {
		if val := os.Getenv("EMAIL_JS_API_KEY"); val != "" {
			cfg.Email.EmailJS.APIKey = val
		}
	}
	if cfg.Backend.BaseURL == "" {
		if val := os.Getenv("BACKEND_BASE_URL"); val != "" {
			cfg.Backend.BaseURL = val
		}
	}
	if cfg.Session.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Session.Redis.Address = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
// The EmailJS identifiers keep their historical literal fallbacks so an
// unconfigured install still dispatches against the demo service.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "smarttender-engine"
	}

	// Backend defaults
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://127.0.0.1:5000"
	}
	if cfg.Backend.UploadTimeout == 0 {
		cfg.Backend.UploadTimeout = 60000
	}
	if cfg.Backend.RequestTimeout == 0 {
		cfg.Backend.RequestTimeout = 30000
	}

	// Email provider defaults
	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "emailjs"
	}
	if cfg.Email.EmailJS.BaseURL == "" {
		cfg.Email.EmailJS.BaseURL = "https://api.emailjs.com"
	}
	if cfg.Email.EmailJS.ServiceID == "" {
		cfg.Email.EmailJS.ServiceID = "service_ko3lfks"
	}
	if cfg.Email.EmailJS.ValidationTemplateID == "" {
		cfg.Email.EmailJS.ValidationTemplateID = "template_5s7hlc9"
	}
	if cfg.Email.EmailJS.RejectionTemplateID == "" {
		cfg.Email.EmailJS.RejectionTemplateID = "template_0c0y28k"
	}
	if cfg.Email.EmailJS.APIKey == "" {
		cfg.Email.EmailJS.APIKey = "8gjZqa7ygevnQatFqW2JW"
	}
	if cfg.Email.EmailJS.Timeout == 0 {
		cfg.Email.EmailJS.Timeout = 15000
	}
	if cfg.Email.SES.Region == "" {
		cfg.Email.SES.Region = "us-east-1"
	}

	// Policy defaults
	if cfg.Policy.GateScore == 0 {
		cfg.Policy.GateScore = 40
	}
	if cfg.Policy.MaxCVBatch == 0 {
		cfg.Policy.MaxCVBatch = 50
	}

	// Session ledger defaults
	if cfg.Session.LedgerTTL == 0 {
		cfg.Session.LedgerTTL = 86400
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9102"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}

	switch cfg.Email.Provider {
	case "emailjs":
		if cfg.Email.EmailJS.ServiceID == "" || cfg.Email.EmailJS.APIKey == "" {
			return fmt.Errorf("email.emailjs.service_id and api_key are required")
		}
	case "ses":
		if cfg.Email.SES.FromEmail == "" {
			return fmt.Errorf("email.ses.from_email is required")
		}
	default:
		return fmt.Errorf("email.provider must be \"emailjs\" or \"ses\", got %q", cfg.Email.Provider)
	}

	if cfg.Policy.GateScore < 0 || cfg.Policy.GateScore > 100 {
		return fmt.Errorf("policy.gate_score must be within 0..100")
	}
	if cfg.Policy.MaxCVBatch < 1 {
		return fmt.Errorf("policy.max_cv_batch must be positive")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
