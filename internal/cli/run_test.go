package cli

import (
	"testing"

	"smarttender-engine/internal/common/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoggerSettings(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"

	t.Run("config values pass through", func(t *testing.T) {
		viper.Set("debug", false)
		viper.Set("json", false)
		defer viper.Reset()

		level, format := loggerSettings(cfg)
		assert.Equal(t, "info", level)
		assert.Equal(t, "console", format)
	})

	t.Run("debug flag overrides level", func(t *testing.T) {
		viper.Set("debug", true)
		viper.Set("json", false)
		defer viper.Reset()

		level, format := loggerSettings(cfg)
		assert.Equal(t, "debug", level)
		assert.Equal(t, "console", format)
	})

	t.Run("json flag overrides format", func(t *testing.T) {
		viper.Set("debug", false)
		viper.Set("json", true)
		defer viper.Reset()

		level, format := loggerSettings(cfg)
		assert.Equal(t, "info", level)
		assert.Equal(t, "json", format)
	})
}
