package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nexla-ia/gerador-frases-ia/internal/config"
)

// setupTestLogger initializes the global logger to write to a buffer.
func setupTestLogger(cfg config.LoggerConfig) *bytes.Buffer {
	buf := new(bytes.Buffer)
	initializeLogger(cfg, zapcore.AddSync(buf))
	return buf
}

// resetGlobalLogger restores the singleton between tests.
func resetGlobalLogger() {
	once = sync.Once{}
	globalLogger.Store(nil)
}

func TestInitializeLogger(t *testing.T) {
	t.Run("console logger colorizes the level", func(t *testing.T) {
		resetGlobalLogger()

		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "gatekeeper-test",
			Colors: config.ColorConfig{
				Info: "green",
			},
		}
		buf := setupTestLogger(cfg)

		GetLogger().Info("console message")
		Sync()

		output := buf.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "console message")
		assert.Contains(t, output, colorGreen)
		assert.Contains(t, output, colorReset)
	})

	t.Run("json logger emits structured fields", func(t *testing.T) {
		resetGlobalLogger()

		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "gatekeeper-json",
		}
		buf := setupTestLogger(cfg)

		GetLogger().Warn("json message", zap.String("probe", "canvas"))
		Sync()

		line := strings.TrimSpace(buf.String())
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "json message", entry["msg"])
		assert.Equal(t, "canvas", entry["probe"])
		assert.Equal(t, "gatekeeper-json", entry["logger"])
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		resetGlobalLogger()

		cfg := config.LoggerConfig{
			Level:  "verbose-ish",
			Format: "json",
		}
		buf := setupTestLogger(cfg)

		GetLogger().Debug("should be suppressed")
		GetLogger().Info("should appear")
		Sync()

		output := buf.String()
		assert.NotContains(t, output, "should be suppressed")
		assert.Contains(t, output, "should appear")
	})
}

func TestGetLoggerBeforeInitialization(t *testing.T) {
	resetGlobalLogger()

	logger := GetLogger()
	require.NotNil(t, logger, "uninitialized GetLogger must still hand back a usable logger")
	logger.Info("fallback logger is safe to use")
}
