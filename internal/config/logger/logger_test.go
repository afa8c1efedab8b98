package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetsync/internal/config"
)

func Test_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		format   string
		expected zerolog.Level
	}{
		{name: "Default", level: config.LogLevel, format: config.LogFormat, expected: zerolog.InfoLevel},
		{name: "Debug level", level: DebugLevel, format: ConsoleFormat, expected: zerolog.DebugLevel},
		{name: "Warn level and json format", level: WarnLevel, format: JSONFormat, expected: zerolog.WarnLevel},
		{name: "Empty level and format (defaults)", level: "", format: "", expected: zerolog.InfoLevel},
		{name: "Error level", level: ErrorLevel, format: ConsoleFormat, expected: zerolog.ErrorLevel},
		{name: "Trace level", level: TraceLevel, format: ConsoleFormat, expected: zerolog.TraceLevel},
		{name: "Unknown format (defaults to console)", level: InfoLevel, format: "unknown", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Logging.Level = tt.level
			cfg.Logging.Format = tt.format

			log := NewLogger(cfg)
			assert.NotNil(t, log)

			appLogger, ok := log.(*AppLogger)
			require.True(t, ok)
			assert.Equal(t, tt.expected, appLogger.log.GetLevel())
			assert.NotEmpty(t, cfg.Logging.Level)
			assert.NotEmpty(t, cfg.Logging.Format)
		})
	}
}

func Test_getLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{DebugLevel, zerolog.DebugLevel},
		{InfoLevel, zerolog.InfoLevel},
		{WarnLevel, zerolog.WarnLevel},
		{ErrorLevel, zerolog.ErrorLevel},
		{TraceLevel, zerolog.TraceLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, getLogLevel(tt.level))
		})
	}
}

func Test_WithComponent(t *testing.T) {
	var buf bytes.Buffer

	cfg := config.DefaultConfig()
	cfg.Logging.Level = DebugLevel

	log := NewLoggerWithOutput(cfg, &buf).WithComponent("CONN")
	log.Info().Str("state", "connected").Msg("Transport open")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "CONN", entry["component"])
	assert.Equal(t, "connected", entry["state"])
	assert.Equal(t, "Transport open", entry["message"])
	assert.Equal(t, config.Version, entry["version"])
	assert.Equal(t, config.AppName, entry["app"])
}

func Test_newConsoleWriter(t *testing.T) {
	var buf bytes.Buffer

	writer := newConsoleWriter(&buf, true)
	log := zerolog.New(writer).With().
		Str("app", config.AppName).
		Str("version", config.Version).
		Str("component", "MANAGER").
		Logger()

	log.Info().Int("attempt", 2).Msg("Reconnecting")

	line := buf.String()
	assert.Contains(t, line, "[MANAGER]")
	assert.Contains(t, line, "Reconnecting")
	assert.Contains(t, line, "attempt=2")
	assert.NotContains(t, line, config.Version)
	assert.NotContains(t, line, "\x1b[")
}

func Test_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	cfg := config.DefaultConfig()
	cfg.Logging.Level = WarnLevel

	log := NewLoggerWithOutput(cfg, &buf)
	log.Debug().Msg("dropped")
	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	log.Error().Msg("kept")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("kept")))
}

func Test_Nop(t *testing.T) {
	log := Nop()

	assert.NotPanics(t, func() {
		log.Debug().Msg("debug")
		log.Info().Msg("info")
		log.Warn().Msg("warn")
		log.Error().Msg("error")
		log.WithComponent("X").Info().Msg("component")
	})
}

func Test_Module(t *testing.T) {
	assert.NotNil(t, Module)
}
