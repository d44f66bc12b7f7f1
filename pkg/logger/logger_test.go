package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pdcal/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"}, &buf)
			require.NotNil(t, l)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"fatal", zerolog.FatalLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input), tt.input)
	}
}

func TestJSONOutputCarriesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&config.Config{Env: "staging", LogLevel: "debug", LogFormat: "json"}, &buf)

	l.Infof("stage %s done", "S1")

	entry := decode(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "stage S1 done", entry["message"])
	assert.Equal(t, "staging", entry["env"])
	assert.Equal(t, "pdcal", entry["service"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&config.Config{Env: "development", LogLevel: "info", LogFormat: "console"}, &buf)

	l.Info("console message")

	assert.True(t, strings.Contains(buf.String(), "console message"))
}

func TestComponentAndFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := &Logger{zlog: zerolog.New(&buf)}

	comp := l.Component("s1_correlation.gate")
	comp.Info().Str("variable", "GDP").Msg("scored")
	entry := decode(t, &buf)
	assert.Equal(t, "s1_correlation.gate", entry["component"])
	assert.Equal(t, "GDP", entry["variable"])

	buf.Reset()
	l.WithFields(map[string]interface{}{"run_id": "abc", "stage": "S3"}).Warn("slow")
	entry = decode(t, &buf)
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "S3", entry["stage"])

	buf.Reset()
	l.WithError(errors.New("boom")).Error("failed")
	entry = decode(t, &buf)
	assert.Equal(t, "boom", entry["error"])
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() { l.Info("discarded") })
}
