package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.DebugLevel, New(&buf, "DEBUG", "json").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New(&buf, "warn", "json").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(&buf, "invalid", "json").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(&buf, "", "json").GetLevel())
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.Info().Str("symbol", "GE").Msg("bars collected")
	l.Debug().Msg("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "GE", line["symbol"])
	assert.Equal(t, "bars collected", line["message"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "console")
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}
