package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}

	for raw, want := range tests {
		assert.Equal(t, want, ParseLevel(raw), raw)
	}
}

func TestPrettyHandler_WritesAttrsAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "pretty")

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.With("request_id", "r1").WithGroup("folder").Info("created", "id", "f1", "error", errors.New("nope"))

	line := buf.String()
	assert.Contains(t, line, "created")
	assert.Contains(t, line, "request_id")
	assert.Contains(t, line, "r1")
	assert.Contains(t, line, "folder.id")
	assert.Contains(t, line, "nope")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "json")

	log.Debug("folder deleted", "id", "f1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "folder deleted", record["msg"])
	assert.Equal(t, "f1", record["id"])
}
