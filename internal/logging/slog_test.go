package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AutoPicksByTerminal(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, false, "info", "auto")
	require.NoError(t, err)
	log.Info("hello", "session_id", "s-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "s-1", line["session_id"])

	buf.Reset()
	log, err = newLogger(&buf, true, "info", "auto")
	require.NoError(t, err)
	log.Info("hello")
	assert.True(t, strings.Contains(buf.String(), "msg=hello"))
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, false, "warn", "text")
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLogger_Rejects(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, false, "loud", "json")
	assert.Error(t, err)

	_, err = newLogger(&bytes.Buffer{}, false, "info", "xml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}
