package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tasknova/internal/config"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, false, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", zap.String("task_id", "a"))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "a", entry["task_id"])
}

func TestNew_DebugFlagOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "error"}, true, &buf)
	require.NoError(t, err)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_DefaultIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{}, false, &buf)
	require.NoError(t, err)

	logger.Info("quiet")
	assert.Empty(t, buf.String())
	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty"}, false, nil)
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Format: "xml"}, false, nil)
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
