package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter_WithFieldsAttachesContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.WithFields(map[string]any{"journey": "homepage", "run_id": "abc"}).
		WithField("step", "open menu").
		Info("Step passed", "duration_ms", 12)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Step passed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "homepage", fields["journey"])
	assert.Equal(t, "abc", fields["run_id"])
	assert.Equal(t, "open menu", fields["step"])
	assert.EqualValues(t, 12, fields["duration_ms"])
}

func TestLoggerAdapter_Named(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Named("resolver").Debug("poll")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "resolver", logs.All()[0].LoggerName)
}

func TestNewLoggerAdapter_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"

	_, err := NewLoggerAdapter(cfg)
	assert.Error(t, err)
}

func TestNewLoggerAdapter_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journey.log")
	cfg := DefaultConfig()
	cfg.File = path

	log, err := NewLoggerAdapter(cfg)
	require.NoError(t, err)

	log.Warn("filter skipped", "option", "Quality Assurance")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"filter skipped"`)
	assert.Contains(t, string(data), `"option":"Quality Assurance"`)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Info("discarded")
	assert.NoError(t, log.Close())
}
