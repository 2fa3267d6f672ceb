package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peak.log")
	l, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shell started", Workspace(2))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shell started"`)
	assert.Contains(t, out, `"workspace":2`)
	assert.Contains(t, out, `"timestamp":`)
}

func TestSetLevelReachesChildren(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peak.log")
	l, err := New(Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)
	child := l.Named("session").With(zap.String("k", "v"))

	require.NoError(t, child.SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, l.Level())

	l.Debug("from parent")
	child.Debug("from child")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "from parent")
	assert.Contains(t, string(data), `"logger":"session"`)

	assert.Error(t, l.SetLevel("loud"))
	assert.Equal(t, zapcore.DebugLevel, l.Level())
}

func TestFieldsAndNamed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := (&Logger{Logger: zap.New(core), level: zap.NewAtomicLevel()}).Named("session")

	l.Debug("stream activated", App(types.Terminal), Persona(types.PersonaKiosk))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "session", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Terminal", fields["app"])
	assert.Equal(t, "Kiosk", fields["persona"])
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Info("ignored")
	assert.NotNil(t, l.With(zap.String("k", "v")))
	assert.Equal(t, zapcore.InfoLevel, l.Level())
}
