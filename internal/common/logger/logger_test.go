package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNewWithOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.log")
	zl := NewWithOutput("debug", "json", path)
	require.NotNil(t, zl)

	log := NewZapAdapter(zl)
	log.WithFields(map[string]interface{}{"taskType": "solar.roi.calculate"}).
		WithError(errors.New("boom")).
		Info("written", map[string]interface{}{"n": 1})
	_ = zl.Sync()

	assert.FileExists(t, path)
}

func TestNewWithOutput_BadPathFallsBack(t *testing.T) {
	zl := NewWithOutput("info", "json", filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.NotNil(t, zl)
}

func TestTestAndNoOpLoggers(t *testing.T) {
	for _, l := range []Logger{NewTestLogger(t), NewNoOpLogger(), NewStructured("warn", "console")} {
		l.Debug("debug", nil)
		l.With(map[string]interface{}{"k": "v"}).Warn("warn", map[string]interface{}{"a": 1})
	}
}
