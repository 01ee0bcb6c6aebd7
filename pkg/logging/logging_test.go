package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	logger := New(Options{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "expected text formatter by default")
}

func TestNewDebugOverridesLevel(t *testing.T) {
	logger := New(Options{Level: "warn", Debug: true})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	logger := New(Options{Level: "chatty"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewJSONFormat(t *testing.T) {
	logger := New(Options{Format: "json"})
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	Component(logger, "resolver").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "resolver", line["component"])
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floatwatch.log")
	logger := New(Options{File: path})
	require.NotNil(t, logger.Out)
}

func TestComponentNilLogger(t *testing.T) {
	entry := Component(nil, "x")
	require.NotNil(t, entry)
	entry.Info("dropped")
}
