package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metadata", "log")
	now := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

	l, err := New(Config{Dir: dir, Quiet: true}, StageValidation, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "validation_20240301_140509.log"), l.Path())

	l.Info("Dataset Shape: (3, 2)", Dataset("churn"))
	l.Debug("hidden")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	parts := strings.SplitN(lines[0], " - ", 4)
	require.Len(t, parts, 4)
	_, err = time.Parse(TimeLayout, parts[0])
	assert.NoError(t, err)
	assert.Equal(t, "INFO", parts[1])
	assert.Equal(t, "Dataset Shape: (3, 2)", parts[2])
	assert.Contains(t, parts[3], `"dataset": "churn"`)
}

func TestNew_Level(t *testing.T) {
	l, err := New(Config{Dir: t.TempDir(), Level: zapcore.DebugLevel, Quiet: true}, StageIngestion, time.Now())
	require.NoError(t, err)
	l.Debug("shown")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEBUG - shown")
	assert.True(t, strings.HasPrefix(filepath.Base(l.Path()), "ingestion_"))
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New(Config{}, StageValidation, time.Now())
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewTest_ObservesFields(t *testing.T) {
	l, logs := NewTest()
	l.With(Dataset("churn")).Warn("check degraded", Column("TotalCharges"), Check("Anomalies"), Op("validate"))

	entries := logs.FilterMessage("check degraded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "churn", fields[KeyDataset])
	assert.Equal(t, "TotalCharges", fields[KeyColumn])
	assert.Equal(t, "Anomalies", fields[KeyCheck])
	assert.Equal(t, "validate", fields[KeyOp])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("ignored", zap.Int("n", 1))
	assert.NoError(t, l.Close())
	assert.Empty(t, l.Path())
}
