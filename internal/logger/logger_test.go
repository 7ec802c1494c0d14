package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/memora/internal/logger"
)

var fixed = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

func TestTextFormat_SortedFieldsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false), logger.WithClock(fixed))

	log.WithPrefix("scheduler").WithFields(map[string]any{"zeta": 1, "alpha": "a"}).Info("graded item %d", 7)

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "2026-03-14 09:30:00.000 INFO  [scheduler] ["), line)
	assert.Contains(t, line, "graded item 7 alpha=a zeta=1\n")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, log.Enabled(logger.INFO))
	assert.True(t, log.Enabled(logger.ERROR))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatJSON), logger.WithClock(fixed))

	log.WithPrefix("api").WithField("learner_id", 3).Error("request failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, float64(3), entry["learner_id"])
	assert.Equal(t, "2026-03-14T09:30:00Z", entry["ts"])
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := logger.New(logger.WithOutput(&buf), logger.WithColors(false))
	_ = parent.WithField("child", true)

	parent.Info("parent line")
	assert.NotContains(t, buf.String(), "child=")
}

func TestContextRoundTrip(t *testing.T) {
	log := logger.New().WithPrefix("ctx")
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}

func TestParse(t *testing.T) {
	assert.Equal(t, logger.WARN, logger.ParseLevel("warning"))
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
	assert.Equal(t, logger.FormatJSON, logger.ParseFormat("JSON"))
	assert.Equal(t, logger.FormatText, logger.ParseFormat(""))
}
