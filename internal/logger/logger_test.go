package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"progress-pulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, detailed bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{
		Level:           "INFO",
		Format:          "json",
		DetailedLogging: detailed,
		Output:          &buf,
	}))
	t.Cleanup(func() {
		_ = InitWithConfig(LogConfig{Level: "INFO", Format: "text"})
	})
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestLevels(t *testing.T) {
	buf := captureJSON(t, false)
	ctx := context.Background()

	Debug(ctx, "hidden")
	Info(ctx, "shown", "key", "value")
	ErrorWithErr(ctx, "failed", errors.New("boom"))

	got := lines(t, buf)
	require.Len(t, got, 2)
	assert.Equal(t, "shown", got[0]["msg"])
	assert.Equal(t, "value", got[0]["key"])
	assert.Equal(t, "ERROR", got[1]["level"])
	assert.Equal(t, "boom", got[1]["error"])
}

func TestDetailedLoggingAddsSource(t *testing.T) {
	buf := captureJSON(t, true)

	Debug(context.Background(), "visible now")

	got := lines(t, buf)
	require.Len(t, got, 1)
	source, ok := got[0]["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, source["file"], "logger_test.go")
}

func TestProgressEvent(t *testing.T) {
	buf := captureJSON(t, false)

	Progress(context.Background(), types.ProgressRecord{
		Year:            2025,
		Today:           time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		DaysPassed:      182,
		DaysRemaining:   183,
		TotalDays:       365,
		PercentComplete: 49.9,
	})

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "PROGRESS", got[0]["type"])
	assert.Equal(t, "2025-07-02", got[0]["date"])
	assert.Equal(t, 49.9, got[0]["percent_complete"])
}

func TestOperationTimer(t *testing.T) {
	buf := captureJSON(t, false)

	op := StartOperation(context.Background(), "test.op", "k", "v")
	assert.NotNil(t, op.GetContext())
	op.End()
	assert.Empty(t, lines(t, buf), "completion is debug only")

	op = StartOperation(context.Background(), "test.op")
	op.EndWithError(errors.New("bad"))
	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "test.op", got[0]["operation"])
}
