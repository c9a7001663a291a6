package sinks_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/log/sinks"
	"github.com/arnavsurve/rowpilot/pkg/types"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "row 3/action 2", sinks.Label(map[string]any{"row_index": float64(2), "action_index": float64(1)}))
	assert.Equal(t, "row 1", sinks.Label(map[string]any{"row_index": 0}))
	assert.Equal(t, "action 4", sinks.Label(map[string]any{"action_index": float64(3)}))
	assert.Equal(t, "workflow", sinks.Label(map[string]any{"row_index": "x"}))
}

func TestConsoleSink(t *testing.T) {
	color.NoColor = true
	out := &bytes.Buffer{}
	sink := sinks.NewConsoleSinkTo(out)

	require.NoError(t, sink.Write(&log.LogEvent{
		Level:     types.ErrorLevel,
		Message:   "Action failed",
		Fields:    map[string]any{"row_index": float64(0), "action_index": float64(2), "error": "click: page operation timed out"},
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}))

	assert.Equal(t, "[ERROR 2024-05-01T12:00:00Z] row 1/action 3: Action failed: click: page operation timed out\n", out.String())
}

func readRunLog(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.json")
	sink, err := sinks.NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Write(&log.LogEvent{
		Level:     types.InfoLevel,
		Message:   "Row completed",
		Fields:    map[string]any{"row_index": float64(1)},
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, sink.Write(&log.LogEvent{Level: types.DebugLevel, Message: "Run started"}))

	// Info and debug entries stay buffered until close.
	assert.Empty(t, readRunLog(t, path))

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	entries := readRunLog(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "Row completed", entries[0]["message"])
	assert.Equal(t, float64(1), entries[0]["row_index"])
	assert.Equal(t, "row 2", entries[0]["where"])
	assert.Equal(t, "2024-05-01T12:00:00Z", entries[0]["time"])
	assert.Equal(t, "workflow", entries[1]["where"])
	assert.NotContains(t, entries[1], "time")

	assert.Error(t, sink.Write(&log.LogEvent{Level: types.InfoLevel, Message: "late"}))
}

func TestFileSinkFlushesFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	sink, err := sinks.NewFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(&log.LogEvent{
		Level:   types.ErrorLevel,
		Message: "Action failed",
		Fields:  map[string]any{"row_index": float64(0), "action_index": float64(2)},
	}))

	entries := readRunLog(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "row 1/action 3", entries[0]["where"])
}
