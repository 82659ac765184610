package observe

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestSlogLoggerRecordsBindEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	reg, sys := newTestRegistry(t, WithLogger(logger))
	class := defineBase(t, reg, Computed())
	obj := class.New(newBox(sys, 1))
	require.NoError(t, MakeObservable(obj))

	var binds []map[string]any
	for _, entry := range decodeLines(t, &buf) {
		require.Equal(t, "observe", entry["component"])
		if entry["op"] == string(LogOpBind) {
			binds = append(binds, entry)
		}
	}
	require.Len(t, binds, 1)
	require.Equal(t, "Base", binds[0]["class"])
	require.Equal(t, "foo", binds[0]["key"])
	require.Equal(t, "computed", binds[0]["kind"])
	require.Equal(t, obj.ID(), binds[0]["object_id"])
	require.Equal(t, "DEBUG", binds[0]["level"])
}

func TestSlogLoggerWarnsOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.Log(LogEvent{Op: LogOpActivity, Class: "Base", Err: errors.New("sink down")})
	logger.LogEvaluation(EvaluatorLogEvent{Engine: "expr", Expr: "a +", Scope: "Base.total", Err: errors.New("parse")})
	logger.Log(LogEvent{Op: LogOpDefine, Class: "Base"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2, "debug entries are below the default level")
	require.Equal(t, "WARN", entries[0]["level"])
	require.Equal(t, "sink down", entries[0]["error"])
	require.Equal(t, "expression evaluation failed", entries[1]["msg"])
	require.Equal(t, "Base.total", entries[1]["scope"])
}

func TestLoggerFuncAdapters(t *testing.T) {
	var events []LogEvent
	reg, _ := newTestRegistry(t, WithLogger(LoggerFunc(func(e LogEvent) {
		events = append(events, e)
	})))
	defineBase(t, reg, Computed())

	require.Len(t, events, 2)
	require.Equal(t, LogOpDeclare, events[0].Op)
	require.Equal(t, KindComputed, events[0].Kind)
	require.Equal(t, LogOpDefine, events[1].Op)

	LoggerFunc(nil).Log(LogEvent{})
	EvaluatorLoggerFunc(nil).LogEvaluation(EvaluatorLogEvent{})
}
