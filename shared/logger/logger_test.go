package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture builds a logger writing into a buffer via the test-only
// writer override.
func capture(t *testing.T, level, format string, enableSource bool) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	l, err := New(&Config{
		Level:        level,
		Format:       format,
		Output:       "stdout",
		EnableSource: enableSource,
		TimeFormat:   time.RFC3339,
		writer:       buf,
	})
	require.NoError(t, err)
	return l, buf
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestNew_JSONFormat(t *testing.T) {
	l, buf := capture(t, "debug", "json", false)

	l.Debug("queue declared", slog.String("queue", "creative_jobs_queue"))

	entry := decodeLine(t, buf.String())
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "queue declared", entry["msg"])
	assert.Equal(t, "creative_jobs_queue", entry["queue"])
	assert.Contains(t, entry, "time")
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		suppressed func(l *Logger)
		emitted    func(l *Logger)
		wantLevel  string
	}{
		{
			name:       "info drops debug",
			level:      "info",
			suppressed: func(l *Logger) { l.Debug("stage dispatched") },
			emitted:    func(l *Logger) { l.Info("stage completed") },
			wantLevel:  "INFO",
		},
		{
			name:       "warn drops info",
			level:      "warn",
			suppressed: func(l *Logger) { l.Info("stage completed") },
			emitted:    func(l *Logger) { l.Warn("job update affected no rows") },
			wantLevel:  "WARN",
		},
		{
			name:       "error drops warn",
			level:      "error",
			suppressed: func(l *Logger) { l.Warn("job update affected no rows") },
			emitted:    func(l *Logger) { l.Error("stage failed") },
			wantLevel:  "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := capture(t, tt.level, "json", false)

			tt.suppressed(l)
			tt.emitted(l)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 1, "the suppressed record must not be written")
			assert.Equal(t, tt.wantLevel, decodeLine(t, lines[0])["level"])
		})
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	l, buf := capture(t, "info", "console", false)

	l.Info("worker started")

	// tint renders the level as a three-letter tag.
	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "worker started")
}

func TestNew_EmptyFormatIsConsole(t *testing.T) {
	l, buf := capture(t, "info", "", false)

	l.Info("defaulted")

	assert.Contains(t, buf.String(), "INF")
	assert.NotContains(t, buf.String(), `"msg"`)
}

func TestNew_SourceLocation(t *testing.T) {
	l, buf := capture(t, "info", "json", true)

	l.Info("with source")

	entry := decodeLine(t, buf.String())
	require.Contains(t, entry, "source")
	source := entry["source"].(map[string]interface{})
	assert.Contains(t, source["file"], "logger_test.go")
}

func TestNewDefault(t *testing.T) {
	l := NewDefault()
	require.NotNil(t, l)
	assert.NotNil(t, l.Logger)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))

	// Anything unrecognized, including mixed case, falls back to info.
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestLogger_With(t *testing.T) {
	l, buf := capture(t, "info", "json", false)

	l.With(slog.String("service", "worker"), slog.Int("concurrency", 2)).
		Info("pool spawned")

	entry := decodeLine(t, buf.String())
	assert.Equal(t, "worker", entry["service"])
	assert.Equal(t, float64(2), entry["concurrency"])
	assert.Equal(t, "pool spawned", entry["msg"])
}

func TestLogger_WithAttrs(t *testing.T) {
	l, buf := capture(t, "info", "json", false)

	l.WithAttrs(slog.String("job_id", "job-42")).Info("stage completed")

	entry := decodeLine(t, buf.String())
	assert.Equal(t, "job-42", entry["job_id"])
}

func TestLogger_WithGroup(t *testing.T) {
	l, buf := capture(t, "info", "json", false)

	l.WithGroup("rabbitmq").Info("connected", slog.String("vhost", "/"))

	entry := decodeLine(t, buf.String())
	require.Contains(t, entry, "rabbitmq")
	group := entry["rabbitmq"].(map[string]interface{})
	assert.Equal(t, "/", group["vhost"])
}
