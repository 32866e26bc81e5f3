package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cestmoi1337/ScorePlayer/internal/shared/logger"
)

func TestNew_CreatesLogFileAndWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "http.log")

	l, err := logger.New(logger.Options{File: logPath})
	require.NoError(t, err)

	l.Info("test message")
	_ = l.Sync()

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	s := string(b)

	require.Regexp(t, `\btest message\b`, s)
	// формат времени: "HH:MM:SS DD.MM.YYYY"
	require.Regexp(t, `\b\d{2}:\d{2}:\d{2} \d{2}\.\d{2}\.\d{4}\b`, s)
}

func TestHTTPLogger_LogRequest_WritesStructuredFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "http.log")

	l, err := logger.New(logger.Options{File: logPath, Format: "json"})
	require.NoError(t, err)

	l.LogRequest("rid-1", "POST", "/login", 401, 20, 158.5463)
	_ = l.Sync()

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	s := string(b)

	mustContain := []string{
		"HTTP request",
		`"request_id":"rid-1"`,
		`"method":"POST"`,
		`"uri":"/login"`,
		`"status":401`,
		`"response_size":20`,
		"duration_ms",
	}
	for _, sub := range mustContain {
		require.Regexp(t, regexp.QuoteMeta(sub), s)
	}
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "http.log")

	l, err := logger.New(logger.Options{File: logPath, Level: "warn"})
	require.NoError(t, err)

	l.Info("hidden message")
	l.Warn("visible message")
	_ = l.Sync()

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.NotContains(t, string(b), "hidden message")
	require.Contains(t, string(b), "visible message")
}

func TestNew_RejectsUnknownLevelAndFormat(t *testing.T) {
	dir := t.TempDir()

	_, err := logger.New(logger.Options{File: filepath.Join(dir, "a.log"), Level: "loud"})
	require.Error(t, err)

	_, err = logger.New(logger.Options{File: filepath.Join(dir, "b.log"), Format: "xml"})
	require.Error(t, err)
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := logger.NewNop()
	l.LogRequest("", "GET", "/", 200, 0, 0)
}

// caller указывает на место вызова и для прямых записей, и для LogRequest
func TestNew_CallerPointsAtCallSite(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "http.log")

	l, err := logger.New(logger.Options{File: logPath, Format: "json"})
	require.NoError(t, err)

	l.Info("direct")
	l.LogRequest("rid-2", "GET", "/files", 200, 2, 1)
	_ = l.Sync()

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		require.Contains(t, entry["caller"], "logger_zap_test.go:")
	}
}
