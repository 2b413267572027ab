package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, NoTimestamp: true})

	l.Debug("hidden")
	l.Info("shown", "islands", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "islands=3")
}

func TestConsoleLoggerDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, NoTimestamp: true, Debug: true})

	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestConsoleLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, NoTimestamp: true, JSON: true})

	l.Warn("[Generator] Mislink fallback", "island", 2)

	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "[Generator] Mislink fallback", rec["msg"])
	assert.Equal(t, "warn", rec["level"])
	assert.EqualValues(t, 2, rec["island"])
}
