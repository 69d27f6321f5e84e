package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhhy/sim-game/logging"
)

func TestConsoleWritesTextFields(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsole(&buf, logging.ConsoleConfig{Format: "text", Level: "debug"})
	err := sink.Write(logging.Event{
		Type:     "navigation.path_not_found",
		Tick:     12,
		Actor:    logging.VillagerRef("v3"),
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "navigation.path_not_found")
	assert.Contains(t, out, "actor=\"villager:v3\"")
	assert.Contains(t, out, "tick=12")
	assert.Contains(t, out, "level=warning")
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsole(&buf, logging.ConsoleConfig{Format: "json", Level: "warn"})
	require.NoError(t, sink.Write(logging.Event{Type: "quiet", Severity: logging.SeverityDebug}))
	assert.Empty(t, buf.String())

	require.NoError(t, sink.Write(logging.Event{Type: "loud", Severity: logging.SeverityError}))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "loud", decoded["msg"])
	assert.Equal(t, "error", decoded["level"])
}

func TestJSONWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)
	require.NoError(t, sink.Write(logging.Event{Type: "a", Tick: 1}))
	require.NoError(t, sink.Write(logging.Event{Type: "b", Tick: 2}))
	require.NoError(t, sink.Close(context.Background()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var decoded logging.Event
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, logging.EventType("b"), decoded.Type)
	assert.Equal(t, uint64(2), decoded.Tick)
}

func TestMemoryOfType(t *testing.T) {
	sink := NewMemory()
	require.NoError(t, sink.Write(logging.Event{Type: "a"}))
	require.NoError(t, sink.Write(logging.Event{Type: "b"}))
	require.NoError(t, sink.Write(logging.Event{Type: "a"}))
	assert.Len(t, sink.OfType("a"), 2)
	sink.Reset()
	assert.Empty(t, sink.Events())
}
