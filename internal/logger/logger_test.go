package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"crit", CriticalLevel},
		{"", InfoLevel},
		{"nonsense", InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WarnLevel, Output: &buf})

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warn", "doc", "d1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn")
	assert.Contains(t, out, "doc=d1")
}

func TestNew_CriticalCarriesSeverity(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: DebugLevel, Output: &buf, JSON: true})

	log.Critical("delete aborted", "document_id", "D1")

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "delete aborted", entry["msg"])
	assert.Equal(t, "critical", entry["severity"])
	assert.Equal(t, "D1", entry["document_id"])
}

func TestNew_With(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: InfoLevel, Output: &buf}).With("component", "repository")

	log.Info("ready")

	assert.Contains(t, buf.String(), "component=repository")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Critical("dropped")
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	child := rec.With("op", "delete")

	rec.Info("plain")
	child.Critical("boom", "document_id", "D1")

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, InfoLevel, entries[0].Level)

	crit := rec.ByLevel(CriticalLevel)
	require.Len(t, crit, 1)
	op, ok := crit[0].Value("op")
	assert.True(t, ok)
	assert.Equal(t, "delete", op)
	id, ok := crit[0].Value("document_id")
	assert.True(t, ok)
	assert.Equal(t, "D1", id)

	_, ok = crit[0].Value("missing")
	assert.False(t, ok)
}
