package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("debug", &buf)

	log.Info("produto criado", map[string]interface{}{"product_id": 7})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "produto criado", lines[0]["message"])
	assert.Contains(t, lines[0], "timestamp")
	fields, ok := lines[0]["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, fields["product_id"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("error", &buf)

	log.Debug("ignorado", nil)
	log.Info("ignorado", nil)
	log.Warn("ignorado", nil)
	log.Error("falha", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "boom", lines[0]["error"])
}

func TestLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("verbose", &buf)

	log.Debug("ignorado", nil)
	log.Info("registrado", nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "registrado", lines[0]["message"])
}

func TestLogger_WithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("info", &buf).With(map[string]interface{}{"op": "Register"})

	log.Error("falha inesperada", errors.New("db down"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Register", lines[0]["op"])
}

func TestLogger_FatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf).(*SimpleLogger)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("configuração inválida", errors.New("JWT_ISSUER ausente"))

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "JWT_ISSUER ausente")
}
