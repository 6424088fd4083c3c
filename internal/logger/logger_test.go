package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout runs f with os.Stdout redirected to a pipe and returns the output.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	_ = w.Close()
	b, _ := io.ReadAll(r)
	_ = r.Close()
	return string(b)
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

func TestLogger_IncludesStackAndServiceOnError(t *testing.T) {
	out := captureStdout(t, func() {
		log := New("meshcapade-cli")
		log.Error().Stack().Err(errors.New("boom")).Msg("something failed")
	})

	line := lastNonEmptyLine(out)
	require.NotEmpty(t, line, "no output captured")

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &payload), line)
	assert.Equal(t, "meshcapade-cli", payload["service"])
	assert.Equal(t, "error", payload["level"])
	assert.Contains(t, payload, "stack")
}

func TestNewConsole_PlainText(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsole(&buf)
	log.Info().Str("avatar_id", "a1").Msg("avatar created")

	out := buf.String()
	assert.Contains(t, out, "avatar created")
	assert.Contains(t, out, "avatar_id=a1")
	assert.NotContains(t, out, "\x1b[", "console output must not be colored")
}
