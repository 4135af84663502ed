package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel(" INFO "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelWarn, ParseLevel(""))
	assert.Equal(t, LevelWarn, ParseLevel("verbose"))
}

func TestConfigure_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(LevelWarn, &buf)
	t.Cleanup(func() { Configure(LevelWarn, os.Stderr) })

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 3")
	assert.Contains(t, out, `"level":"warn"`)
}

func TestErrorf_ShownAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(LevelError, &buf)
	t.Cleanup(func() { Configure(LevelWarn, os.Stderr) })

	Warnf("hidden")
	Errorf("launching %s: %v", "session", "exec format error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "launching session: exec format error")
}

func TestConfigureFile_WritesAndCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "select.log")
	require.NoError(t, ConfigureFile(LevelDebug, path))
	t.Cleanup(func() {
		Close()
		Configure(LevelWarn, os.Stderr)
	})

	logger := WithField("session", "work")
	logger.Debug().Msg("attaching")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"session":"work"`)
	assert.Contains(t, line, `"message":"attaching"`)
}
