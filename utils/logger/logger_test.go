package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("Editor", "WARN", &buf)

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)
	l.Errorf("shown %d", 3)

	out := buf.String()
	require.NotContains(t, out, "hidden 1")
	require.Contains(t, out, "shown 2")
	require.Contains(t, out, "shown 3")
	require.Contains(t, out, "Editor")
	require.Contains(t, out, "WARN")
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("Main", "ERROR", &buf)
	l.Debugf("first")
	l.SetLevel("debug")
	l.Debugf("second")

	require.False(t, strings.Contains(buf.String(), "first"))
	require.True(t, strings.Contains(buf.String(), "second"))
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	previous := Default()
	defer SetDefault(previous)

	SetDefault(NewLogger("Test", "INFO", &buf))
	Infof("hello %s", "world")
	SetDefault(nil)

	require.Contains(t, buf.String(), "hello world")
	require.Equal(t, "Test", Default().Name())
}
