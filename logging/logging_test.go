package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)
	l.Infof("hidden %d", 1)
	require.Equal(t, 0, buf.Len())
	l.Warnf("shown %d", 2)
	require.Contains(t, buf.String(), "[WARN] shown 2")
	l.Errorf("also shown")
	require.Contains(t, buf.String(), "[ERROR] also shown")
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"} {
		level, err := ParseLevel(name)
		require.Nil(t, err)
		require.Equal(t, name, LogLevelToString(level))
	}
	level, err := ParseLevel("")
	require.Nil(t, err)
	require.Equal(t, InfoLevel, level)
	_, err = ParseLevel("loud")
	require.NotNil(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	require.False(t, l.Enabled(FatalLevel))
}
