package logger

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{name: "logs when SIGNKEY_DEBUG is set", envValue: "1", expectLog: true},
		{name: "logs when SIGNKEY_DEBUG is any value", envValue: "true", expectLog: true},
		{name: "silent when SIGNKEY_DEBUG is empty", envValue: "", expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, tt.envValue)

			l := NewEnvLogger("[test]")
			l.Debug("matched %s", "Password:")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] DEBUG: matched Password:")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_InfoQuietByDefault(t *testing.T) {
	buf := captureLog(t)
	t.Setenv(DebugEnv, "")

	NewEnvLogger("[q]").Info("spawned pid %d", 42)
	assert.Empty(t, buf.String())

	NewVerboseLogger("[v]").Info("spawned pid %d", 42)
	assert.Contains(t, buf.String(), "[v] spawned pid 42")
}

func TestEnvLogger_WarnAndError(t *testing.T) {
	buf := captureLog(t)

	l := NewEnvLogger("[cli]")
	l.Warn("exit status %d", 3)
	l.Error("boom")

	assert.Contains(t, buf.String(), "[cli] WARN: exit status 3")
	assert.Contains(t, buf.String(), "[cli] ERROR: boom")
}

func TestNoop(t *testing.T) {
	buf := captureLog(t)

	l := Noop()
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")

	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	l.Info("sent response %d", 1)
	l.Warn("slow")

	msgs := l.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, LogMessage{Level: "info", Message: "sent response 1"}, msgs[0])
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))

	l.Clear()
	assert.Empty(t, l.Messages())
}

func TestSetDefault(t *testing.T) {
	buf := NewBufferLogger()
	prev := SetDefault(buf)
	defer SetDefault(prev)

	Default().Error("via default")
	assert.True(t, buf.HasLevel("error"))
}
