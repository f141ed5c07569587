package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("SWRCACHE_LOG_LEVEL", "trace")
	assert.Equal(t, LevelTrace, GetLevelFromEnv())
	t.Setenv("SWRCACHE_LOG_LEVEL", "ERROR")
	assert.Equal(t, LevelError, GetLevelFromEnv())
	t.Setenv("SWRCACHE_LOG_LEVEL", "bogus")
	assert.Equal(t, LevelInfo, GetLevelFromEnv())
}

func TestConsoleLoggerLevels(t *testing.T) {
	l := NewConsoleLogger(LevelWarn)
	assert.False(t, l.IsLevelEnabled(LevelDebug))
	assert.False(t, l.IsLevelEnabled(LevelInfo))
	assert.True(t, l.IsLevelEnabled(LevelWarn))
	assert.True(t, l.IsLevelEnabled(LevelError))
}

func TestTestLoggerRecords(t *testing.T) {
	l := NewTestLogger()
	l.Info("hello %s", "world")
	l.Error("boom")
	logs := l.Logs()
	assert.Len(t, logs, 2)
	assert.Equal(t, "INFO", logs[0].Severity)
	assert.Equal(t, "hello %s", logs[0].Message)
	assert.Equal(t, "ERROR", logs[1].Severity)
}

func TestTestLoggerWithSharesSink(t *testing.T) {
	l := NewTestLogger()
	child := l.With(map[string]interface{}{"key": "value"})
	child.Warn("from child")
	assert.Len(t, l.Logs(), 1)
}
