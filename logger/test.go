package logger

import "sync"

type TestLogEntry struct {
	Severity  string
	Message   string
	Arguments []interface{}
}

type testLogSink struct {
	mu   sync.Mutex
	logs []TestLogEntry
}

// TestLogger records log entries so tests can assert on them. Loggers
// derived via With share the same entry list as their parent.
type TestLogger struct {
	metadata map[string]interface{}
	sink     *testLogSink
}

var _ Logger = (*TestLogger)(nil)

func NewTestLogger() *TestLogger {
	return &TestLogger{sink: &testLogSink{}}
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{}, len(c.metadata)+len(metadata))
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	return &TestLogger{metadata: kv, sink: c.sink}
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return true
}

func (c *TestLogger) record(level string, msg string, args ...interface{}) {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	c.sink.logs = append(c.sink.logs, TestLogEntry{level, msg, args})
}

// Logs returns a copy of the recorded entries.
func (c *TestLogger) Logs() []TestLogEntry {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	out := make([]TestLogEntry, len(c.sink.logs))
	copy(out, c.sink.logs)
	return out
}

func (c *TestLogger) Trace(msg string, args ...interface{}) {
	c.record("TRACE", msg, args...)
}

func (c *TestLogger) Debug(msg string, args ...interface{}) {
	c.record("DEBUG", msg, args...)
}

func (c *TestLogger) Info(msg string, args ...interface{}) {
	c.record("INFO", msg, args...)
}

func (c *TestLogger) Warn(msg string, args ...interface{}) {
	c.record("WARN", msg, args...)
}

func (c *TestLogger) Error(msg string, args ...interface{}) {
	c.record("ERROR", msg, args...)
}
