package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()))

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

const (
	Reset       = "\033[0m"
	Red         = "\033[31m"
	Green       = "\033[32m"
	Magenta     = "\033[35m"
	BlueBold    = "\033[34;1m"
	MagentaBold = "\033[35;1m"
	RedBold     = "\033[31;1m"
	WhiteBold   = "\033[37;1m"
	YellowBold  = "\033[33;1m"
	CyanBold    = "\033[36;1m"
	Gray        = "\033[1;90m"
)

type consoleLogger struct {
	metadata map[string]interface{}
	logLevel LogLevel
}

var _ Logger = (*consoleLogger)(nil)

func (c *consoleLogger) clone() *consoleLogger {
	metadata := make(map[string]interface{}, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &consoleLogger{metadata: metadata, logLevel: c.logLevel}
}

func (c *consoleLogger) With(metadata map[string]interface{}) Logger {
	clone := c.clone()
	for k, v := range metadata {
		clone.metadata[k] = v
	}
	return clone
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.logLevel
}

func (c *consoleLogger) log(level LogLevel, levelColor string, messageColor string, levelString string, msg string, args ...interface{}) {
	if level < c.logLevel {
		return
	}
	var suffix string
	if len(c.metadata) > 0 {
		buf, _ := json.Marshal(c.metadata)
		suffix = " " + color(Gray) + string(buf) + color(Reset)
	}
	levelText := color(levelColor) + fmt.Sprintf("%-7s", "["+levelString+"]") + color(Reset)
	message := color(messageColor) + fmt.Sprintf(msg, args...) + color(Reset)
	log.Printf("%s %s%s\n", levelText, message, suffix)
}

func (c *consoleLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, CyanBold, Gray, "TRACE", msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, BlueBold, Green, "DEBUG", msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, YellowBold, WhiteBold, "INFO", msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, MagentaBold, Magenta, "WARN", msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, RedBold, Red, "ERROR", msg, args...)
}

// NewConsoleLogger returns a new Logger that logs to the console
func NewConsoleLogger(levels ...LogLevel) Logger {
	level := GetLevelFromEnv()
	if len(levels) > 0 {
		level = levels[0]
	}
	return &consoleLogger{
		metadata: make(map[string]interface{}),
		logLevel: level,
	}
}
