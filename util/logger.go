// Package util provides low-level helpers shared by all other packages.
package util

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// Logger writes levelled messages to stderr with optional timestamps
// and level prefixes.  stdout is never used: it carries the relayed
// session bytes.
type Logger struct {
	level     LogLevel
	log       *logrus.Logger
	formatter *prefixFormatter
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	if verbosity < 0 {
		verbosity = 0
	}
	level := LogLevel(verbosity)
	if level > LogDebug {
		level = LogDebug
	}

	f := &prefixFormatter{timestamps: level >= LogDebug}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(f)
	l.SetLevel(logrusLevel(level))

	return &Logger{level: level, log: l, formatter: f}
}

// logrusLevel maps a verbosity to the most detailed logrus level that
// should still be emitted.
func logrusLevel(level LogLevel) logrus.Level {
	switch level {
	case LogQuiet:
		return logrus.ErrorLevel
	case LogNormal:
		return logrus.InfoLevel
	case LogVerbose:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) { l.formatter.setTimestamps(on) }

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) { l.log.SetOutput(w) }

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// Info prints when verbosity ≥ 1.  Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) { l.log.Infof(format, args...) }

// Warn prints when verbosity ≥ 1.  Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) { l.log.Warnf(format, args...) }

// Verbose prints when verbosity ≥ 2.  Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) { l.log.Debugf(format, args...) }

// Debug prints when verbosity ≥ 3.  Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) { l.log.Tracef(format, args...) }

// Error always prints regardless of verbosity.  Prefixed with [ERR].
func (l *Logger) Error(format string, args ...interface{}) { l.log.Errorf(format, args...) }

// ── formatter ────────────────────────────────────────────────────────

// prefixFormatter renders "[INF] message" lines, optionally preceded by
// a millisecond wall-clock timestamp.  Fields attached through logrus
// are appended as key=value pairs.
type prefixFormatter struct {
	mu         sync.Mutex
	timestamps bool
}

func (f *prefixFormatter) setTimestamps(on bool) {
	f.mu.Lock()
	f.timestamps = on
	f.mu.Unlock()
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	f.mu.Lock()
	ts := f.timestamps
	f.mu.Unlock()

	var b bytes.Buffer
	if ts {
		b.WriteString(e.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] %s", levelTag(e.Level), e.Message)
	for k, v := range e.Data {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelTag(level logrus.Level) string {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "ERR"
	case logrus.WarnLevel:
		return "WRN"
	case logrus.InfoLevel:
		return "INF"
	case logrus.DebugLevel:
		return "VRB"
	default:
		return "DBG"
	}
}
