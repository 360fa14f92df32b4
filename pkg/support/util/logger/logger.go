// Package logger provides the pipeline's leveled logging over the standard
// `log` package. Stages log progress at INFO, per-row diagnostics at DEBUG,
// and recoverable conditions (undefined scale factors, count mismatches) at
// WARN; everything shares one output stream.
package logger

import (
	"log"
	"strings"
)

// LogLevel orders message severities.
type LogLevel int

const (
	// LevelDebug is used for per-row diagnostic output.
	LevelDebug LogLevel = iota
	// LevelInfo is used for stage progress messages.
	LevelInfo
	// LevelWarn is used for recoverable conditions worth operator attention.
	LevelWarn
	// LevelError is used for error messages.
	LevelError
	// LevelFatal is used for errors that terminate the run.
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// logLevel is the global threshold; messages below it are dropped.
var logLevel = LevelInfo

// ParseLevel resolves a configured level name, case-insensitively. The
// boolean is false for names outside the vocabulary.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// SetLogLevel applies the configured level name. An unrecognized name falls
// back to INFO with a warning.
func SetLogLevel(level string) {
	parsed, ok := ParseLevel(level)
	if !ok {
		Warnf("Unknown log level %q; defaulting to INFO", level)
	}
	logLevel = parsed
}

// logf emits one line when the message level clears the threshold.
func logf(at LogLevel, format string, v ...interface{}) {
	if at < logLevel {
		return
	}
	log.Printf("["+levelNames[at]+"] "+format, v...)
}

// Debugf formats and outputs a DEBUG level log message.
func Debugf(format string, v ...interface{}) {
	logf(LevelDebug, format, v...)
}

// Infof formats and outputs an INFO level log message.
func Infof(format string, v ...interface{}) {
	logf(LevelInfo, format, v...)
}

// Warnf formats and outputs a WARN level log message.
func Warnf(format string, v ...interface{}) {
	logf(LevelWarn, format, v...)
}

// Errorf formats and outputs an ERROR level log message.
func Errorf(format string, v ...interface{}) {
	logf(LevelError, format, v...)
}

// Fatalf formats and outputs a FATAL level log message, then terminates
// the program by calling os.Exit(1).
func Fatalf(format string, v ...interface{}) {
	log.Fatalf("[FATAL] "+format, v...)
}
