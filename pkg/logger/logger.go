// Package logger provides the priority-tagged text sink the server writes
// to. Output routing (stdout/stderr vs. a log file picked up by the
// daemonized process) is the sink's concern, not the core's.
package logger

import (
	"io"
	"log"
	"os"
)

var (
	infoLogger  = log.New(os.Stdout, "[Server] [LOG_INFO]: ", 0)
	errLogger   = log.New(os.Stderr, "[Server] [LOG_ERR]: ", 0)
	debugLogger = log.New(os.Stdout, "[Server] [LOG_DEBUG]: ", 0)
	fatalLogger = log.New(os.Stderr, "[Server] [LOG_ERR]: ", 0)

	debugEnabled = false
)

// SetOutput redirects all four loggers to w, used when running in the
// foreground with a configured log file. A daemonized process instead
// has its stdout/stderr redirected to the log file by daemonize.Detach.
func SetOutput(w io.Writer) {
	infoLogger.SetOutput(w)
	errLogger.SetOutput(w)
	debugLogger.SetOutput(w)
	fatalLogger.SetOutput(w)
}

// SetDebug toggles whether Debug actually emits a line, mirroring the
// source's setlogmask(LOG_UPTO(LOG_DEBUG)) gating.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

// Info logs at LOG_INFO.
func Info(format string, v ...interface{}) {
	infoLogger.Printf(format, v...)
}

// Error logs at LOG_ERR.
func Error(format string, v ...interface{}) {
	errLogger.Printf(format, v...)
}

// Debug logs at LOG_DEBUG, only when debug mode is enabled.
func Debug(format string, v ...interface{}) {
	if !debugEnabled {
		return
	}
	debugLogger.Printf(format, v...)
}

// Fatal logs at LOG_ERR and exits with status 1.
func Fatal(format string, v ...interface{}) {
	fatalLogger.Printf(format, v...)
	os.Exit(1)
}
