// Package logger provides logging implementations for tgrep searches.
//
// Loggers receive search lifecycle events (start, per-file errors, warnings,
// completion) and write them to the console or to a run log file.
// Implementations are thread-safe: per-file errors arrive from concurrent
// scan workers.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/tgrep/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs search diagnostics to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Writers that wrap a terminal can expose it through an Fd method.
func isTerminal(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}

	if w == os.Stdout || w == os.Stderr {
		return true
	}

	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return isatty.IsTerminal(f.Fd())
	}

	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}

	return "info"
}

// IsValidLogLevel reports whether level names one of the supported levels.
func IsValidLogLevel(level string) bool {
	return normalizeLogLevel(level) == strings.ToLower(strings.TrimSpace(level))
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
// Format: "[HH:MM:SS] [WARN] <message>"
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
// Format: "[HH:MM:SS] [ERROR] <message>"
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}

	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogSearchStart logs the request and the number of candidate files at DEBUG level.
// Format: "[HH:MM:SS] [DEBUG] Searching 12 files for "term" (pattern *.txt, recursive, limit 10)"
func (cl *ConsoleLogger) LogSearchStart(req models.SearchRequest, candidates int) {
	cl.LogDebug(describeStart(req, candidates))
}

// LogFileError logs a file that could not be read at WARN level.
// Format: "[HH:MM:SS] [WARN] Error processing <file>: <cause>"
func (cl *ConsoleLogger) LogFileError(path string, err error) {
	cl.LogWarn(describeFileError(path, err))
}

// LogSearchComplete logs the final counts of a search at DEBUG level.
func (cl *ConsoleLogger) LogSearchComplete(summary models.SearchSummary) {
	cl.LogDebug(describeComplete(summary))
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func describeStart(req models.SearchRequest, candidates int) string {
	fileLabel := "file"
	if candidates != 1 {
		fileLabel = "files"
	}

	mode := "top directory only"
	if req.Recursive {
		mode = "recursive"
	}

	limit := "none"
	if !req.Unlimited() {
		limit = fmt.Sprintf("%d", req.Limit)
	}

	return fmt.Sprintf("Searching %d %s in %s for %q (pattern %s, %s, limit %s)",
		candidates, fileLabel, req.Directory, req.SearchTerm, req.Pattern(), mode, limit)
}

// describeFileError prefers the underlying cause so the path is not printed twice.
func describeFileError(path string, err error) string {
	cause := err
	if inner := errors.Unwrap(err); inner != nil {
		cause = inner
	}
	return fmt.Sprintf("Error processing %s: %v", path, cause)
}

func describeComplete(summary models.SearchSummary) string {
	return fmt.Sprintf("Search %s %s: %d matches in %d/%d files (%d failed) in %s",
		shortID(summary.ID),
		strings.ToLower(summary.Outcome()),
		summary.TotalMatches,
		summary.FilesSearched,
		summary.Candidates,
		summary.FilesFailed,
		formatDuration(summary.Duration),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "120ms", "5.2s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
