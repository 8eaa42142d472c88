package cmd

import (
	"github.com/harrison/tgrep/internal/models"
	"github.com/harrison/tgrep/internal/search"
)

// multiLogger implements search.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []search.Logger
}

// newMultiLogger drops nil entries so callers can pass optional loggers.
func newMultiLogger(loggers ...search.Logger) *multiLogger {
	ml := &multiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

// LogSearchStart forwards to all loggers
func (ml *multiLogger) LogSearchStart(req models.SearchRequest, candidates int) {
	for _, logger := range ml.loggers {
		logger.LogSearchStart(req, candidates)
	}
}

// LogFileError forwards to all loggers
func (ml *multiLogger) LogFileError(path string, err error) {
	for _, logger := range ml.loggers {
		logger.LogFileError(path, err)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, logger := range ml.loggers {
		logger.LogWarn(message)
	}
}

// LogSearchComplete forwards to all loggers
func (ml *multiLogger) LogSearchComplete(summary models.SearchSummary) {
	for _, logger := range ml.loggers {
		logger.LogSearchComplete(summary)
	}
}
