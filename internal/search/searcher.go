package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/tgrep/internal/fileutil"
	"github.com/harrison/tgrep/internal/models"
)

// Options configures a Searcher.
type Options struct {
	// MaxConcurrency bounds the number of files scanned at once (0 = runtime.NumCPU()).
	MaxConcurrency int
	// MaxLineBytes caps the length of a single line (0 = DefaultMaxLineBytes).
	MaxLineBytes int
	// ExcludeDirs are directory names never descended into.
	ExcludeDirs []string
	// SkipHidden skips dot-directories during recursive searches.
	SkipHidden bool
	// MaxDepth limits how deep recursive searches go (0 = unlimited).
	MaxDepth int
}

// Searcher runs complete searches: it validates a request, enumerates the
// candidate files and hands them to a Coordinator.
type Searcher struct {
	coordinator *Coordinator
	logger      Logger
	opts        Options
	newID       func() string
}

// NewSearcher creates a Searcher that emits matches to sink and lifecycle
// events to logger. Both may be nil.
func NewSearcher(sink Sink, logger Logger, opts Options) *Searcher {
	return &Searcher{
		coordinator: NewCoordinator(NewLineScanner(opts.MaxLineBytes), sink, logger, opts.MaxConcurrency),
		logger:      logger,
		opts:        opts,
		newID:       func() string { return uuid.New().String() },
	}
}

// Search runs req to completion, cancellation or the limit.
//
// An invalid request is rejected before touching the filesystem. A missing or
// unreadable directory returns a *fileutil.DirectoryError. Every other problem
// is reported through the logger and reflected in the summary.
func (s *Searcher) Search(ctx context.Context, req models.SearchRequest, sig *Signal) (models.SearchSummary, error) {
	if err := req.Validate(); err != nil {
		return models.SearchSummary{}, err
	}

	start := time.Now()
	result, err := fileutil.ScanDirectory(req.Directory, fileutil.ScanOptions{
		Pattern:     req.Pattern(),
		Recursive:   req.Recursive,
		ExcludeDirs: s.opts.ExcludeDirs,
		SkipHidden:  s.opts.SkipHidden,
		MaxDepth:    s.opts.MaxDepth,
	})
	if err != nil {
		return models.SearchSummary{}, err
	}

	if s.logger != nil {
		for _, walkErr := range result.Errors {
			s.logger.LogWarn(fmt.Sprintf("Skipped during enumeration: %v", walkErr))
		}
		s.logger.LogSearchStart(req, len(result.Files))
	}

	summary := s.coordinator.Run(ctx, result.Files, req.SearchTerm, req.EffectiveLimit(), sig)
	summary.ID = s.newID()
	summary.Candidates = len(result.Files)
	summary.Duration = time.Since(start)

	if s.logger != nil {
		s.logger.LogSearchComplete(summary)
	}

	return summary, nil
}
