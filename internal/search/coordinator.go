// Package search implements the concurrent text search engine: the line
// scanner, the coordinator that fans scans out over candidate files under a
// shared match limit, and the set-once cancellation signal.
package search

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harrison/tgrep/internal/models"
)

// Sink receives match events as they are counted. Emit is called from inside
// the coordinator's critical section, so at most one Emit runs at a time per search.
type Sink interface {
	Emit(event models.MatchEvent)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event models.MatchEvent)

// Emit calls f(event).
func (f SinkFunc) Emit(event models.MatchEvent) { f(event) }

// Logger receives search lifecycle events and per-file diagnostics.
type Logger interface {
	LogSearchStart(req models.SearchRequest, candidates int)
	LogFileError(path string, err error)
	LogWarn(message string)
	LogSearchComplete(summary models.SearchSummary)
}

// sharedState is the match counter shared by all workers of one run.
// count only changes under mu. limitReached is written under mu and read
// without it by workers deciding whether to keep scanning.
type sharedState struct {
	mu           sync.Mutex
	count        int64
	limit        int64
	limitReached atomic.Bool
}

// record counts event and hands it to sink, or marks the limit as reached and
// drops the event when the count is already at the limit. The check, the
// increment and the emit happen in one critical section.
func (s *sharedState) record(event models.MatchEvent, sink Sink) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count >= s.limit {
		s.limitReached.Store(true)
		return false
	}
	s.count++
	if sink != nil {
		sink.Emit(event)
	}
	return true
}

func (s *sharedState) total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Coordinator scans candidate files concurrently with bounded parallelism.
type Coordinator struct {
	scanner        *LineScanner
	sink           Sink
	logger         Logger
	maxConcurrency int
}

// NewCoordinator constructs a Coordinator. maxConcurrency <= 0 uses runtime.NumCPU().
// sink and logger may be nil.
func NewCoordinator(scanner *LineScanner, sink Sink, logger Logger, maxConcurrency int) *Coordinator {
	if scanner == nil {
		scanner = NewLineScanner(0)
	}
	return &Coordinator{
		scanner:        scanner,
		sink:           sink,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Run scans files for term and returns once every dispatched scan has stopped.
//
// No more than limit matches are emitted. A match found once the limit is
// reached is discarded and sets LimitReached. Triggering sig, or cancelling
// ctx, stops dispatching new files and makes running scans return before their
// next line. Per-file read errors are logged and counted but do not stop the
// search.
func (c *Coordinator) Run(ctx context.Context, files []string, term string, limit int64, sig *Signal) models.SearchSummary {
	start := time.Now()
	if sig == nil {
		sig = NewSignal()
	}
	if limit <= 0 {
		limit = models.SearchRequest{}.EffectiveLimit()
	}

	// AfterFunc fires asynchronously, so an already-cancelled ctx is applied here
	if ctx.Err() != nil {
		sig.Trigger()
	}
	stopWatch := context.AfterFunc(ctx, func() { sig.Trigger() })

	state := &sharedState{limit: limit}
	stopped := func() bool {
		return sig.Triggered() || state.limitReached.Load()
	}

	maxConcurrency := c.maxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = runtime.NumCPU()
	}
	if maxConcurrency > len(files) {
		maxConcurrency = len(files)
	}
	if maxConcurrency == 0 {
		maxConcurrency = 1
	}

	semaphore := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	var dispatched, failed atomic.Int64

launch:
	for _, path := range files {
		if stopped() {
			break
		}

		// Do not block on a full pool once cancellation has fired
		select {
		case <-sig.Done():
			break launch
		case semaphore <- struct{}{}:
		}
		// Both cases may have been ready; a slot won after a stop is handed back
		if stopped() {
			<-semaphore
			break
		}

		wg.Add(1)
		dispatched.Add(1)

		go func(path string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if stopped() {
				return
			}

			err := c.scanner.Scan(path, term, stopped, func(lineNo int, line string) bool {
				if stopped() {
					return false
				}
				state.record(models.MatchEvent{FilePath: path, Line: line, LineNumber: lineNo}, c.sink)
				return !stopped()
			})
			if err != nil {
				failed.Add(1)
				if c.logger != nil {
					c.logger.LogFileError(path, err)
				}
			}
		}(path)
	}

	wg.Wait()
	// Terminal: a later ctx cancellation must not flip Cancelled
	stopWatch()

	return models.SearchSummary{
		TotalMatches:  state.total(),
		LimitReached:  state.limitReached.Load(),
		Cancelled:     sig.Triggered(),
		FilesSearched: int(dispatched.Load()),
		FilesFailed:   int(failed.Load()),
		Duration:      time.Since(start),
	}
}
