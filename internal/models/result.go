package models

import "time"

// Search outcome constants
const (
	OutcomeCompleted    = "COMPLETED"     // Every candidate file was scanned
	OutcomeLimitReached = "LIMIT_REACHED" // Stopped early because the limit was hit
	OutcomeCancelled    = "CANCELLED"     // Stopped early by the cancellation signal
)

// MatchEvent is a single matching line. It is emitted to an output sink and not stored.
type MatchEvent struct {
	FilePath   string // Path of the file the line came from
	Line       string // Line content without the trailing newline
	LineNumber int    // 1-based line number within the file
}

// SearchSummary is the aggregate result of one search
type SearchSummary struct {
	ID            string        // Unique id assigned to the search run
	TotalMatches  int64         // Matches counted and emitted
	LimitReached  bool          // A qualifying line existed beyond the limit
	Cancelled     bool          // The cancellation signal fired during the search
	Candidates    int           // Files selected by the enumerator
	FilesSearched int           // Candidate files dispatched for scanning
	FilesFailed   int           // Files whose scan ended with a read error
	Duration      time.Duration // Wall time of the search
}

// Outcome describes why the search stopped. Cancellation takes precedence over
// the limit when both happened.
func (s SearchSummary) Outcome() string {
	switch {
	case s.Cancelled:
		return OutcomeCancelled
	case s.LimitReached:
		return OutcomeLimitReached
	default:
		return OutcomeCompleted
	}
}
