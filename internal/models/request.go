package models

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
)

// DefaultFilePattern is the glob used when no file pattern is given.
const DefaultFilePattern = "*.txt"

// ErrEmptySearchTerm is returned when a search is requested without a term.
var ErrEmptySearchTerm = errors.New("search term is required")

// SearchRequest describes a single search. It is built by the CLI layer and
// treated as immutable by the search engine.
type SearchRequest struct {
	SearchTerm  string // Case-insensitive substring to look for
	FilePattern string // Shell glob matched against file base names
	Directory   string // Root directory to search
	Recursive   bool   // Descend into subdirectories
	Limit       int64  // Maximum matches to report (0 = no limit)
}

// NewSearchRequest returns a request for term in dir with default pattern and no limit.
func NewSearchRequest(term, dir string) SearchRequest {
	return SearchRequest{
		SearchTerm:  term,
		FilePattern: DefaultFilePattern,
		Directory:   dir,
	}
}

// Validate checks the request invariants that do not touch the filesystem.
// Directory existence is checked by the enumerator.
func (r SearchRequest) Validate() error {
	if r.SearchTerm == "" {
		return ErrEmptySearchTerm
	}
	if r.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", r.Limit)
	}
	if _, err := filepath.Match(r.Pattern(), ""); err != nil {
		return fmt.Errorf("invalid file pattern %q: %w", r.FilePattern, err)
	}
	return nil
}

// Pattern returns the file pattern, falling back to DefaultFilePattern.
func (r SearchRequest) Pattern() string {
	if r.FilePattern == "" {
		return DefaultFilePattern
	}
	return r.FilePattern
}

// EffectiveLimit returns the match limit with 0 mapped to math.MaxInt64.
func (r SearchRequest) EffectiveLimit() int64 {
	if r.Limit <= 0 {
		return math.MaxInt64
	}
	return r.Limit
}

// Unlimited reports whether the request has no match limit.
func (r SearchRequest) Unlimited() bool {
	return r.Limit <= 0
}
