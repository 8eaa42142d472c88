package search

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	// DefaultInitialBufferSize is the starting line buffer of the scanner.
	DefaultInitialBufferSize = 64 * 1024
	// DefaultMaxLineBytes caps a single line (minified files, logs without newlines).
	DefaultMaxLineBytes = 10 * 1024 * 1024
)

// LineScanner reads one file at a time and yields its lines that contain a
// search term, ignoring case.
type LineScanner struct {
	initialBufferSize int
	maxLineBytes      int
	open              func(path string) (io.ReadCloser, error)
}

// NewLineScanner creates a LineScanner. maxLineBytes <= 0 selects DefaultMaxLineBytes.
func NewLineScanner(maxLineBytes int) *LineScanner {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	initial := DefaultInitialBufferSize
	if initial > maxLineBytes {
		initial = maxLineBytes
	}
	return &LineScanner{
		initialBufferSize: initial,
		maxLineBytes:      maxLineBytes,
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Scan streams path line by line. For every line containing term it calls
// yield with the 1-based line number and the line text; yield returning false
// ends the scan. stop, when non-nil, is polled before each line is read so a
// long file without matches still notices cancellation.
//
// Open and read failures are returned as *FileReadError. Stopping early is not
// an error.
func (s *LineScanner) Scan(path, term string, stop func() bool, yield func(lineNo int, line string) bool) error {
	f, err := s.open(path)
	if err != nil {
		return &FileReadError{Path: path, Cause: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, s.initialBufferSize), s.maxLineBytes)

	needle := strings.ToLower(term)
	lineNo := 0
	for {
		if stop != nil && stop() {
			return nil
		}
		if !scanner.Scan() {
			break
		}
		lineNo++
		line := scanner.Text()
		if !ContainsFold(line, needle) {
			continue
		}
		if !yield(lineNo, line) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return &FileReadError{Path: path, Line: lineNo, Cause: err}
	}
	return nil
}

// ContainsFold reports whether line contains lowerTerm, comparing
// case-insensitively. lowerTerm must already be lower-cased.
func ContainsFold(line, lowerTerm string) bool {
	if lowerTerm == "" {
		return true
	}
	return strings.Contains(strings.ToLower(line), lowerTerm)
}
