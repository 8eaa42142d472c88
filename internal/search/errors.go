package search

import "fmt"

// FileReadError is returned when a candidate file cannot be opened or read.
// It is recovered by the coordinator and never aborts a search.
type FileReadError struct {
	Path  string
	Line  int // Last line read successfully before the failure, 0 if open failed
	Cause error
}

func (e *FileReadError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to read %s after line %d: %v", e.Path, e.Line, e.Cause)
}

func (e *FileReadError) Unwrap() error { return e.Cause }
