package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Pattern is a shell glob matched against file base names (e.g. "*.txt").
	// Empty matches every file.
	Pattern string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to skip (e.g., ".git", "node_modules")
	ExcludeDirs []string
	// SkipHidden skips directories whose name starts with "."
	SkipHidden bool
	// MaxDepth limits recursion depth (0 = unlimited, 1 = current dir only)
	MaxDepth int
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the matched file paths, sorted lexicographically
	Files []string
	// Errors contains non-fatal errors encountered below the root
	Errors []error
}

// DirectoryError is returned when the root directory cannot be searched.
type DirectoryError struct {
	Path  string
	Cause error
}

func (e *DirectoryError) Error() string {
	if e.Cause == nil {
		return "not a directory: " + e.Path
	}
	if errors.Is(e.Cause, fs.ErrNotExist) {
		return "directory does not exist: " + e.Path
	}
	return fmt.Sprintf("cannot read directory %s: %v", e.Path, e.Cause)
}

func (e *DirectoryError) Unwrap() error { return e.Cause }

// ScanDirectory lists the files under dir whose base name matches opts.Pattern.
// A missing, non-directory or unreadable root yields a *DirectoryError and no
// result. Errors below the root are collected in ScanResult.Errors.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &DirectoryError{Path: dir, Cause: err}
	}
	if !info.IsDir() {
		return nil, &DirectoryError{Path: dir}
	}

	// Validate the glob once so a bad pattern fails before walking
	if opts.Pattern != "" {
		if _, err := filepath.Match(opts.Pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", opts.Pattern, err)
		}
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	excludeMap := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return &DirectoryError{Path: dir, Cause: err}
			}
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}

		if path == dir {
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if excludeMap[name] || (opts.SkipHidden && strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if !opts.Recursive {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 {
				relPath, _ := filepath.Rel(dir, path)
				depth := strings.Count(relPath, string(filepath.Separator)) + 1
				if depth >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !matchesPattern(opts.Pattern, d.Name()) {
			return nil
		}

		// FIFOs and devices block on open; only regular files are searched
		regular, err := isRegularFile(path, d)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if !regular {
			result.Errors = append(result.Errors, fmt.Errorf("skipping %s: not a regular file", path))
			return nil
		}

		result.Files = append(result.Files, path)
		return nil
	})
	if err != nil {
		var dirErr *DirectoryError
		if errors.As(err, &dirErr) {
			return nil, dirErr
		}
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)

	return result, nil
}

// isRegularFile reports whether the entry is a regular file, following symlinks.
func isRegularFile(path string, d fs.DirEntry) (bool, error) {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular(), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// matchesPattern reports whether name matches the glob. The pattern was
// validated up front, so Match cannot fail here.
func matchesPattern(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, _ := filepath.Match(pattern, name)
	return ok
}
