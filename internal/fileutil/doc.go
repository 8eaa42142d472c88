// Package fileutil enumerates the candidate files of a search.
//
// ScanDirectory walks a root directory and returns the files whose base name
// matches a shell glob, either from the root only or from the whole subtree.
//
//	result, err := fileutil.ScanDirectory("logs", fileutil.ScanOptions{
//	    Pattern:   "*.txt",
//	    Recursive: true,
//	})
//	if err != nil {
//	    var dirErr *fileutil.DirectoryError
//	    if errors.As(err, &dirErr) {
//	        // root missing or unreadable: abort the search
//	    }
//	}
//	for _, path := range result.Files {
//	    fmt.Println(path)
//	}
//
// # Ordering
//
// Files are sorted lexicographically so repeated searches over the same tree
// print matches in the same order when they run without interruption.
//
// # Errors
//
// Only a problem with the root is fatal (*DirectoryError) along with a
// malformed glob. Unreadable subdirectories are recorded in ScanResult.Errors
// and the walk continues. An empty result is not an error.
package fileutil
