package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harrison/tgrep/internal/display"
	"github.com/harrison/tgrep/internal/models"
)

// MenuReader defines interface for reading user input (for testing)
type MenuReader interface {
	ReadString(delim byte) (string, error)
}

// DefaultMenuReader wraps bufio.Reader
type DefaultMenuReader struct {
	reader *bufio.Reader
}

// NewDefaultMenuReader creates a MenuReader over in.
func NewDefaultMenuReader(in io.Reader) *DefaultMenuReader {
	return &DefaultMenuReader{reader: bufio.NewReader(in)}
}

func (d *DefaultMenuReader) ReadString(delim byte) (string, error) {
	return d.reader.ReadString(delim)
}

// readAnswer writes question to out and returns the trimmed reply.
// A final line without a newline still counts as an answer; an error is
// only returned when nothing could be read.
func readAnswer(reader MenuReader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// isYes reports whether answer is an affirmative y/yes reply.
func isYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// promptForRequest asks for every search parameter in turn.
//
// Empty answers select the defaults: defaultPattern, no recursion, no limit
// and cwd. A limit that is not a positive number means no limit. A directory
// that does not exist keeps cwd and shows a warning. The returned request has
// an empty term when the user gave none or the input ended.
func promptForRequest(reader MenuReader, out io.Writer, defaultPattern, cwd string, useColor bool) models.SearchRequest {
	req := models.NewSearchRequest("", cwd)
	if defaultPattern != "" {
		req.FilePattern = defaultPattern
	}

	fmt.Fprintln(out, "No arguments provided. Please enter the following:")

	term, err := readAnswer(reader, out, "Enter search term: ")
	if err != nil {
		return req
	}
	req.SearchTerm = term

	if pattern, err := readAnswer(reader, out, fmt.Sprintf("Enter file pattern (default %s): ", req.Pattern())); err == nil && pattern != "" {
		req.FilePattern = pattern
	}

	if answer, err := readAnswer(reader, out, "Do you want to search recursively? (y/n): "); err == nil {
		req.Recursive = isYes(answer)
	}

	if answer, err := readAnswer(reader, out, "Enter the result limit (default: no limit): "); err == nil {
		req.Limit = parseLimit(answer)
	}

	if answer, err := readAnswer(reader, out, "Enter the directory path to search (default current directory): "); err == nil && answer != "" {
		dir, ok := resolveDirectory(answer, cwd)
		if !ok {
			display.WarnInvalidDirectory(answer).Display(out, useColor)
		}
		req.Directory = dir
	}

	return req
}

// parseLimit converts a limit answer; anything but a positive integer is
// "no limit".
func parseLimit(answer string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(answer), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// resolveDirectory returns dir when it names an existing directory and cwd
// otherwise. ok is false when dir was given but rejected.
func resolveDirectory(dir, cwd string) (resolved string, ok bool) {
	if dir == "" {
		return cwd, true
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return cwd, false
	}

	return dir, true
}

// askSearchAgain asks whether to run another round. End of input means no.
func askSearchAgain(reader MenuReader, out io.Writer) bool {
	answer, err := readAnswer(reader, out, "\nDo you want to search again? (y/n): ")
	if err != nil {
		return false
	}
	return isYes(answer)
}
