package history

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Format is an export output format.
type Format string

// Supported export formats
const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatYAML     Format = "yaml"
)

// ParseFormat converts a --format value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use md, html or yaml)", s)
	}
}

// Render formats entries for export.
func Render(entries []Entry, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(renderMarkdown(entries)), nil
	case FormatHTML:
		return renderHTML(entries)
	case FormatYAML:
		return renderYAML(entries)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func renderMarkdown(entries []Entry) string {
	var b strings.Builder

	b.WriteString("# tgrep search history\n\n")

	if len(entries) == 0 {
		b.WriteString("No searches recorded.\n")
		return b.String()
	}

	b.WriteString("| When | Term | Pattern | Directory | Recursive | Limit | Matches | Outcome | Duration |\n")
	b.WriteString("|---|---|---|---|---|---:|---:|---|---:|\n")

	for _, e := range entries {
		limit := "none"
		if e.Limit > 0 {
			limit = fmt.Sprintf("%d", e.Limit)
		}
		recursive := "no"
		if e.Recursive {
			recursive = "yes"
		}

		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %d | %s | %s |\n",
			e.CreatedAt.Format(time.RFC3339),
			escapeCell(e.Term),
			escapeCell(e.FilePattern),
			escapeCell(e.Directory),
			recursive,
			limit,
			e.TotalMatches,
			e.Outcome,
			e.Duration.Round(time.Millisecond),
		)
	}

	return b.String()
}

// escapeCell backslash-escapes characters that would change the meaning of a
// Markdown table cell.
func escapeCell(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '|', '*', '_', '`', '[', ']', '<', '>', '#', '~', '&':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func renderHTML(entries []Entry) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(renderMarkdown(entries)), &body); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>tgrep search history</title>\n</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")

	return doc.Bytes(), nil
}

type yamlEntry struct {
	SearchID      string    `yaml:"search_id"`
	Term          string    `yaml:"term"`
	FilePattern   string    `yaml:"file_pattern"`
	Directory     string    `yaml:"directory"`
	Recursive     bool      `yaml:"recursive"`
	Limit         int64     `yaml:"limit,omitempty"`
	TotalMatches  int64     `yaml:"total_matches"`
	Outcome       string    `yaml:"outcome"`
	Candidates    int       `yaml:"candidates"`
	FilesSearched int       `yaml:"files_searched"`
	FilesFailed   int       `yaml:"files_failed"`
	Duration      string    `yaml:"duration"`
	CreatedAt     time.Time `yaml:"created_at"`
}

type yamlExport struct {
	Searches []yamlEntry `yaml:"searches"`
}

func renderYAML(entries []Entry) ([]byte, error) {
	out := yamlExport{Searches: make([]yamlEntry, 0, len(entries))}
	for _, e := range entries {
		out.Searches = append(out.Searches, yamlEntry{
			SearchID:      e.SearchID,
			Term:          e.Term,
			FilePattern:   e.FilePattern,
			Directory:     e.Directory,
			Recursive:     e.Recursive,
			Limit:         e.Limit,
			TotalMatches:  e.TotalMatches,
			Outcome:       e.Outcome,
			Candidates:    e.Candidates,
			FilesSearched: e.FilesSearched,
			FilesFailed:   e.FilesFailed,
			Duration:      e.Duration.String(),
			CreatedAt:     e.CreatedAt,
		})
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("render yaml: %w", err)
	}
	return data, nil
}

// WriteExport writes data to path while holding an exclusive lock on
// path+".lock", through a temp file renamed into place, so concurrent exports
// never interleave and readers never see a partial file.
func WriteExport(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	committed := false
	defer func() {
		if !committed {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	committed = true
	return nil
}
