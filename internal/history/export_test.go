package history

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func exportEntries() []Entry {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []Entry{
		{
			ID:            2,
			SearchID:      "b",
			Term:          "a|b <tag>",
			FilePattern:   "*.txt",
			Directory:     "/data",
			Recursive:     true,
			Limit:         5,
			TotalMatches:  5,
			Outcome:       "LIMIT_REACHED",
			FilesSearched: 3,
			Duration:      250 * time.Millisecond,
			CreatedAt:     created,
		},
		{
			ID:           1,
			SearchID:     "a",
			Term:         "hello",
			FilePattern:  "*.md",
			Directory:    ".",
			TotalMatches: 0,
			Outcome:      "COMPLETED",
			Duration:     2 * time.Second,
			CreatedAt:    created.Add(-time.Hour),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"json", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Markdown(t *testing.T) {
	out, err := Render(exportEntries(), FormatMarkdown)
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# tgrep search history\n"))
	assert.Contains(t, md, "| When | Term |")
	assert.Contains(t, md, `a\|b \<tag\>`, "pipes and angle brackets are escaped")
	assert.Contains(t, md, "| 2026-01-02T03:04:05Z |")
	assert.Contains(t, md, "| yes | 5 | 5 | LIMIT_REACHED | 250ms |")
	assert.Contains(t, md, "| no | none | 0 | COMPLETED | 2s |")
}

func TestRender_MarkdownEmpty(t *testing.T) {
	out, err := Render(nil, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No searches recorded.")
}

func TestRender_HTML(t *testing.T) {
	out, err := Render(exportEntries(), FormatHTML)
	require.NoError(t, err)

	html := string(out)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<h1>tgrep search history</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>hello</td>")
	assert.Contains(t, html, "a|b &lt;tag&gt;", "user text is escaped, never raw HTML")
	assert.NotContains(t, html, "<tag>")
}

func TestRender_YAML(t *testing.T) {
	out, err := Render(exportEntries(), FormatYAML)
	require.NoError(t, err)

	var doc struct {
		Searches []struct {
			SearchID  string    `yaml:"search_id"`
			Term      string    `yaml:"term"`
			Limit     int64     `yaml:"limit"`
			Outcome   string    `yaml:"outcome"`
			Duration  string    `yaml:"duration"`
			CreatedAt time.Time `yaml:"created_at"`
		} `yaml:"searches"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))

	require.Len(t, doc.Searches, 2)
	assert.Equal(t, "b", doc.Searches[0].SearchID)
	assert.Equal(t, "a|b <tag>", doc.Searches[0].Term)
	assert.Equal(t, int64(5), doc.Searches[0].Limit)
	assert.Equal(t, "250ms", doc.Searches[0].Duration)
	assert.Equal(t, "COMPLETED", doc.Searches[1].Outcome)
	assert.True(t, doc.Searches[0].CreatedAt.Equal(exportEntries()[0].CreatedAt))
	assert.NotContains(t, string(out), "limit: 0", "unlimited searches omit the limit")
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render(exportEntries(), Format("pdf"))
	assert.Error(t, err)
}

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "history.md")

	require.NoError(t, WriteExport(path, []byte("first")))
	require.NoError(t, WriteExport(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestWriteExport_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.yaml")
	payloads := []string{strings.Repeat("a", 4096), strings.Repeat("b", 4096), strings.Repeat("c", 4096)}

	var wg sync.WaitGroup
	for _, p := range payloads {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			assert.NoError(t, WriteExport(path, []byte(p)))
		}(p)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, payloads, string(data), "file holds exactly one complete payload")
}
