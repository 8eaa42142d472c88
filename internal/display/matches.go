package display

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/harrison/tgrep/internal/models"
	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether ANSI colors should be written to w.
// It honors NO_COLOR and --no-color through color.NoColor.
func ColorEnabled(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		return true
	}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// paint returns a color that is forced on or off regardless of the
// process-wide detection, so output to buffers is deterministic.
func paint(useColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// MatchPrinter writes match events to a writer, one line each.
// It is safe for concurrent use.
type MatchPrinter struct {
	// ShowLineNumbers adds ":<lineNo>" after the file path.
	ShowLineNumbers bool

	mu    sync.Mutex
	out   io.Writer
	green *color.Color
}

// NewMatchPrinter creates a MatchPrinter writing to out.
func NewMatchPrinter(out io.Writer, useColor bool) *MatchPrinter {
	return &MatchPrinter{
		out:   out,
		green: paint(useColor, color.FgGreen),
	}
}

// Emit prints event. It implements search.Sink.
func (p *MatchPrinter) Emit(event models.MatchEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var text string
	if p.ShowLineNumbers {
		text = fmt.Sprintf("%s:%d: %s", event.FilePath, event.LineNumber, event.Line)
	} else {
		text = fmt.Sprintf("%s: %s", event.FilePath, event.Line)
	}

	fmt.Fprintln(p.out, p.green.Sprint(text))
}

// Notice writes an uncolored line between matches.
func (p *MatchPrinter) Notice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, message)
}
