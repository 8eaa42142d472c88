// Package keypress watches the terminal for a single cancel key while a
// search is running.
//
// On a terminal the listener switches stdin to raw mode so the key is seen
// without Enter, and reads through a cancelable reader so stopping it never
// swallows input meant for the next prompt.
package keypress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/mattn/go-isatty"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// DefaultCancelKey is the key that cancels a running search.
const DefaultCancelKey = 'c'

// ctrlC arrives as a byte in raw mode instead of raising SIGINT.
const ctrlC = 0x03

// ErrAlreadyStarted is returned by Start when the listener is running.
var ErrAlreadyStarted = errors.New("keypress listener already started")

// Listener reports a cancel key press from an input stream.
type Listener struct {
	in        io.Reader
	fd        int
	terminal  bool
	cancelKey byte

	mu       sync.Mutex
	reader   cancelreader.CancelReader
	oldState *term.State
	done     chan struct{}
	raw      atomic.Bool
}

// New creates a Listener reading from in. Raw mode is only used when in is a
// terminal. cancelKey is matched case-insensitively; Ctrl+C always cancels.
func New(in io.Reader, cancelKey rune) *Listener {
	if cancelKey == 0 || cancelKey > unicode.MaxASCII {
		cancelKey = DefaultCancelKey
	}

	l := &Listener{
		in:        in,
		fd:        -1,
		cancelKey: byte(unicode.ToLower(cancelKey)),
	}

	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		l.terminal = true
		l.fd = int(f.Fd())
	}

	return l
}

// Interactive reports whether the input is a terminal.
func (l *Listener) Interactive() bool {
	return l.terminal
}

// CancelKey returns the configured cancel key.
func (l *Listener) CancelKey() rune {
	return rune(l.cancelKey)
}

// Start begins watching for the cancel key and calls onCancel at most once
// when it is pressed. Other keys are ignored.
func (l *Listener) Start(onCancel func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reader != nil {
		return ErrAlreadyStarted
	}

	if l.terminal {
		state, err := term.MakeRaw(l.fd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		l.oldState = state
		l.raw.Store(true)
	}

	reader, err := cancelreader.NewReader(l.in)
	if err != nil {
		l.restore()
		return fmt.Errorf("failed to open key reader: %w", err)
	}

	l.reader = reader
	l.done = make(chan struct{})
	go l.watch(reader, onCancel, l.done)

	return nil
}

func (l *Listener) watch(r io.Reader, onCancel func(), done chan<- struct{}) {
	defer close(done)

	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if l.isCancel(b) {
				if onCancel != nil {
					onCancel()
				}
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (l *Listener) isCancel(b byte) bool {
	if b == ctrlC {
		return true
	}
	return b < unicode.MaxASCII && byte(unicode.ToLower(rune(b))) == l.cancelKey
}

// Stop ends the watch and restores the terminal. It is safe to call when the
// listener was never started or has already seen the cancel key.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reader == nil {
		return nil
	}

	// A reader that cannot be interrupted is left to finish on its own
	if l.reader.Cancel() {
		<-l.done
	}
	l.reader.Close()
	l.reader = nil

	return l.restore()
}

func (l *Listener) restore() error {
	if l.oldState == nil {
		return nil
	}
	l.raw.Store(false)
	err := term.Restore(l.fd, l.oldState)
	l.oldState = nil
	if err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}

// Wrap returns a writer that turns "\n" into "\r\n" while the terminal is in
// raw mode, where output post-processing is off. Outside raw mode it writes
// through unchanged.
func (l *Listener) Wrap(w io.Writer) io.Writer {
	return &crlfWriter{listener: l, w: w}
}

type crlfWriter struct {
	listener *Listener
	w        io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if !c.listener.raw.Load() {
		return c.w.Write(p)
	}

	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Fd exposes the wrapped file descriptor so color detection still sees the
// terminal behind the wrapper.
func (c *crlfWriter) Fd() uintptr {
	if f, ok := c.w.(interface{ Fd() uintptr }); ok {
		return f.Fd()
	}
	return ^uintptr(0)
}
