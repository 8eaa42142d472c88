package search

import (
	"sync"
	"sync/atomic"
)

// Signal is a set-once cancellation flag. Any number of goroutines may poll it
// or wait on Done; once triggered it stays triggered.
type Signal struct {
	once  sync.Once
	fired atomic.Bool
	done  chan struct{}
}

// NewSignal returns an untriggered Signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Trigger sets the signal. It returns true only for the call that set it.
func (s *Signal) Trigger() bool {
	triggered := false
	s.once.Do(func() {
		s.fired.Store(true)
		close(s.done)
		triggered = true
	})
	return triggered
}

// Triggered reports whether the signal has been set. It never blocks.
func (s *Signal) Triggered() bool {
	return s.fired.Load()
}

// Done returns a channel that is closed when the signal is triggered.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}
