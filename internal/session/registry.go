// Package session records whether a background serial reader should be
// running, and for which port.
//
// Every activation gets its own Session handle with its own flag. Stopping
// flips the flag of the current handle; a reader polls only the handle it was
// started with, so a stale reader can never be revived by a later activation.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is the handle a reader polls to decide whether to keep reading.
type Session struct {
	id       uuid.UUID
	port     string
	started  time.Time
	running  atomic.Bool
	released chan struct{}
	once     sync.Once
}

func newSession(port string) *Session {
	s := &Session{
		id:       uuid.New(),
		port:     port,
		started:  time.Now(),
		released: make(chan struct{}),
	}
	s.running.Store(true)
	return s
}

// ID identifies the monitoring session in events and logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Port is the device path the session was activated for.
func (s *Session) Port() string { return s.port }

// Started is when the session was activated.
func (s *Session) Started() time.Time { return s.started }

// Active reports whether the reader should keep running.
func (s *Session) Active() bool { return s.running.Load() }

// Stop clears the flag. It is idempotent and never blocks.
func (s *Session) Stop() { s.running.Store(false) }

// Release is called by the reader once it has closed the port. It also
// clears the flag, so a reader that exits on its own (open failure) leaves
// the session inactive.
func (s *Session) Release() {
	s.running.Store(false)
	s.once.Do(func() { close(s.released) })
}

// Released is closed after the reader has let go of the port.
func (s *Session) Released() <-chan struct{} { return s.released }

// closedChan is shared by every RequestStop call that finds nothing to stop.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Registry owns the current session handle. The zero value is ready to use.
//
// Every stop request advances a generation counter. A caller that stops,
// waits, and then starts again uses the generation to find out whether
// someone else asked for a stop in between.
type Registry struct {
	mu      sync.Mutex
	current atomic.Pointer[Session]
	stops   uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Activate installs a new active session for port and returns it. Any
// previous session is stopped first.
func (r *Registry) Activate(port string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activateLocked(port)
}

func (r *Registry) activateLocked(port string) *Session {
	s := newSession(port)
	if prev := r.current.Swap(s); prev != nil {
		prev.Stop()
	}
	return s
}

// RequestStop clears the current session's flag and returns a channel that
// is closed once its reader has released the port. With nothing to stop the
// returned channel is already closed. Idempotent, never blocks.
func (r *Registry) RequestStop() <-chan struct{} {
	released, _ := r.BeginRestart()
	return released
}

// BeginRestart is RequestStop for callers that intend to activate again
// later. The returned generation is passed to ActivateIf.
func (r *Registry) BeginRestart() (<-chan struct{}, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stops++
	s := r.current.Load()
	if s == nil {
		return closedChan, r.stops
	}
	s.Stop()
	return s.Released(), r.stops
}

// ActivateIf activates a session for port unless a stop was requested after
// generation gen was handed out. ok is false when activation was skipped.
func (r *Registry) ActivateIf(port string, gen uint64) (s *Session, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stops != gen {
		return nil, false
	}
	return r.activateLocked(port), true
}

// Current returns the most recently activated session, active or not.
func (r *Registry) Current() *Session {
	return r.current.Load()
}

// Active reports whether any reader should be reading right now.
func (r *Registry) Active() bool {
	s := r.current.Load()
	return s != nil && s.Active()
}
