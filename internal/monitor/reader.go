// Package monitor streams newline-delimited text from a serial port to an
// event sink.
//
// A Task owns its port for its whole lifetime. It keeps reading while its
// session is active, emits one serial-message event per line, and paces
// emission so a flood of device output cannot swamp the UI.
package monitor

import (
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	serial "github.com/FelipeSilva10/longboard-IDE"
	"github.com/FelipeSilva10/longboard-IDE/internal/events"
	"github.com/FelipeSilva10/longboard-IDE/internal/session"
)

// Port is the part of a serial port the reader needs. Read must return
// (0, nil) or an error after a short timeout when no data is available.
type Port interface {
	io.Reader
	io.Closer
}

// Opener opens a port by device path
type Opener func(path string) (Port, error)

// SerialOpener returns an Opener backed by serial.Open
func SerialOpener(opts ...serial.Option) Opener {
	return func(path string) (Port, error) {
		return serial.Open(path, opts...)
	}
}

// MinEmitInterval is the shortest pause between emitted lines, capping a
// reader at 50 lines per second.
const MinEmitInterval = 20 * time.Millisecond

// Config tunes a reader. The zero value of each field selects its default.
type Config struct {
	LineLimit      int           // unterminated text ceiling in bytes, default 4000
	EmitInterval   time.Duration // pause after each emitted line, default 20ms
	IdleInterval   time.Duration // pause after an empty or failed read, default 10ms
	ReadBufferSize int           // bytes per read call, default 1024
}

// DefaultConfig caps emission at 50 lines per second
func DefaultConfig() Config {
	return Config{
		LineLimit:      DefaultLineLimit,
		EmitInterval:   MinEmitInterval,
		IdleInterval:   10 * time.Millisecond,
		ReadBufferSize: 1024,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LineLimit <= 0 {
		c.LineLimit = d.LineLimit
	}
	if c.EmitInterval <= 0 {
		c.EmitInterval = d.EmitInterval
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = d.IdleInterval
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	return c
}

// Stats summarises a finished task
type Stats struct {
	BytesRead      int
	LinesEmitted   int
	Overflows      int
	DiscardedBytes int
	ReadErrors     int
}

// Task is a handle on one reader goroutine
type Task struct {
	session *session.Session
	open    Opener
	sink    events.Sink
	cfg     Config
	log     *zap.SugaredLogger

	done  chan struct{}
	stats Stats
}

// New prepares a task for sess without starting it
func New(sess *session.Session, open Opener, sink events.Sink, cfg Config, log *zap.SugaredLogger) *Task {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if sink == nil {
		sink = events.Discard
	}
	return &Task{
		session: sess,
		open:    open,
		sink:    sink,
		cfg:     cfg.withDefaults(),
		log:     log.With("session", sess.ID().String(), "port", sess.Port()),
		done:    make(chan struct{}),
	}
}

// Start creates a task and runs it in a new goroutine
func Start(sess *session.Session, open Opener, sink events.Sink, cfg Config, log *zap.SugaredLogger) *Task {
	t := New(sess, open, sink, cfg, log)
	go t.Run()
	return t
}

// Session returns the session the task polls
func (t *Task) Session() *session.Session { return t.session }

// Done is closed after the task has closed its port and released the session
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task has finished
func (t *Task) Wait() { <-t.done }

// Stats returns counters for the task. Only meaningful after Done is closed.
func (t *Task) Stats() Stats { return t.stats }

// Run opens the port and reads until the session is stopped. It returns
// immediately, after a single serial-error event, if the port cannot be opened.
func (t *Task) Run() {
	defer close(t.done)
	defer t.session.Release()

	port, err := t.open(t.session.Port())
	if err != nil {
		openErr := &PortOpenError{Port: t.session.Port(), Err: err}
		t.log.Warnw("monitor could not open port", "error", err)
		t.emit(events.SerialError, openErr.Error())
		return
	}
	t.log.Infow("monitor started")

	defer func() {
		if err := port.Close(); err != nil && !errors.Is(err, serial.ErrPortClosed) {
			t.log.Warnw("closing port failed", "error", err)
		}
		t.log.Infow("monitor stopped",
			"bytes", t.stats.BytesRead,
			"lines", t.stats.LinesEmitted,
			"overflows", t.stats.Overflows,
			"read_errors", t.stats.ReadErrors)
	}()

	t.loop(port)
}

func (t *Task) loop(port Port) {
	buf := make([]byte, t.cfg.ReadBufferSize)
	lines := NewLineBuffer(t.cfg.LineLimit)

	// The flag is checked once per read; lines already read are always
	// drained before a stop takes effect.
	for t.session.Active() {
		n, err := port.Read(buf)
		if err != nil || n <= 0 {
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrDeadlineExceeded) {
				t.stats.ReadErrors++
				t.log.Debugw("read failed, retrying", "error", err)
			}
			time.Sleep(t.cfg.IdleInterval)
			continue
		}

		t.stats.BytesRead += n
		lines.Write(buf[:n])

		for {
			line, ok := lines.Next()
			if !ok {
				break
			}
			t.emit(events.SerialMessage, line)
			t.stats.LinesEmitted++
			time.Sleep(t.cfg.EmitInterval)
		}

		if lines.Enforce() {
			t.stats.Overflows++
			t.log.Debugw("unterminated input over limit discarded", "limit", t.cfg.LineLimit)
		}
	}
	t.stats.DiscardedBytes = lines.Discarded()
}

func (t *Task) emit(kind events.Kind, text string) {
	t.sink.Emit(events.Event{
		Kind:    kind,
		Session: t.session.ID(),
		Port:    t.session.Port(),
		Text:    text,
		Time:    time.Now(),
	})
}
