// Package bridge is the command surface the user interface drives: upload a
// sketch, start and stop the serial monitor, list ports. Monitor output is
// delivered asynchronously through an events.Sink.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	serial "github.com/FelipeSilva10/longboard-IDE"
	"github.com/FelipeSilva10/longboard-IDE/internal/events"
	"github.com/FelipeSilva10/longboard-IDE/internal/flash"
	"github.com/FelipeSilva10/longboard-IDE/internal/monitor"
	"github.com/FelipeSilva10/longboard-IDE/internal/session"
)

// SuccessMessage is returned by UploadCode when the board accepted the sketch
const SuccessMessage = "Upload complete. The board is now running the new code."

// ErrNoPort is returned by StartSerial when no port was given
var ErrNoPort = errors.New("no serial port selected")

// ErrStartCanceled is returned by StartSerial when a stop or an upload was
// requested while it waited for the previous reader to settle.
var ErrStartCanceled = errors.New("monitor start canceled by a later stop")

// EnumerationError means the system's serial ports could not be listed
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("could not list serial ports: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// Flasher compiles and uploads a job
type Flasher interface {
	Flash(ctx context.Context, job flash.Job) (*flash.Result, error)
}

// Bridge ties the session registry, the flash orchestrator and the monitor
// task together. It is safe for concurrent use.
type Bridge struct {
	registry *session.Registry
	flasher  Flasher
	open     monitor.Opener
	sink     events.Sink
	list     func() ([]string, error)
	log      *zap.SugaredLogger

	monitorCfg    monitor.Config
	monitorSettle time.Duration

	mu   sync.Mutex
	task *monitor.Task
}

// Option configures a Bridge
type Option func(*Bridge)

// WithOpener replaces the function used to open monitor ports
func WithOpener(open monitor.Opener) Option {
	return func(b *Bridge) { b.open = open }
}

// WithMonitorConfig sets the reader's pacing and limits
func WithMonitorConfig(cfg monitor.Config) Option {
	return func(b *Bridge) { b.monitorCfg = cfg }
}

// WithMonitorSettle sets the pause between stopping an old reader and starting a new one
func WithMonitorSettle(d time.Duration) Option {
	return func(b *Bridge) { b.monitorSettle = d }
}

// WithPortLister replaces USB port discovery
func WithPortLister(list func() ([]string, error)) Option {
	return func(b *Bridge) { b.list = list }
}

// WithLogger sets the logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(b *Bridge) {
		if log != nil {
			b.log = log
		}
	}
}

// New returns a bridge. registry must be the one flasher stops readers through.
func New(registry *session.Registry, flasher Flasher, sink events.Sink, opts ...Option) *Bridge {
	if sink == nil {
		sink = events.Discard
	}
	b := &Bridge{
		registry:      registry,
		flasher:       flasher,
		open:          monitor.SerialOpener(serial.WithFlushOnOpen()),
		sink:          sink,
		list:          serial.ListUSBPorts,
		log:           zap.NewNop().Sugar(),
		monitorCfg:    monitor.DefaultConfig(),
		monitorSettle: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// UploadCode stops any running monitor, then compiles source for board and
// uploads it to port. The monitor is not restarted.
func (b *Bridge) UploadCode(ctx context.Context, source, board, port string) (string, error) {
	res, err := b.flasher.Flash(ctx, flash.Job{Source: source, Board: board, Port: port})
	if err != nil {
		b.log.Infow("upload failed", "port", port, "board", board, "error", err)
		return "", err
	}
	b.log.Infow("upload succeeded", "port", port, "fqbn", res.FQBN, "elapsed", res.Elapsed)
	return SuccessMessage, nil
}

// StartSerial stops any running monitor and schedules a new one on port. It
// returns once the reader is scheduled; open failures arrive as a
// serial-error event. A StopSerial or UploadCode issued during the settle
// delay wins: no reader is started and ErrStartCanceled is returned.
func (b *Bridge) StartSerial(port string) error {
	if port == "" {
		return ErrNoPort
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, gen := b.registry.BeginRestart()
	if b.monitorSettle > 0 {
		time.Sleep(b.monitorSettle)
	}

	sess, ok := b.registry.ActivateIf(port, gen)
	if !ok {
		b.log.Debugw("monitor start superseded by a stop", "port", port)
		return ErrStartCanceled
	}
	b.task = monitor.Start(sess, b.open, b.sink, b.monitorCfg, b.log)
	b.log.Debugw("monitor scheduled", "port", port, "session", sess.ID().String())
	return nil
}

// StopSerial asks the running monitor to stop. It never fails and does not
// wait for the reader to exit.
func (b *Bridge) StopSerial() error {
	b.registry.RequestStop()
	return nil
}

// GetAvailablePorts lists USB serial ports in lexicographic order
func (b *Bridge) GetAvailablePorts() ([]string, error) {
	ports, err := b.list()
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}
	if ports == nil {
		ports = []string{}
	}
	return ports, nil
}

// Task returns the most recently started monitor task, or nil
func (b *Bridge) Task() *monitor.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.task
}

// Monitoring reports whether a monitor session is active
func (b *Bridge) Monitoring() bool {
	return b.registry.Active()
}
