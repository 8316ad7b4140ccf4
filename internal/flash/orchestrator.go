// Package flash compiles a sketch and uploads it to a board without racing
// a serial monitor for the port.
//
// Flash runs a fixed sequence: stop the monitor and wait for the port to be
// let go, resolve the board, stage the sketch, compile, upload. Each step is
// a precondition for the next and nothing is retried.
package flash

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FelipeSilva10/longboard-IDE/internal/session"
)

// Handoff selects how Flash waits for a monitor to let go of the port
type Handoff int

const (
	// HandoffSettle sleeps a fixed settle delay after requesting the stop.
	// Nothing confirms the reader is gone: a reader blocked in a read may
	// still hold the port when the delay ends.
	HandoffSettle Handoff = iota
	// HandoffConfirmed waits until the reader has closed the port (bounded
	// by a release timeout), then sleeps a short settle for the OS.
	HandoffConfirmed
)

func (h Handoff) String() string {
	switch h {
	case HandoffConfirmed:
		return "confirmed"
	default:
		return "settle"
	}
}

// ParseHandoff accepts "settle" or "confirmed"
func ParseHandoff(s string) (Handoff, bool) {
	switch s {
	case "", "settle":
		return HandoffSettle, true
	case "confirmed":
		return HandoffConfirmed, true
	default:
		return HandoffSettle, false
	}
}

// Job is one upload request
type Job struct {
	Source string
	Board  string
	Port   string
}

// Result describes a successful flash
type Result struct {
	FQBN          string
	KnownBoard    bool
	SketchPath    string
	CompileOutput string
	UploadOutput  string
	Elapsed       time.Duration
}

// Orchestrator runs flash jobs against a registry shared with the monitor
type Orchestrator struct {
	registry  *session.Registry
	toolchain Toolchain
	workspace Workspace
	boards    BoardTable
	log       *zap.SugaredLogger

	handoff         Handoff
	settleDelay     time.Duration
	confirmedSettle time.Duration
	releaseTimeout  time.Duration

	busy sync.Mutex
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithWorkspace overrides the staging directory
func WithWorkspace(w Workspace) Option {
	return func(o *Orchestrator) { o.workspace = w }
}

// WithBoards overrides the board table
func WithBoards(t BoardTable) Option {
	return func(o *Orchestrator) { o.boards = t }
}

// WithHandoff selects the handoff mode
func WithHandoff(h Handoff) Option {
	return func(o *Orchestrator) { o.handoff = h }
}

// WithSettleDelay sets the fixed wait used by HandoffSettle
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.settleDelay = d }
}

// WithReleaseTimeout bounds the wait used by HandoffConfirmed
func WithReleaseTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.releaseTimeout = d }
}

// WithConfirmedSettle sets the short wait after a confirmed release
func WithConfirmedSettle(d time.Duration) Option {
	return func(o *Orchestrator) { o.confirmedSettle = d }
}

// WithLogger sets the logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// New returns an orchestrator that stops readers through registry and runs tools through toolchain
func New(registry *session.Registry, toolchain Toolchain, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:        registry,
		toolchain:       toolchain,
		workspace:       DefaultWorkspace(),
		boards:          DefaultBoards(),
		log:             zap.NewNop().Sugar(),
		handoff:         HandoffSettle,
		settleDelay:     500 * time.Millisecond,
		confirmedSettle: 50 * time.Millisecond,
		releaseTimeout:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Boards returns the board table in use
func (o *Orchestrator) Boards() BoardTable { return o.boards }

// Workspace returns the staging workspace
func (o *Orchestrator) Workspace() Workspace { return o.workspace }

// Flash stops any monitor, stages job.Source, compiles it and uploads it to job.Port.
// Failures are returned as *FileWriteError, *CompileError or *UploadError.
func (o *Orchestrator) Flash(ctx context.Context, job Job) (*Result, error) {
	if !o.busy.TryLock() {
		return nil, ErrUploadInProgress
	}
	defer o.busy.Unlock()

	start := time.Now()
	log := o.log.With("port", job.Port, "board", job.Board)

	if err := o.releasePort(ctx, log); err != nil {
		return nil, err
	}

	fqbn, known := o.boards.Resolve(job.Board)
	if !known {
		log.Warnw("unknown board, using default", "fqbn", fqbn)
	}

	path, err := o.workspace.Stage(job.Source)
	if err != nil {
		log.Errorw("staging sketch failed", "error", err)
		return nil, err
	}

	log.Infow("compiling", "fqbn", fqbn, "sketch", path)
	compiled, err := o.toolchain.Compile(ctx, fqbn, o.workspace.Dir)
	if err != nil {
		return nil, &CompileError{FQBN: fqbn, Err: err}
	}
	if !compiled.OK {
		log.Infow("compile failed", "exit_code", compiled.ExitCode, "elapsed", compiled.Elapsed)
		return nil, &CompileError{FQBN: fqbn, Diagnostic: compiled.Diagnostic}
	}

	log.Infow("uploading", "fqbn", fqbn, "compile_elapsed", compiled.Elapsed)
	uploaded, err := o.toolchain.Upload(ctx, fqbn, job.Port, o.workspace.Dir)
	if err != nil {
		return nil, &UploadError{Port: job.Port, FQBN: fqbn, Err: err}
	}
	if !uploaded.OK {
		log.Infow("upload failed", "exit_code", uploaded.ExitCode, "elapsed", uploaded.Elapsed)
		return nil, &UploadError{Port: job.Port, FQBN: fqbn, Diagnostic: uploaded.Diagnostic}
	}

	result := &Result{
		FQBN:          fqbn,
		KnownBoard:    known,
		SketchPath:    path,
		CompileOutput: compiled.Output,
		UploadOutput:  uploaded.Output,
		Elapsed:       time.Since(start),
	}
	log.Infow("flash complete", "elapsed", result.Elapsed)
	return result, nil
}

// releasePort stops the monitor and waits according to the handoff mode
func (o *Orchestrator) releasePort(ctx context.Context, log *zap.SugaredLogger) error {
	released := o.registry.RequestStop()

	switch o.handoff {
	case HandoffConfirmed:
		timer := time.NewTimer(o.releaseTimeout)
		defer timer.Stop()
		select {
		case <-released:
		case <-timer.C:
			log.Warnw("monitor did not release the port in time, continuing", "timeout", o.releaseTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
		return sleepContext(ctx, o.confirmedSettle)
	default:
		return sleepContext(ctx, o.settleDelay)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
