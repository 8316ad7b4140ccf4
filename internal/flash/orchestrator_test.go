package flash

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/FelipeSilva10/longboard-IDE/internal/session"
)

// fakeToolchain records calls and replays canned results
type fakeToolchain struct {
	mu sync.Mutex

	compile    ToolResult
	compileErr error
	upload     ToolResult
	uploadErr  error

	calls []string
	// onCompile runs inside Compile before it returns
	onCompile func()
	// block, when set, holds Compile until closed
	block chan struct{}
}

func (f *fakeToolchain) Compile(ctx context.Context, fqbn, dir string) (ToolResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "compile "+fqbn+" "+dir)
	hook, block := f.onCompile, f.block
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if block != nil {
		<-block
	}
	return f.compile, f.compileErr
}

func (f *fakeToolchain) Upload(ctx context.Context, fqbn, port, dir string) (ToolResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upload "+fqbn+" "+port+" "+dir)
	return f.upload, f.uploadErr
}

func (f *fakeToolchain) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func okToolchain() *fakeToolchain {
	return &fakeToolchain{
		compile: ToolResult{OK: true, Output: "Sketch uses 924 bytes"},
		upload:  ToolResult{OK: true, Output: "avrdude done"},
	}
}

func newTestOrchestrator(t *testing.T, reg *session.Registry, tc Toolchain, opts ...Option) *Orchestrator {
	t.Helper()
	ws := Workspace{Dir: filepath.Join(t.TempDir(), "sketch"), Name: "sketch"}
	base := []Option{
		WithWorkspace(ws),
		WithSettleDelay(time.Millisecond),
		WithConfirmedSettle(time.Millisecond),
		WithLogger(zaptest.NewLogger(t).Sugar()),
	}
	return New(reg, tc, append(base, opts...)...)
}

func TestFlashSuccess(t *testing.T) {
	tc := okToolchain()
	o := newTestOrchestrator(t, session.NewRegistry(), tc)

	res, err := o.Flash(context.Background(), Job{Source: "void setup(){}\nvoid loop(){}\n", Board: "nano", Port: "/dev/ttyUSB0"})
	if err != nil {
		t.Fatalf("Flash() error = %v", err)
	}
	if res.FQBN != "arduino:avr:nano" || !res.KnownBoard {
		t.Errorf("FQBN = %q known=%v, want arduino:avr:nano known", res.FQBN, res.KnownBoard)
	}
	if res.UploadOutput != "avrdude done" {
		t.Errorf("UploadOutput = %q", res.UploadOutput)
	}

	data, err := os.ReadFile(res.SketchPath)
	if err != nil {
		t.Fatalf("reading staged sketch: %v", err)
	}
	if !strings.Contains(string(data), "void loop") {
		t.Errorf("staged sketch = %q", data)
	}

	dir := o.Workspace().Dir
	want := []string{
		"compile arduino:avr:nano " + dir,
		"upload arduino:avr:nano /dev/ttyUSB0 " + dir,
	}
	calls := tc.Calls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestFlashStopsMonitorBeforeCompile(t *testing.T) {
	reg := session.NewRegistry()
	sess := reg.Activate("/dev/ttyUSB0")

	tc := okToolchain()
	var activeAtCompile bool
	tc.onCompile = func() { activeAtCompile = reg.Active() || sess.Active() }

	o := newTestOrchestrator(t, reg, tc)
	if _, err := o.Flash(context.Background(), Job{Source: "x", Board: "uno", Port: "/dev/ttyUSB0"}); err != nil {
		t.Fatalf("Flash() error = %v", err)
	}
	if activeAtCompile {
		t.Error("monitor session still active when compile started")
	}
}

func TestFlashUnknownBoardFallsBack(t *testing.T) {
	tc := okToolchain()
	o := newTestOrchestrator(t, session.NewRegistry(), tc)

	res, err := o.Flash(context.Background(), Job{Source: "x", Board: "mega", Port: "/dev/ttyACM0"})
	if err != nil {
		t.Fatalf("Flash() error = %v", err)
	}
	if res.FQBN != DefaultFQBN || res.KnownBoard {
		t.Errorf("FQBN = %q known=%v, want %q unknown", res.FQBN, res.KnownBoard, DefaultFQBN)
	}
}

func TestFlashCompileFailureSkipsUpload(t *testing.T) {
	tc := okToolchain()
	tc.compile = ToolResult{OK: false, ExitCode: 1, Diagnostic: "sketch.ino:3:1: error: expected ';' before '}' token\n"}
	o := newTestOrchestrator(t, session.NewRegistry(), tc)

	_, err := o.Flash(context.Background(), Job{Source: "int x = 1\n", Board: "uno", Port: "/dev/ttyUSB0"})

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Flash() error = %v, want *CompileError", err)
	}
	if !strings.Contains(err.Error(), "expected ';'") {
		t.Errorf("error %q does not contain compiler diagnostic", err)
	}
	for _, c := range tc.Calls() {
		if strings.HasPrefix(c, "upload") {
			t.Errorf("upload was called after failed compile: %v", tc.Calls())
		}
	}
}

func TestFlashCompilerLaunchFailure(t *testing.T) {
	tc := okToolchain()
	tc.compileErr = errors.New("exec: \"arduino-cli\": executable file not found in $PATH")
	o := newTestOrchestrator(t, session.NewRegistry(), tc)

	_, err := o.Flash(context.Background(), Job{Source: "x", Board: "uno", Port: "/dev/ttyUSB0"})

	var ce *CompileError
	if !errors.As(err, &ce) || ce.Err == nil {
		t.Fatalf("Flash() error = %v, want *CompileError with launch error", err)
	}
	if !strings.Contains(err.Error(), "could not run the compiler") {
		t.Errorf("error = %q", err)
	}
}

func TestFlashUploadFailure(t *testing.T) {
	tc := okToolchain()
	tc.upload = ToolResult{OK: false, ExitCode: 1, Diagnostic: "avrdude: ser_open(): can't open device \"/dev/ttyUSB3\"\n"}
	o := newTestOrchestrator(t, session.NewRegistry(), tc)

	_, err := o.Flash(context.Background(), Job{Source: "x", Board: "uno", Port: "/dev/ttyUSB3"})

	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("Flash() error = %v, want *UploadError", err)
	}
	msg := err.Error()
	for _, want := range []string{"/dev/ttyUSB3", UploadHint, "ser_open()"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestFlashFileWriteError(t *testing.T) {
	// A regular file where the workspace directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tc := okToolchain()
	o := newTestOrchestrator(t, session.NewRegistry(), tc,
		WithWorkspace(Workspace{Dir: filepath.Join(blocker, "sketch"), Name: "sketch"}))

	_, err := o.Flash(context.Background(), Job{Source: "x", Board: "uno", Port: "/dev/ttyUSB0"})

	var fe *FileWriteError
	if !errors.As(err, &fe) {
		t.Fatalf("Flash() error = %v, want *FileWriteError", err)
	}
	if len(tc.Calls()) != 0 {
		t.Errorf("toolchain called after staging failed: %v", tc.Calls())
	}
}

func TestFlashRejectsConcurrentJobs(t *testing.T) {
	tc := okToolchain()
	tc.block = make(chan struct{})
	started := make(chan struct{})
	tc.onCompile = func() { close(started) }

	o := newTestOrchestrator(t, session.NewRegistry(), tc)

	done := make(chan error, 1)
	go func() {
		_, err := o.Flash(context.Background(), Job{Source: "a", Board: "uno", Port: "/dev/ttyUSB0"})
		done <- err
	}()

	<-started
	if _, err := o.Flash(context.Background(), Job{Source: "b", Board: "uno", Port: "/dev/ttyUSB0"}); !errors.Is(err, ErrUploadInProgress) {
		t.Errorf("second Flash() error = %v, want ErrUploadInProgress", err)
	}

	close(tc.block)
	if err := <-done; err != nil {
		t.Errorf("first Flash() error = %v", err)
	}
}

func TestFlashConfirmedHandoffWaitsForRelease(t *testing.T) {
	reg := session.NewRegistry()
	sess := reg.Activate("/dev/ttyUSB0")

	var releasedAtCompile bool
	tc := okToolchain()
	tc.onCompile = func() {
		select {
		case <-sess.Released():
			releasedAtCompile = true
		default:
		}
	}

	// Simulated reader: notices the stop late, then lets go of the port
	go func() {
		for sess.Active() {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(30 * time.Millisecond)
		sess.Release()
	}()

	o := newTestOrchestrator(t, reg, tc,
		WithHandoff(HandoffConfirmed),
		WithReleaseTimeout(time.Second))

	if _, err := o.Flash(context.Background(), Job{Source: "x", Board: "uno", Port: "/dev/ttyUSB0"}); err != nil {
		t.Fatalf("Flash() error = %v", err)
	}
	if !releasedAtCompile {
		t.Error("compile started before the reader released the port")
	}
}

func TestFlashConfirmedHandoffTimesOut(t *testing.T) {
	reg := session.NewRegistry()
	reg.Activate("/dev/ttyUSB0") // never released

	tc := okToolchain()
	o := newTestOrchestrator(t, reg, tc,
		WithHandoff(HandoffConfirmed),
		WithReleaseTimeout(20*time.Millisecond))

	start := time.Now()
	if _, err := o.Flash(context.Background(), Job{Source: "x", Board: "uno", Port: "/dev/ttyUSB0"}); err != nil {
		t.Fatalf("Flash() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Flash() returned after %v, want at least the release timeout", elapsed)
	}
}

func TestFlashCanceledContext(t *testing.T) {
	tc := okToolchain()
	o := newTestOrchestrator(t, session.NewRegistry(), tc, WithSettleDelay(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Flash(ctx, Job{Source: "x", Board: "uno", Port: "/dev/ttyUSB0"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Flash() error = %v, want context.Canceled", err)
	}
	if len(tc.Calls()) != 0 {
		t.Errorf("toolchain called with canceled context: %v", tc.Calls())
	}
}

func TestParseHandoff(t *testing.T) {
	tests := []struct {
		in   string
		want Handoff
		ok   bool
	}{
		{"", HandoffSettle, true},
		{"settle", HandoffSettle, true},
		{"confirmed", HandoffConfirmed, true},
		{"eventually", HandoffSettle, false},
	}
	for _, tt := range tests {
		got, ok := ParseHandoff(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseHandoff(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
