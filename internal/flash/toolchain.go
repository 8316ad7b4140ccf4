package flash

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// ToolResult is the outcome of one external tool run. A tool that ran and
// exited non-zero is reported through OK=false, not through an error.
type ToolResult struct {
	OK         bool
	ExitCode   int
	Output     string // stdout
	Diagnostic string // stderr
	Elapsed    time.Duration
}

// Toolchain compiles and uploads sketches. Errors are reserved for failing
// to run the tool at all.
type Toolchain interface {
	Compile(ctx context.Context, fqbn, sketchDir string) (ToolResult, error)
	Upload(ctx context.Context, fqbn, port, sketchDir string) (ToolResult, error)
}

// ArduinoCLI drives the arduino-cli binary
type ArduinoCLI struct {
	// Path to the binary; "arduino-cli" resolves through PATH
	Path string
	// ExtraArgs are inserted right after the subcommand, e.g. --config-file
	ExtraArgs []string
}

// NewArduinoCLI returns a toolchain using the binary at path
func NewArduinoCLI(path string) *ArduinoCLI {
	if path == "" {
		path = "arduino-cli"
	}
	return &ArduinoCLI{Path: path}
}

var _ Toolchain = (*ArduinoCLI)(nil)

// Compile runs `arduino-cli compile -b FQBN DIR`
func (a *ArduinoCLI) Compile(ctx context.Context, fqbn, sketchDir string) (ToolResult, error) {
	return a.run(ctx, a.args("compile", "-b", fqbn, sketchDir)...)
}

// Upload runs `arduino-cli upload -b FQBN -p PORT DIR`
func (a *ArduinoCLI) Upload(ctx context.Context, fqbn, port, sketchDir string) (ToolResult, error) {
	return a.run(ctx, a.args("upload", "-b", fqbn, "-p", port, sketchDir)...)
}

func (a *ArduinoCLI) args(sub string, rest ...string) []string {
	args := []string{sub}
	args = append(args, a.ExtraArgs...)
	return append(args, rest...)
}

func (a *ArduinoCLI) run(ctx context.Context, args ...string) (ToolResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, a.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := ToolResult{
		Output:     lossy(stdout.Bytes()),
		Diagnostic: lossy(stderr.Bytes()),
		Elapsed:    time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.OK = true
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		return result, err
	}
}

// lossy converts tool output to text, replacing invalid UTF-8
func lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
