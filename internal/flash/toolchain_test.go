package flash

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeScript creates an executable shell script standing in for arduino-cli
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arduino-cli")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArduinoCLIArguments(t *testing.T) {
	cli := NewArduinoCLI(writeScript(t, `echo "$@"`+"\n"))

	res, err := cli.Compile(context.Background(), "arduino:avr:uno", "/tmp/sketch")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !res.OK {
		t.Fatalf("Compile() OK = false, diagnostic %q", res.Diagnostic)
	}
	if got := strings.TrimSpace(res.Output); got != "compile -b arduino:avr:uno /tmp/sketch" {
		t.Errorf("compile args = %q", got)
	}

	res, err = cli.Upload(context.Background(), "esp32:esp32:esp32", "/dev/ttyUSB0", "/tmp/sketch")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got := strings.TrimSpace(res.Output); got != "upload -b esp32:esp32:esp32 -p /dev/ttyUSB0 /tmp/sketch" {
		t.Errorf("upload args = %q", got)
	}
}

func TestArduinoCLIExtraArgs(t *testing.T) {
	cli := NewArduinoCLI(writeScript(t, `echo "$@"`+"\n"))
	cli.ExtraArgs = []string{"--config-file", "/etc/arduino.yaml"}

	res, err := cli.Compile(context.Background(), "arduino:avr:uno", "/tmp/sketch")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := strings.TrimSpace(res.Output); got != "compile --config-file /etc/arduino.yaml -b arduino:avr:uno /tmp/sketch" {
		t.Errorf("compile args = %q", got)
	}
}

func TestArduinoCLINonZeroExit(t *testing.T) {
	cli := NewArduinoCLI(writeScript(t, "echo 'error: missing semicolon' >&2\nexit 3\n"))

	res, err := cli.Compile(context.Background(), "arduino:avr:uno", "/tmp/sketch")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil for a non-zero exit", err)
	}
	if res.OK {
		t.Error("OK = true, want false")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Diagnostic, "missing semicolon") {
		t.Errorf("Diagnostic = %q", res.Diagnostic)
	}
}

func TestArduinoCLIInvalidUTF8Output(t *testing.T) {
	cli := NewArduinoCLI(writeScript(t, `printf 'bad \377 byte' >&2`+"\nexit 1\n"))

	res, err := cli.Upload(context.Background(), "arduino:avr:uno", "/dev/ttyUSB0", "/tmp/sketch")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.Contains(res.Diagnostic, "bad ") || !strings.Contains(res.Diagnostic, " byte") {
		t.Errorf("Diagnostic = %q", res.Diagnostic)
	}
	if strings.Contains(res.Diagnostic, "\xff") {
		t.Error("Diagnostic still contains invalid UTF-8")
	}
}

func TestArduinoCLIMissingBinary(t *testing.T) {
	cli := NewArduinoCLI(filepath.Join(t.TempDir(), "does-not-exist"))

	if _, err := cli.Compile(context.Background(), "arduino:avr:uno", "/tmp/sketch"); err == nil {
		t.Error("Compile() with missing binary returned nil error")
	}
}

func TestNewArduinoCLIDefaultPath(t *testing.T) {
	if got := NewArduinoCLI("").Path; got != "arduino-cli" {
		t.Errorf("Path = %q, want arduino-cli", got)
	}
}
