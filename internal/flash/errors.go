package flash

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUploadInProgress is returned when Flash is called while another flash
// is still running; the fixed workspace can only hold one sketch.
var ErrUploadInProgress = errors.New("another upload is already in progress")

// FileWriteError means the sketch could not be staged on disk
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("could not write sketch file %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// CompileError carries the compiler's diagnostic output verbatim. Err is set
// when the compiler could not be started at all.
type CompileError struct {
	FQBN       string
	Diagnostic string
	Err        error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not run the compiler: %v", e.Err)
	}
	return fmt.Sprintf("compilation failed for %s:\n%s", e.FQBN, strings.TrimRight(e.Diagnostic, "\n"))
}

func (e *CompileError) Unwrap() error { return e.Err }

// UploadHint is appended to upload failures; a missing board or a port held
// by another program are by far the most common causes.
const UploadHint = "Is the board connected, and is the port free (no other serial monitor open)?"

// UploadError carries the destination port and the uploader's diagnostic output
type UploadError struct {
	Port       string
	FQBN       string
	Diagnostic string
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not start the upload to %s: %v", e.Port, e.Err)
	}
	return fmt.Sprintf("upload to port %s failed. %s\nDetails: %s",
		e.Port, UploadHint, strings.TrimRight(e.Diagnostic, "\n"))
}

func (e *UploadError) Unwrap() error { return e.Err }
