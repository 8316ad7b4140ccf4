package flash

import (
	"os"
	"path/filepath"
)

// DefaultSketchName names both the sketch directory and its .ino file;
// arduino-cli requires the two to match.
const DefaultSketchName = "oficina_code_sketch"

// Workspace is the fixed directory every upload stages its sketch into.
// It is reused and overwritten on each upload, never versioned or cleaned.
type Workspace struct {
	Dir  string
	Name string
}

// DefaultWorkspace lives under the system temp directory
func DefaultWorkspace() Workspace {
	return Workspace{
		Dir:  filepath.Join(os.TempDir(), DefaultSketchName),
		Name: DefaultSketchName,
	}
}

// SketchPath is the .ino file inside Dir
func (w Workspace) SketchPath() string {
	return filepath.Join(w.Dir, w.Name+".ino")
}

// Stage creates Dir if needed and overwrites the sketch file with source
func (w Workspace) Stage(source string) (string, error) {
	path := w.SketchPath()
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", &FileWriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		return "", &FileWriteError{Path: path, Err: err}
	}
	return path, nil
}
