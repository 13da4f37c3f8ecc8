package storage

import (
	"os"
	"path/filepath"

	"github.com/foodinsight/huginn/internal/pipeline"
)

// FileWriter persists the artifact to a single path, replacing prior content.
type FileWriter struct {
	Path string
}

// Write stores artifact as UTF-8 text. The content goes to a temporary file
// in the same directory which is renamed over Path, so a failed write never
// leaves a truncated artifact behind.
func (w FileWriter) Write(artifact string) error {
	dir := filepath.Dir(w.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.Path)+".*.tmp")
	if err != nil {
		return pipeline.OutputWriteError{Path: w.Path, Err: err}
	}
	name := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(name)
		return pipeline.OutputWriteError{Path: w.Path, Err: err}
	}
	if _, err := tmp.WriteString(artifact); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return pipeline.OutputWriteError{Path: w.Path, Err: err}
	}
	if err := os.Rename(name, w.Path); err != nil {
		_ = os.Remove(name)
		return pipeline.OutputWriteError{Path: w.Path, Err: err}
	}
	return nil
}
