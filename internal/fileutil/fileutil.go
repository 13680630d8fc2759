// Package fileutil provides file copy and scratch-directory helpers used by
// the pipeline stages. Scratch directories are always scoped to one job
// invocation and removed on every exit path.
package fileutil

import (
	"fmt"
	"io"
	"os"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// NewScratchDir creates a unique scratch directory under base for one job.
// Callers must pair it with RemoveScratch in a defer so the directory goes
// away on success and failure alike.
func NewScratchDir(base, prefix string) (string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("ensure scratch base: %w", err)
	}
	dir, err := os.MkdirTemp(base, prefix+"-")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, nil
}

// RemoveScratch deletes a scratch directory, ignoring errors; scratch cleanup
// must never mask the job's own outcome.
func RemoveScratch(dir string) {
	if dir == "" {
		return
	}
	_ = os.RemoveAll(dir)
}
