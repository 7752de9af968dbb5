package slot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot stores the value in a single file. Writes go to a temp file that is
// renamed over the target, so readers never observe a partial write.
type FileSlot struct {
	path string
}

// NewFileSlot creates a FileSlot backed by path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Path returns the backing file.
func (s *FileSlot) Path() string { return s.path }

// Read returns the file contents, or nil if it does not exist.
func (s *FileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	return data, nil
}

// Write atomically replaces the file contents.
func (s *FileSlot) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename slot file: %w", err)
	}
	return nil
}

var _ Slot = (*FileSlot)(nil)
