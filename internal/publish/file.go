package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePublisher writes artifacts into a directory
type FilePublisher struct {
	dir string
}

// NewFilePublisher creates the output directory if needed.
func NewFilePublisher(dir string) (*FilePublisher, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &FilePublisher{dir: dir}, nil
}

// Dir returns the output directory.
func (p *FilePublisher) Dir() string {
	return p.dir
}

// Publish writes data to dir/name via a temp file and rename.
func (p *FilePublisher) Publish(name string, data []byte) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid artifact name %q", name)
	}

	tmp, err := os.CreateTemp(p.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(p.dir, name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}

	return nil
}
