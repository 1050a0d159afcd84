package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pfrederiksen/skydaily/internal/config"
	"github.com/pfrederiksen/skydaily/internal/daily"
)

// DefaultDataDir is used when no data directory is configured.
const DefaultDataDir = "~/.local/share/skydaily"

const snapshotFile = "snapshot.json"

// Storage handles persistence of report snapshots
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating the directory if needed.
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	dataDir, err := config.ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// Dir returns the resolved data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

func (s *Storage) snapshotPath() string {
	return filepath.Join(s.dataDir, snapshotFile)
}

// LoadSnapshot loads the last snapshot, or an empty one if none was saved yet.
func (s *Storage) LoadSnapshot() (*daily.Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return daily.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot daily.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Fingerprints == nil {
		snapshot.Fingerprints = make(map[string]string)
	}
	if snapshot.Summaries == nil {
		snapshot.Summaries = make(map[string]string)
	}

	return &snapshot, nil
}

// SaveSnapshot stamps UpdatedAt and writes the snapshot. The file is
// replaced atomically so a crash never leaves half a snapshot behind.
func (s *Storage) SaveSnapshot(snapshot *daily.Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, snapshotFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.snapshotPath()); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}

// RecordReport diffs report against the stored snapshot, saves the new
// snapshot with the carried change log and returns the changes.
func (s *Storage) RecordReport(report *daily.Report) ([]*daily.SectionChange, error) {
	previous, err := s.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	current := daily.CreateSnapshot(report, time.Now().UTC().Format(time.RFC3339))
	changes := daily.Diff(previous, current)
	current.CarryChangeLog(previous, changes)

	if err := s.SaveSnapshot(current); err != nil {
		return nil, err
	}
	return changes, nil
}
