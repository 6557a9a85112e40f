// Package snapshot manages the pre-run backup and the mutable working copy
// that every pass of a run validates and hands to the corrective step.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBackupSuffix marks the immutable pre-change copy.
	DefaultBackupSuffix = "_backup"

	// DefaultWorkingSuffix marks the mutable copy all passes operate on.
	// The original file is never modified.
	DefaultWorkingSuffix = "_cleaned"
)

// Paths holds the three files of one run.
type Paths struct {
	Original string
	Backup   string
	Working  string
}

// Manager derives and creates run snapshots.
type Manager struct {
	BackupSuffix  string
	WorkingSuffix string
}

// NewManager returns a manager with the standard suffixes.
func NewManager() *Manager {
	return &Manager{
		BackupSuffix:  DefaultBackupSuffix,
		WorkingSuffix: DefaultWorkingSuffix,
	}
}

// Paths derives the backup and working-copy paths for an original document.
func (m *Manager) Paths(original string) *Paths {
	ext := filepath.Ext(original)
	stem := strings.TrimSuffix(original, ext)
	return &Paths{
		Original: original,
		Backup:   stem + m.BackupSuffix + ext,
		Working:  stem + m.WorkingSuffix + ext,
	}
}

// Prepare creates the run snapshots. The backup is written only when absent,
// so the earliest pre-change state survives repeated runs. A pre-existing
// working copy is reused, never overwritten: passes must build on whatever
// the last corrective invocation wrote.
func (m *Manager) Prepare(original string) (*Paths, error) {
	if _, err := os.Stat(original); err != nil {
		return nil, fmt.Errorf("original workbook: %w", err)
	}
	p := m.Paths(original)

	if _, err := os.Stat(p.Backup); os.IsNotExist(err) {
		if err := copyFile(original, p.Backup); err != nil {
			return nil, fmt.Errorf("creating backup: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking backup: %w", err)
	}

	if _, err := os.Stat(p.Working); os.IsNotExist(err) {
		if err := copyFile(original, p.Working); err != nil {
			return nil, fmt.Errorf("creating working copy: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking working copy: %w", err)
	}

	return p, nil
}

// Fresh reports whether the working copy was modified within the window.
// A fresh working copy means another run is in progress or just finished,
// and the caller should skip this target instead of taking a lock.
func (m *Manager) Fresh(original string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, nil
	}
	info, err := os.Stat(m.Paths(original).Working)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) < window, nil
}

// Restore copies the backup over the working copy.
func (m *Manager) Restore(p *Paths) error {
	if _, err := os.Stat(p.Backup); err != nil {
		return fmt.Errorf("backup not found: %w", err)
	}
	if err := copyFile(p.Backup, p.Working); err != nil {
		return fmt.Errorf("restoring working copy: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
