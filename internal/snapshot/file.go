package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists snapshots as JSON files inside a single directory.
//
// FileStore holds no in-memory state and is safe for concurrent use across
// different collection names. Concurrent saves of the same name are the
// caller's responsibility to serialise; the record repository does this.
type FileStore struct {
	dir string
}

// NewFileStore returns a [FileStore] rooted at dir.
//
// The directory is created lazily on the first save.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("snapshot directory is required")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (f *FileStore) Dir() string {
	return f.dir
}

// Path returns the file path used for the named collection.
func (f *FileStore) Path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// Load reads the snapshot for the named collection.
//
// Returns (nil, nil) if no snapshot file exists. Returns an error wrapping
// [ErrCorruptSnapshot] if the file exists but is not a valid snapshot.
func (f *FileStore) Load(name string) (*Snapshot, error) {
	data, err := os.ReadFile(f.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	return decode(name, data)
}

// Save writes snap as the snapshot for the named collection.
//
// The write is atomic: readers observe either the previous file or the new
// one, never a partially written document.
func (f *FileStore) Save(name string, snap Snapshot) error {
	snap.Name = name

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}

	if err := writeFileAtomic(f.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true

	return syncDir(dir)
}

// syncDir flushes the directory entry so the rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
