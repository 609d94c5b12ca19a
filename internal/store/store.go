package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/celestialorigin/celestial-legacy/internal/record"
)

// ErrNotExist is returned by Load when the store file is absent.
var ErrNotExist = errors.New("store file does not exist")

// Load reads the record sequence at path. On any failure it still returns a
// usable empty sequence alongside the error; callers decide whether the error
// matters.
func Load(path string) ([]record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []record.Record{}, ErrNotExist
		}
		return []record.Record{}, fmt.Errorf("reading store %s: %w", path, err)
	}

	var records []record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return []record.Record{}, fmt.Errorf("parsing store %s: %w", path, err)
	}
	if records == nil {
		records = []record.Record{}
	}
	return records, nil
}

// Save writes records as indented JSON, atomically replacing path.
func Save(path string, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Stat reports the record count and file size of a store.
func Stat(path string) (count int, size int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	records, err := Load(path)
	if err != nil {
		return 0, info.Size(), err
	}
	return len(records), info.Size(), nil
}
