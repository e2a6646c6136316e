package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Keys of the locally persisted values.
const (
	KeySavedLocations = "saved-locations"
	KeyAlarms         = "alarms"
	KeyTheme          = "theme"
)

// Envelope is the on-disk wrapper for every persisted value.
type Envelope[T any] struct {
	Timestamp int64 `json:"timestamp"` // epoch milliseconds of the last write
	Data      T     `json:"data"`
}

// SavedAt returns the envelope's timestamp as a time.Time.
func (e Envelope[T]) SavedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// BaseDir returns the root data directory (~/.clocktime).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".clocktime"), nil
}

// keyFilePath returns the path for the given key's JSON file.
func keyFilePath(base, key string) string {
	return filepath.Join(base, key+".json")
}

// Load reads the envelope stored under key. ok is false if nothing is stored yet.
func Load[T any](base, key string) (env Envelope[T], ok bool, err error) {
	path := keyFilePath(base, key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return env, false, nil
	}
	if err != nil {
		return env, false, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &env); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return Envelope[T]{}, false, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return env, true, nil
}

// Save atomically writes data under key, stamped with now.
func Save[T any](base, key string, data T, now time.Time) error {
	path := keyFilePath(base, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	raw, err := json.MarshalIndent(Envelope[T]{Timestamp: now.UnixMilli(), Data: data}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
