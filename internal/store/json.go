package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	entriesFile = "entries.json"
	activeFile  = "active.json"
)

// JSONStore keeps entries and the active timer in two JSON files under a data
// directory. Every mutation rewrites the whole file.
type JSONStore struct {
	dir    string
	logger *slog.Logger
}

// NewJSON opens (or creates) the data directory at dir.
func NewJSON(dir string, logger *slog.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioErr("create data directory", err)
	}
	return &JSONStore{dir: dir, logger: logger}, nil
}

func (s *JSONStore) entriesPath() string { return filepath.Join(s.dir, entriesFile) }
func (s *JSONStore) activePath() string  { return filepath.Join(s.dir, activeFile) }

func (s *JSONStore) Entries() ([]Entry, error) {
	var entries []Entry
	ok, err := readJSON(s.entriesPath(), &entries)
	if err != nil {
		return nil, ioErr("read entries", err)
	}
	if !ok {
		return nil, nil
	}
	return entries, nil
}

func (s *JSONStore) AppendEntry(e Entry) error {
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	entries = append(entries, e)
	if err := s.saveEntries(entries); err != nil {
		return err
	}
	s.logger.Debug("entry appended", slog.String("id", e.ID), slog.String("file", s.entriesPath()))
	return nil
}

func (s *JSONStore) DeleteEntry(id string) error {
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return fmt.Errorf("delete %s: %w", id, ErrEntryNotFound)
	}
	if err := s.saveEntries(kept); err != nil {
		return err
	}
	s.logger.Debug("entry deleted", slog.String("id", id))
	return nil
}

func (s *JSONStore) saveEntries(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	if err := writeJSON(s.entriesPath(), entries); err != nil {
		return ioErr("write entries", err)
	}
	return nil
}

func (s *JSONStore) ActiveTimer() (*ActiveTimer, error) {
	var a ActiveTimer
	ok, err := readJSON(s.activePath(), &a)
	if err != nil {
		return nil, ioErr("read active timer", err)
	}
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *JSONStore) SaveActiveTimer(a ActiveTimer) error {
	if err := writeJSON(s.activePath(), a); err != nil {
		return ioErr("write active timer", err)
	}
	return nil
}

func (s *JSONStore) ClearActiveTimer() error {
	err := os.Remove(s.activePath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioErr("remove active timer", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

// readJSON decodes path into v. It reports false when the file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// writeJSON replaces path atomically with the indented encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// WriteFileAtomic writes data to a temp file next to path and renames it over
// path, so readers never observe a truncated file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
