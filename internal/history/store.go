// Package history records generated projects in a bounded JSON file.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

// Entry describes one completed generation.
type Entry struct {
	ID         string    `json:"id"`
	ExecutedAt time.Time `json:"executedAt"`
	Dir        string    `json:"dir"`
	Project    string    `json:"project"`
	Flags      []string  `json:"flags,omitempty"`
	Operations int       `json:"operations"`
	Remote     string    `json:"remote,omitempty"`
	Publish    string    `json:"publish,omitempty"`
}

type Store struct {
	path       string
	maxEntries int
	entries    []Entry
	mu         sync.RWMutex
	loaded     bool
}

// NewStore creates a file backed store keeping at most maxEntries.
func NewStore(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &Store{path: path, maxEntries: maxEntries}
}

func (s *Store) Path() string { return s.path }

// Load reads the history file. A missing or empty file is an empty history.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.entries = []Entry{}
			s.loaded = true
			return nil
		}
		return errdef.Wrap(errdef.CodeHistory, err, "read history")
	}
	if len(data) == 0 {
		s.entries = []Entry{}
		s.loaded = true
		return nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "parse history")
	}
	s.sortEntriesLocked()
	s.loaded = true
	return nil
}

// Append records entry, trims to the limit and persists.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	s.entries = append([]Entry{entry}, s.entries...)
	s.sortEntriesLocked()
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[:s.maxEntries]
	}
	return s.persist()
}

// Entries returns a copy, newest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Delete removes an entry by id and reports whether one was removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return false, err
	}
	idx := -1
	for i, e := range s.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return true, s.persist()
}

// ByDir returns entries generated into dir, newest first.
func (s *Store) ByDir(dir string) []Entry {
	dir = filepath.Clean(strings.TrimSpace(dir))
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if filepath.Clean(e.Dir) == dir {
			out = append(out, e)
		}
	}
	return out
}

// persist writes to a temp file and renames it into place.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create history dir")
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "encode history")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write history tmp")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace history file")
	}
	return nil
}

// sortEntriesLocked orders entries newest first. Caller must hold the lock.
func (s *Store) sortEntriesLocked() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return newerFirst(s.entries[i], s.entries[j])
	})
}

func newerFirst(a, b Entry) bool {
	switch {
	case a.ExecutedAt.Equal(b.ExecutedAt):
		return a.ID > b.ID
	case a.ExecutedAt.IsZero():
		return false
	case b.ExecutedAt.IsZero():
		return true
	default:
		return a.ExecutedAt.After(b.ExecutedAt)
	}
}
