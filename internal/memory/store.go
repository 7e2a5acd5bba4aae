// Package memory provides the default entry store: a mutex-guarded
// in-memory list with optional JSON-file durability. With a file path the
// store reloads its state at startup and writes it back after every
// mutation; a missing or corrupt file loads as empty state.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"chitieu/internal/core"
)

type Store struct {
	mu       sync.Mutex
	path     string // empty means no durability
	entries  []core.Entry
	settings core.Settings
}

// state is the on-disk shape of the store.
type state struct {
	Entries  []core.Entry  `json:"entries"`
	Settings core.Settings `json:"settings"`
}

// New returns a purely in-memory store.
func New() *Store {
	return &Store{}
}

// NewFromFile loads a store persisted at path. Unreadable or unparseable
// data is treated as no prior data, never as a fatal error.
func NewFromFile(path string) *Store {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read store file, starting empty", "path", path, "error", err)
		}
		return s
	}
	var st state
	if err := json.Unmarshal(raw, &st); err != nil {
		slog.Warn("Corrupt store file, starting empty", "path", path, "error", err)
		return s
	}
	s.entries = st.Entries
	s.settings = st.Settings
	return s
}

// List returns all entries, most recent first.
func (s *Store) List(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// AddBatch prepends the entries as one atomic mutation: either every entry
// is stored and persisted, or none is.
func (s *Store) AddBatch(_ context.Context, entries []core.Entry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("validate entry %s: %w", e.ID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(append([]core.Entry(nil), entries...), s.entries...)
	return s.persistLocked()
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.persistLocked()
		}
	}
	return core.ErrNotFound
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return s.persistLocked()
}

// GetByIDs returns the entries matching the given ids, skipping unknown ones.
func (s *Store) GetByIDs(_ context.Context, ids []string) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []core.Entry
	for _, e := range s.entries {
		if _, ok := want[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Settings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) UpdateSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.persistLocked()
}

func (s *Store) Close() error { return nil }

// persistLocked writes the current state to disk. Callers hold s.mu.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(state{Entries: s.entries, Settings: s.settings}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}
