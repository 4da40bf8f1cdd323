// Package history persists prompt inputs between runs so location, label,
// tracker, and search prompts can recall earlier answers.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// maxEntries caps each category; the oldest entry falls off first.
const maxEntries = 10

// Store keeps per-prompt input history, keyed by prompt category.
type Store struct {
	path    string
	entries map[string][]string
	dirty   bool
}

// DefaultPath places the history file in the user config dir. An empty
// return disables persistence.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "trammel", "history.json")
}

// Load reads the history file. A missing, empty, or corrupt file yields an
// empty store; history is never worth failing startup over.
func Load(path string) *Store {
	s := &Store{path: path, entries: make(map[string][]string)}
	if path == "" {
		return s
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var entries map[string][]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return s
	}
	for category, values := range entries {
		if len(values) > maxEntries {
			values = values[len(values)-maxEntries:]
		}
		s.entries[category] = values
	}
	return s
}

// For returns the category's entries, oldest first.
func (s *Store) For(category string) []string {
	return append([]string(nil), s.entries[category]...)
}

// Add records a submitted input at the recent end of its category. A value
// already present moves to the end instead of duplicating.
func (s *Store) Add(category, text string) {
	if text == "" {
		return
	}
	values := s.entries[category]
	for i, v := range values {
		if v == text {
			values = append(values[:i], values[i+1:]...)
			break
		}
	}
	values = append(values, text)
	if len(values) > maxEntries {
		values = values[len(values)-maxEntries:]
	}
	s.entries[category] = values
	s.dirty = true
}

// Save writes the store back if anything changed since load.
func (s *Store) Save() error {
	if s.path == "" || !s.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
