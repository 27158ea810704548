// Package prefs remembers small UI choices between runs.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const prefsFile = "ui.json"

// UI is what the dashboard restores on start.
type UI struct {
	LastMode  string `json:"last_mode,omitempty"`
	LastQuery string `json:"last_query,omitempty"`
}

// Store persists UI under dir.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, or the user config directory when
// dir is empty.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "horaculo")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, prefsFile), nil
}

func (s *Store) Save(p UI) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved prefs, or the zero value when nothing was saved yet.
func (s *Store) Load() (UI, error) {
	path, err := s.path()
	if err != nil {
		return UI{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return UI{}, nil
		}
		return UI{}, err
	}
	var p UI
	if err := json.Unmarshal(data, &p); err != nil {
		return UI{}, err
	}
	return p, nil
}
