// server/pkg/client/session.go
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"coffee-os-api-server/internal/models"
)

// Session is what a logged in client remembers between runs.
type Session struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// SessionStore persists the session as a JSON file.
type SessionStore struct {
	Path string
}

// DefaultSessionPath is coffeectl/session.json under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "coffeectl", "session.json"), nil
}

// Load returns the stored session, or nil when there is none.
func (s *SessionStore) Load() (*Session, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, raw, 0o600)
}

// Clear removes the session file. A missing file is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
