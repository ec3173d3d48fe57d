// Package session holds the client-side state of a logged-in user: the
// bearer token, who it belongs to and the category currently selected.
// It is written to disk only at login, logout and category selection.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/model"
)

// Session is the persisted client state. The zero value is logged out.
type Session struct {
	Token            string            `json:"token,omitempty"`
	ExpiresAt        time.Time         `json:"expires_at,omitempty"`
	User             model.UserSummary `json:"user"`
	SelectedCategory string            `json:"selected_category,omitempty"`
}

// LoggedIn reports whether a token is held that has not expired at now.
// The server remains the judge; an unexpired token may still be rejected.
func (s *Session) LoggedIn(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Store reads and writes the session file at Path.
type Store struct {
	Path string
}

// Load returns the saved session, or an empty one if none exists.
func (st Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.Path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Save writes s with owner-only permissions, replacing any previous file.
func (st Store) Save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(st.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := st.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, st.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Clear deletes the session file. Clearing an absent session is not an
// error.
func (st Store) Clear() error {
	if err := os.Remove(st.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
