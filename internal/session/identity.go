package session

import (
	"errors"
	"strings"

	"github.com/mmcdole/swipetrack/internal/adapter"
)

// ErrEmptyUsername is returned when logging in with a blank name
var ErrEmptyUsername = errors.New("username is required")

// Identity persists the free-text username across restarts
type Identity struct {
	cfg   *adapter.Config
	save  func(string) error
	clear func() error
}

// NewIdentity creates an identity backed by the config file
func NewIdentity(cfg *adapter.Config) *Identity {
	return &Identity{
		cfg:   cfg,
		save:  adapter.SaveUsername,
		clear: adapter.ClearSession,
	}
}

// Username returns the saved username, if any
func (i *Identity) Username() (string, bool) {
	if !i.cfg.HasSession() {
		return "", false
	}
	return strings.TrimSpace(i.cfg.Session.Username), true
}

// Login saves username, trimmed and lowercased, as the active session
func (i *Identity) Login(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return "", ErrEmptyUsername
	}
	if err := i.save(username); err != nil {
		return "", err
	}
	i.cfg.Session.Username = username
	return username, nil
}

// Logout forgets the saved username. The local mirror is kept so the
// collection is still there on the next login.
func (i *Identity) Logout() error {
	if err := i.clear(); err != nil {
		return err
	}
	i.cfg.Session.Username = ""
	return nil
}
