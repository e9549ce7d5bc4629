package tui

import (
	"github.com/mmcdole/swipetrack/internal/deck"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/session"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// LoginReadyMsg fires after the simulated sign-in latency
type LoginReadyMsg struct {
	Username string
}

// SessionOpenedMsg carries a freshly opened session
type SessionOpenedMsg struct {
	Session *session.Session
	Err     error
}

// LogoutDoneMsg signals the session was torn down
type LogoutDoneMsg struct {
	Err error
}

// RemoteFetchedMsg carries the remote snapshot for the merge on load.
// Session is the session that asked for it.
type RemoteFetchedMsg struct {
	Session *session.Session
	Records []domain.RemoteRecord
	Err     error
}

// PushDoneMsg signals one remote push finished
type PushDoneMsg struct {
	Session *session.Session
	ItemID  string
	Err     error
}

// DeckLoadedMsg carries a fetched deck batch
type DeckLoadedMsg struct {
	Session *session.Session
	Ticket  deck.Ticket
	Items   []domain.MediaItem
	Err     error
}

// SearchDebouncedMsg fires when the search input has been quiet long enough
type SearchDebouncedMsg struct {
	Ticket search.Ticket
}

// SearchResultsMsg carries unified search results for a ticket
type SearchResultsMsg struct {
	Ticket  search.Ticket
	Results []domain.MediaItem
}

// SurpriseMsg fires after the surprise-me shuffle delay
type SurpriseMsg struct{}

// WatchPageOpenedMsg reports the browser launch result
type WatchPageOpenedMsg struct {
	Title string
	Err   error
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
