package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/deck"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/session"
)

// Timing for simulated latency and delayed reveals
const (
	loginLatency  = 1200 * time.Millisecond
	surpriseDelay = 800 * time.Millisecond
)

// Command factories for async operations

// LoginCmd waits out the sign-in latency before the session is opened
func LoginCmd(username string) tea.Cmd {
	return tea.Tick(loginLatency, func(time.Time) tea.Msg {
		return LoginReadyMsg{Username: username}
	})
}

// OpenSessionCmd opens the session for username
func OpenSessionCmd(open func(string) (*session.Session, error), username string) tea.Cmd {
	return func() tea.Msg {
		s, err := open(username)
		return SessionOpenedMsg{Session: s, Err: err}
	}
}

// LogoutCmd clears the saved username, pushes whatever is still queued and
// closes the session
func LogoutCmd(identity *session.Identity, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		var err error
		if identity != nil {
			err = identity.Logout()
		}
		if s != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if ferr := s.Flush(ctx); ferr != nil {
				slog.Warn("dropped queued pushes at logout", "error", ferr)
			}
			if cerr := s.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		return LogoutDoneMsg{Err: err}
	}
}

// FetchRemoteCmd pulls the remote snapshot for the merge on load
func FetchRemoteCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		records, err := s.Sync().FetchRemote(ctx)
		return RemoteFetchedMsg{Session: s, Records: records, Err: err}
	}
}

// PushCmd appends one record to the remote store
func PushCmd(s *session.Session, rec domain.RemoteRecord) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return PushDoneMsg{Session: s, ItemID: rec.ItemID, Err: s.Sync().Push(ctx, rec)}
	}
}

// LoadDeckCmd fetches the page a deck ticket asks for
func LoadDeckCmd(s *session.Session, t deck.Ticket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		items, err := s.Deck().Fetch(ctx, t)
		return DeckLoadedMsg{Session: s, Ticket: t, Items: items, Err: err}
	}
}

// WaitForQueryCmd blocks until the debouncer fires
func WaitForQueryCmd(ch <-chan search.Ticket) tea.Cmd {
	return func() tea.Msg {
		return SearchDebouncedMsg{Ticket: <-ch}
	}
}

// SearchCmd runs a unified search for a debounced ticket
func SearchCmd(svc *search.Service, t search.Ticket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		results := svc.Search(ctx, t.Query)
		return SearchResultsMsg{Ticket: t, Results: search.Rank(results, t.Query)}
	}
}

// SurpriseCmd waits out the shuffle animation
func SurpriseCmd() tea.Cmd {
	return tea.Tick(surpriseDelay, func(time.Time) tea.Msg {
		return SurpriseMsg{}
	})
}

// OpenWatchPageCmd opens the watch page for a title in the browser
func OpenWatchPageCmd(l *adapter.Launcher, title string) tea.Cmd {
	return func() tea.Msg {
		return WatchPageOpenedMsg{Title: title, Err: l.OpenWatchPage(title)}
	}
}

// TickCmd returns a command that sends a tick after a duration
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
