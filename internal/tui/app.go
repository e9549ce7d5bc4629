package tui

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/gesture"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/session"
	"github.com/mmcdole/swipetrack/internal/tui/components"
	"github.com/mmcdole/swipetrack/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateLogin ApplicationState = iota
	StateMain
	StateHelp
	StateConfirmLogout
)

// View is a top-level screen of the main state
type View int

const (
	ViewDiscover View = iota
	ViewJournal
	ViewStats
)

var viewNames = []string{"Discover", "Journal", "Stats"}

// SurpriseMinBacklog is the backlog size at which surprise-me is offered
const SurpriseMinBacklog = 2

// Vertical layout: tab bar plus status line
const ChromeHeight = 3

// Options wires the model to its collaborators
type Options struct {
	Config   *adapter.Config
	Identity *session.Identity
	Launcher *adapter.Launcher
	Logger   *slog.Logger

	// Open builds a session for a username. Defaults to session.Open.
	Open func(username string) (*session.Session, error)

	// Session skips the login screen when set
	Session *session.Session
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State  ApplicationState
	Screen View
	Ready  bool

	// Collaborators
	cfg      *adapter.Config
	identity *session.Identity
	launcher *adapter.Launcher
	logger   *slog.Logger
	open     func(string) (*session.Session, error)

	Session *session.Session

	// UI Components
	Login        components.Login
	RatingModal  components.RatingModal
	SearchModal  components.SearchModal
	DetailsModal components.DetailsModal

	// Journal state
	JournalFilter collection.Filter
	JournalCursor int
	FilterInput   textinput.Model
	Filtering     bool

	// Swipe and search plumbing
	tracker   *gesture.Tracker
	debouncer *search.Debouncer
	searchObs *ChannelObserver

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int
	Shuffling    bool
	rng          *rand.Rand

	// Sync state
	SyncStatus components.SyncStatus
	pushing    bool
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = adapter.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	open := opts.Open
	if open == nil {
		open = func(username string) (*session.Session, error) {
			return session.Open(cfg, username, logger)
		}
	}
	launcher := opts.Launcher
	if launcher == nil {
		launcher = adapter.NewLauncher(cfg.UI.Browser, cfg.UI.WatchURL, logger)
	}

	fi := textinput.New()
	fi.Prompt = "filter: "
	fi.PromptStyle = styles.FilterPromptStyle
	fi.CharLimit = 100

	obs := NewChannelObserver()
	m := Model{
		State:         StateLogin,
		cfg:           cfg,
		identity:      opts.Identity,
		launcher:      launcher,
		logger:        logger,
		open:          open,
		Session:       opts.Session,
		Login:         components.NewLogin(),
		RatingModal:   components.NewRatingModal(),
		SearchModal:   components.NewSearchModal(),
		DetailsModal:  components.NewDetailsModal(),
		JournalFilter: collection.FilterAll,
		FilterInput:   fi,
		tracker:       gesture.NewTracker(cfg.UI.CellWidth, cfg.UI.CellHeight),
		debouncer:     search.NewDebouncer(cfg.Search.Debounce, obs.OnFire),
		searchObs:     obs,
		rng:           rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	if m.Session != nil {
		m.State = StateMain
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		TickCmd(100 * time.Millisecond),
		WaitForQueryCmd(m.searchObs.C()),
	}
	switch {
	case m.Session != nil:
		s := m.Session
		cmds = append(cmds, func() tea.Msg { return SessionOpenedMsg{Session: s} })
	case m.identity != nil:
		// A saved username skips the login screen
		if name, ok := m.identity.Username(); ok {
			cmds = append(cmds, OpenSessionCmd(m.open, name))
			break
		}
		fallthrough
	default:
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case LoginReadyMsg:
		username := strings.ToLower(strings.TrimSpace(msg.Username))
		if m.identity != nil {
			name, err := m.identity.Login(msg.Username)
			if err != nil {
				m.Login.SetError(err)
				return m, nil
			}
			username = name
		}
		return m, OpenSessionCmd(m.open, username)

	case SessionOpenedMsg:
		if msg.Err != nil {
			m.State = StateLogin
			m.Login.SetError(msg.Err)
			return m, nil
		}
		return m, m.startSession(msg.Session)

	case RemoteFetchedMsg:
		if !m.current(msg.Session) {
			m.logger.Debug("discarding remote snapshot from a closed session")
			return m, nil
		}
		res := m.Session.Sync().ApplyRemote(msg.Records, msg.Err)
		if msg.Err != nil {
			m.SyncStatus = components.SyncError
			cmds = append(cmds, m.setStatus("Cloud unavailable, using local journal", true))
		} else {
			if !m.Session.Sync().Syncing() {
				m.SyncStatus = components.SyncSynced
			}
			if res.Added > 0 {
				cmds = append(cmds, m.setStatus(fmt.Sprintf("Synced %d entries from the cloud", res.Added), false))
			}
		}
		cmds = append(cmds, m.startDeckLoad(true))
		return m, tea.Batch(cmds...)

	case PushDoneMsg:
		if !m.current(msg.Session) {
			return m, nil
		}
		m.pushing = false
		if msg.Err != nil {
			m.SyncStatus = components.SyncError
			cmds = append(cmds, m.setStatus("Sync failed: "+msg.Err.Error(), true))
		}
		if next := m.pushPending(); next != nil {
			cmds = append(cmds, next)
		} else if !m.Session.Sync().Syncing() && m.SyncStatus == components.SyncSyncing {
			m.SyncStatus = components.SyncSynced
		}
		return m, tea.Batch(cmds...)

	case DeckLoadedMsg:
		if !m.current(msg.Session) {
			m.logger.Debug("discarding deck batch from a closed session", "generation", msg.Ticket.Generation)
			return m, nil
		}
		out := m.Session.CompleteLoad(msg.Ticket, msg.Items, msg.Err)
		if out.Applied && out.Err != nil {
			return m, m.setStatus("Failed to load cards: "+out.Err.Error(), true)
		}
		return m, nil

	case SearchDebouncedMsg:
		cmds = append(cmds, WaitForQueryCmd(m.searchObs.C()))
		if m.Session != nil && m.SearchModal.IsVisible() && m.debouncer.IsCurrent(msg.Ticket) {
			cmds = append(cmds, SearchCmd(m.Session.Search(), msg.Ticket))
		}
		return m, tea.Batch(cmds...)

	case SearchResultsMsg:
		if !m.debouncer.IsCurrent(msg.Ticket) || !m.SearchModal.IsVisible() {
			m.logger.Debug("discarding stale search results", "query", msg.Ticket.Query)
			return m, nil
		}
		m.SearchModal.SetResults(msg.Results)
		m.SearchModal.SetLoading(false)
		return m, nil

	case SurpriseMsg:
		m.Shuffling = false
		if m.Session == nil {
			return m, nil
		}
		if pick, ok := m.Session.Collection().PickBacklog(m.rng); ok {
			m.showDetails(pick.MediaItem)
		}
		return m, nil

	case WatchPageOpenedMsg:
		if msg.Err != nil {
			return m, m.setStatus("Failed to open browser: "+msg.Err.Error(), true)
		}
		return m, m.setStatus("Opened watch page for "+msg.Title, false)

	case LogoutDoneMsg:
		m.endSession()
		if msg.Err != nil {
			return m, m.setStatus(fmt.Sprintf("Logout failed: %v", msg.Err), true)
		}
		return m, textinput.Blink

	case ErrMsg:
		m.logger.Error("tui error", "error", msg.Err, "context", msg.Context)
		return m, m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Spinner ticks and cursor blinks for the login screen
	if m.State == StateLogin {
		var cmd tea.Cmd
		m.Login, cmd, _ = m.Login.Update(msg)
		return m, cmd
	}
	if m.SearchModal.IsVisible() {
		var cmd tea.Cmd
		m.SearchModal, cmd, _ = m.SearchModal.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startSession makes s current, loads the local mirror and kicks off the
// remote merge. The first deck load waits for the merge so already
// collected items are skipped.
func (m *Model) startSession(s *session.Session) tea.Cmd {
	m.Session = s
	m.State = StateMain
	m.Screen = ViewDiscover
	m.JournalFilter = collection.FilterAll
	m.JournalCursor = 0

	loaded := s.Sync().LoadLocal()
	m.logger.Info("session started", "username", s.Username(), "localEntries", loaded)

	if s.Sync().RemoteEnabled() {
		m.SyncStatus = components.SyncSyncing
		return FetchRemoteCmd(s)
	}
	m.SyncStatus = components.SyncLocal
	return m.startDeckLoad(true)
}

// endSession drops the session and returns to the login screen
func (m *Model) endSession() {
	m.Session = nil
	m.State = StateLogin
	m.Screen = ViewDiscover
	m.pushing = false
	m.Shuffling = false
	m.Filtering = false
	m.FilterInput.Reset()
	m.debouncer.Stop()
	m.tracker.Cancel()
	m.RatingModal.Hide()
	m.SearchModal.Hide()
	m.DetailsModal.Hide()
	m.Login.Reset()
}

// startDeckLoad begins an async deck load. Returns nil while one is in flight.
func (m *Model) startDeckLoad(reset bool) tea.Cmd {
	if m.Session == nil {
		return nil
	}
	d := m.Session.Deck()
	t, ok := d.Begin(reset)
	if !ok {
		return nil
	}
	return LoadDeckCmd(m.Session, t)
}

// current reports whether s is the open session. Results of async work
// started by an earlier session are dropped.
func (m Model) current(s *session.Session) bool {
	return s != nil && s == m.Session
}

// pushPending sends the oldest queued record to the remote store. Pushes
// go out one at a time, in order; PushDoneMsg starts the next one.
func (m *Model) pushPending() tea.Cmd {
	if m.Session == nil || m.pushing {
		return nil
	}
	rec, ok := m.Session.NextPending()
	if !ok {
		return nil
	}
	m.pushing = true
	m.SyncStatus = components.SyncSyncing
	return PushCmd(m.Session, rec)
}

// decide applies a swipe to the top card
func (m *Model) decide(dir domain.Direction) tea.Cmd {
	if m.Session == nil {
		return nil
	}
	item, ok := m.Session.Deck().Peek()
	if !ok {
		return nil
	}
	res := m.Session.Decide(item, dir)

	var cmds []tea.Cmd
	if res.Keep {
		cmds = append(cmds, m.setStatus(fmt.Sprintf("%s → %s", item.Title, dir.Label()), false))
		cmds = append(cmds, m.pushPending())
	}
	if res.NeedsMore {
		cmds = append(cmds, m.startDeckLoad(false))
	}
	return tea.Batch(cmds...)
}

// applyStatus records a status picked in the details modal
func (m *Model) applyStatus(item domain.MediaItem, status domain.Status) tea.Cmd {
	if m.Session == nil {
		return nil
	}
	m.Session.ApplyStatusAction(item, status)
	return tea.Batch(
		m.setStatus(fmt.Sprintf("%s marked %s", item.Title, status), false),
		m.pushPending(),
	)
}

// submitRating saves the rating modal's result
func (m *Model) submitRating() tea.Cmd {
	if m.Session == nil {
		return nil
	}
	item := m.RatingModal.Item()
	m.Session.Deck().Remove(item.ID)
	m.Session.ApplyRating(item, m.RatingModal.Rating(), m.RatingModal.Tags())
	return tea.Batch(
		m.setStatus(fmt.Sprintf("Rated %s %d/%d", item.Title, m.RatingModal.Rating(), domain.MaxUserRating), false),
		m.pushPending(),
	)
}

// showDetails opens the details modal, attaching the collection entry when present
func (m *Model) showDetails(item domain.MediaItem) {
	var entry *domain.CollectionItem
	if m.Session != nil {
		if e, ok := m.Session.Collection().Get(item.ID); ok {
			entry = &e
		}
	}
	m.DetailsModal.Show(item, entry)
	m.DetailsModal.SetSize(m.Width, m.Height)
}

// journalItems returns entries under the current tab and filter query,
// with the title positions the query matched
func (m Model) journalItems() []search.Match {
	if m.Session == nil {
		return nil
	}
	items := m.Session.Collection().Filter(m.JournalFilter, "")
	return search.FilterCollection(items, m.FilterInput.Value())
}

// selectedJournalItem returns the entry under the journal cursor
func (m Model) selectedJournalItem() (domain.CollectionItem, bool) {
	items := m.journalItems()
	if len(items) == 0 {
		return domain.CollectionItem{}, false
	}
	return items[min(m.JournalCursor, len(items)-1)].Item, true
}

// canSurprise reports whether the backlog is large enough for surprise-me
func (m Model) canSurprise() bool {
	if m.Session == nil || m.Shuffling {
		return false
	}
	return len(m.Session.Collection().Filter(collection.FilterBacklog, "")) >= SurpriseMinBacklog
}

// setStatus shows a temporary status message
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	if isErr {
		return ClearStatusCmd(5 * time.Second)
	}
	return ClearStatusCmd(3 * time.Second)
}
