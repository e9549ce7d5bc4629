package tui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Handle state-specific keys
	switch m.State {
	case StateLogin:
		return m.handleLoginKey(msg)

	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateMain
		}
		return m, nil

	case StateConfirmLogout:
		switch {
		case key.Matches(msg, Keys.Confirm):
			return m, LogoutCmd(m.identity, m.Session)
		case key.Matches(msg, Keys.Deny):
			m.State = StateMain
		}
		return m, nil
	}

	// Route to active modal if any
	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	if m.Filtering {
		return m.handleFilterKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Logout):
		m.State = StateConfirmLogout
		return m, nil

	case key.Matches(msg, Keys.GlobalSearch):
		m.debouncer.Stop()
		m.SearchModal.Show()
		m.SearchModal.SetSize(m.Width, m.Height)
		return m, textinput.Blink

	case key.Matches(msg, Keys.Discover):
		m.Screen = ViewDiscover
		return m, nil

	case key.Matches(msg, Keys.Journal):
		m.Screen = ViewJournal
		return m, nil

	case key.Matches(msg, Keys.Stats):
		m.Screen = ViewStats
		return m, nil

	case key.Matches(msg, Keys.NextView):
		m.Screen = (m.Screen + 1) % View(len(viewNames))
		return m, nil
	}

	switch m.Screen {
	case ViewDiscover:
		return m.handleDiscoverKey(msg)
	case ViewJournal:
		return m.handleJournalKey(msg)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.Login, cmd, submitted = m.Login.Update(msg)
	if submitted {
		return m, tea.Batch(cmd, LoginCmd(m.Login.Value()))
	}
	return m, cmd
}

// routeToModal sends input to the topmost visible modal
func (m Model) routeToModal(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case m.RatingModal.IsVisible():
		var submitted bool
		m.RatingModal, submitted = m.RatingModal.Update(msg)
		if submitted {
			return true, m, m.submitRating()
		}
		return true, m, nil

	case m.DetailsModal.IsVisible():
		item := m.DetailsModal.Item()
		var action components.DetailsAction
		m.DetailsModal, action = m.DetailsModal.Update(msg)
		switch action {
		case components.DetailsWatched:
			return true, m, m.applyStatus(item, domain.StatusWatched)
		case components.DetailsBacklog:
			return true, m, m.applyStatus(item, domain.StatusBacklog)
		case components.DetailsRate:
			m.RatingModal.Show(item)
			return true, m, nil
		case components.DetailsOpen:
			return true, m, OpenWatchPageCmd(m.launcher, item.Title)
		}
		return true, m, nil

	case m.SearchModal.IsVisible():
		var cmd tea.Cmd
		var action components.SearchAction
		m.SearchModal, cmd, action = m.SearchModal.Update(msg)
		switch action {
		case components.SearchQueryChanged:
			if m.SearchModal.Loading() {
				m.debouncer.Schedule(m.SearchModal.Query())
			} else {
				m.debouncer.Stop()
			}
		case components.SearchSelected:
			if item, ok := m.SearchModal.SelectedResult(); ok {
				m.debouncer.Stop()
				m.SearchModal.Hide()
				m.showDetails(item)
			}
		}
		if !m.SearchModal.IsVisible() {
			m.debouncer.Stop()
		}
		return true, m, cmd
	}
	return false, m, nil
}

func (m Model) handleDiscoverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Session == nil {
		return m, nil
	}
	d := m.Session.Deck()

	switch {
	case key.Matches(msg, Keys.SwipeLeft):
		return m, m.decide(domain.DirectionLeft)
	case key.Matches(msg, Keys.SwipeRight):
		return m, m.decide(domain.DirectionRight)
	case key.Matches(msg, Keys.SwipeUp):
		return m, m.decide(domain.DirectionUp)
	case key.Matches(msg, Keys.SwipeDown):
		return m, m.decide(domain.DirectionDown)

	case key.Matches(msg, Keys.NextTab, Keys.PrevTab):
		step := 1
		if key.Matches(msg, Keys.PrevTab) {
			step = len(domain.DeckKinds) - 1
		}
		i := slices.Index(domain.DeckKinds, d.Kind())
		d.SetKind(domain.DeckKinds[(i+step)%len(domain.DeckKinds)])
		return m, m.startDeckLoad(true)

	case key.Matches(msg, Keys.Refresh):
		return m, m.startDeckLoad(true)

	case key.Matches(msg, Keys.Details):
		if item, ok := d.Peek(); ok {
			m.showDetails(item)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleJournalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.journalItems())

	switch {
	case key.Matches(msg, Keys.Up):
		m.JournalCursor = max(m.JournalCursor-1, 0)
	case key.Matches(msg, Keys.Down):
		m.JournalCursor = max(min(m.JournalCursor+1, n-1), 0)

	case key.Matches(msg, Keys.NextTab, Keys.PrevTab):
		step := 1
		if key.Matches(msg, Keys.PrevTab) {
			step = len(collection.Filters) - 1
		}
		i := slices.Index(collection.Filters, m.JournalFilter)
		m.JournalFilter = collection.Filters[(i+step)%len(collection.Filters)]
		m.JournalCursor = 0

	case key.Matches(msg, Keys.Filter):
		m.Filtering = true
		return m, m.FilterInput.Focus()

	case key.Matches(msg, Keys.Escape):
		m.FilterInput.Reset()
		m.JournalCursor = 0

	case key.Matches(msg, Keys.Details):
		if entry, ok := m.selectedJournalItem(); ok {
			m.showDetails(entry.MediaItem)
		}

	case key.Matches(msg, Keys.Rate):
		if entry, ok := m.selectedJournalItem(); ok {
			m.RatingModal.Show(entry.MediaItem)
		}

	case key.Matches(msg, Keys.Surprise):
		if m.canSurprise() {
			m.Shuffling = true
			return m, SurpriseCmd()
		}
	}
	return m, nil
}

// handleFilterKey edits the journal filter query
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Filtering = false
		m.FilterInput.Blur()
		m.FilterInput.Reset()
		m.JournalCursor = 0
		return m, nil
	case "enter":
		m.Filtering = false
		m.FilterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.FilterInput, cmd = m.FilterInput.Update(msg)
	m.JournalCursor = 0
	return m, cmd
}

// handleMouseMsg drives drag-to-swipe on the Discover card
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.State != StateMain || m.Screen != ViewDiscover || m.Session == nil || m.modalVisible() {
		m.tracker.Cancel()
		return m, nil
	}
	now := time.Now()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			if _, ok := m.Session.Deck().Peek(); ok {
				m.tracker.Press(msg.X, msg.Y, now)
			}
		}
	case tea.MouseActionMotion:
		m.tracker.Move(msg.X, msg.Y, now)
	case tea.MouseActionRelease:
		if !m.tracker.Active() {
			return m, nil
		}
		if dir, ok := m.tracker.Release(msg.X, msg.Y, now); ok {
			return m, m.decide(dir)
		}
	}
	return m, nil
}

func (m Model) modalVisible() bool {
	return m.RatingModal.IsVisible() || m.DetailsModal.IsVisible() || m.SearchModal.IsVisible()
}
