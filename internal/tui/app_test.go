package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/session"
	"github.com/mmcdole/swipetrack/internal/store"
	"github.com/mmcdole/swipetrack/internal/tui/components"
)

type fakeSource struct {
	mu      sync.Mutex
	batches map[int][]domain.MediaItem
}

func (f *fakeSource) FetchBatch(_ context.Context, _ domain.DeckKind, page int) ([]domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batches[page], nil
}

type fakeRemote struct {
	mu       sync.Mutex
	records  []domain.RemoteRecord
	appended []domain.RemoteRecord
}

func (f *fakeRemote) Append(_ context.Context, rec domain.RemoteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, rec)
	return nil
}

func (f *fakeRemote) List(context.Context, string, int) ([]domain.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, nil
}

func media(ids ...string) []domain.MediaItem {
	out := make([]domain.MediaItem, len(ids))
	for i, id := range ids {
		out[i] = domain.MediaItem{ID: id, Title: "Title " + id, Type: domain.MediaTypeMovie}
	}
	return out
}

func newTestSession(t *testing.T, remote domain.RecordStore, ids ...string) *session.Session {
	t.Helper()
	return newUserSession(t, "alice", remote, ids...)
}

func newUserSession(t *testing.T, username string, remote domain.RecordStore, ids ...string) *session.Session {
	t.Helper()
	mirror, err := store.NewMirrorStore("")
	require.NoError(t, err)
	src := &fakeSource{batches: map[int][]domain.MediaItem{1: media(ids...)}}
	s := session.New(username, session.Deps{Source: src, Mirror: mirror, Remote: remote, Kind: domain.DeckAll}, adapter.NullLogger())
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestModel(t *testing.T, s *session.Session) Model {
	t.Helper()
	m := NewModel(Options{Session: s, Logger: adapter.NullLogger()})
	t.Cleanup(m.debouncer.Stop)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func loadDeck(t *testing.T, s *session.Session) {
	t.Helper()
	_, ok := s.LoadBatch(context.Background(), true)
	require.True(t, ok)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestSwipeKeysUpdateCollection(t *testing.T) {
	s := newTestSession(t, nil, "a", "b", "c")
	m := newTestModel(t, s)
	loadDeck(t, s)

	m = press(m, "right")
	entry, ok := s.Collection().Get("a")
	require.True(t, ok)
	assert.Equal(t, domain.StatusWatched, entry.Status)

	m = press(m, "up")
	entry, ok = s.Collection().Get("b")
	require.True(t, ok)
	assert.Equal(t, domain.StatusBacklog, entry.Status)
	assert.True(t, entry.Priority)

	m = press(m, "h")
	assert.False(t, s.Collection().Has("c"), "skip does not journal")
	assert.Equal(t, 0, s.Deck().Len())
	assert.True(t, s.Deck().Loading(), "low water asks for another batch")
	assert.Contains(t, m.View(), "Finding something")
}

func TestSwipePushesToRemoteInOrder(t *testing.T) {
	remote := &fakeRemote{}
	s := newTestSession(t, remote, "a", "b", "c")
	m := newTestModel(t, s)
	loadDeck(t, s)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, components.SyncSyncing, m.SyncStatus)
	assert.True(t, m.pushing)

	// A second swipe queues behind the push in flight
	m = press(m, "right")
	assert.True(t, s.Sync().Syncing())

	push := func(id string) PushDoneMsg {
		t.Helper()
		// the record in flight was popped by pushPending; push it the way PushCmd does
		require.NoError(t, s.Sync().Push(context.Background(), domain.RemoteRecord{ItemID: id}))
		return PushDoneMsg{Session: s, ItemID: id}
	}

	updated, cmd = m.Update(push("a"))
	m = updated.(Model)
	require.NotNil(t, cmd, "next queued record goes out")
	assert.True(t, m.pushing)
	assert.Equal(t, components.SyncSyncing, m.SyncStatus)

	_, ok := s.NextPending()
	assert.False(t, ok, "b was handed to the push command")

	updated, _ = m.Update(push("b"))
	m = updated.(Model)
	assert.False(t, m.pushing)
	assert.Equal(t, components.SyncSynced, m.SyncStatus)
}

func TestMouseDragSwipes(t *testing.T) {
	s := newTestSession(t, nil, "a", "b")
	m := newTestModel(t, s)
	loadDeck(t, s)

	updated, _ := m.Update(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = updated.(Model)
	updated, _ = m.Update(tea.MouseMsg{X: 30, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = updated.(Model)

	entry, ok := s.Collection().Get("a")
	require.True(t, ok)
	assert.Equal(t, domain.StatusWatched, entry.Status)

	// Short vertical drag snaps back
	updated, _ = m.Update(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = updated.(Model)
	updated, _ = m.Update(tea.MouseMsg{X: 10, Y: 11, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = updated.(Model)
	assert.False(t, s.Collection().Has("b"))
	assert.Equal(t, 1, s.Deck().Len())
}

func TestStaleDeckLoadIgnored(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)

	ticket, ok := s.Deck().Begin(true)
	require.True(t, ok)
	s.Deck().SetKind(domain.DeckGame)

	updated, _ := m.Update(DeckLoadedMsg{Session: s, Ticket: ticket, Items: media("x")})
	m = updated.(Model)
	assert.Equal(t, 0, s.Deck().Len())
}

func TestStaleSearchResultsIgnored(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)
	m = press(m, "f")
	require.True(t, m.SearchModal.IsVisible())

	old := m.debouncer.Schedule("star")
	current := m.debouncer.Schedule("stars")

	updated, _ := m.Update(SearchResultsMsg{Ticket: old, Results: media("old")})
	m = updated.(Model)
	assert.Empty(t, m.SearchModal.Results())

	updated, _ = m.Update(SearchResultsMsg{Ticket: current, Results: media("new")})
	m = updated.(Model)
	require.Len(t, m.SearchModal.Results(), 1)
	assert.Equal(t, "new", m.SearchModal.Results()[0].ID)
}

func TestSearchDebouncedStaleTicketSkipsSearch(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)
	m = press(m, "f")

	old := m.debouncer.Schedule("star")
	m.debouncer.Schedule("stars")

	_, cmd := m.Update(SearchDebouncedMsg{Ticket: old})
	require.NotNil(t, cmd, "wait command is re-armed")
	assert.False(t, m.debouncer.IsCurrent(old))
}

func TestDetailsActionsFromSearch(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)

	item := domain.MediaItem{ID: "g1", Title: "Hades", Type: domain.MediaTypeGame}
	m.showDetails(item)
	require.True(t, m.DetailsModal.IsVisible())

	m = press(m, "b")
	entry, ok := s.Collection().Get("g1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusBacklog, entry.Status)
	assert.False(t, m.DetailsModal.IsVisible())
}

func TestRatingFlow(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)

	item := domain.MediaItem{ID: "m1", Title: "Heat", Type: domain.MediaTypeMovie}
	m.showDetails(item)
	m = press(m, "r")
	require.True(t, m.RatingModal.IsVisible())

	m = press(m, "enter")
	assert.True(t, m.RatingModal.IsVisible(), "zero rating cannot be confirmed")
	assert.False(t, s.Collection().Has("m1"))

	m = press(m, "4", " ", "enter")
	assert.False(t, m.RatingModal.IsVisible())
	entry, ok := s.Collection().Get("m1")
	require.True(t, ok)
	assert.Equal(t, 4, entry.UserRating)
	assert.Equal(t, domain.StatusWatched, entry.Status)
	assert.Equal(t, []string{domain.Tags[0]}, entry.Tags)
}

func TestSurpriseMe(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)
	m = press(m, "2")
	require.Equal(t, ViewJournal, m.Screen)

	s.UpsertFromDecision(media("a")[0], domain.Details{Status: domain.StatusBacklog})
	assert.False(t, m.canSurprise(), "needs two backlog entries")

	s.UpsertFromDecision(media("b")[0], domain.Details{Status: domain.StatusBacklog})
	require.True(t, m.canSurprise())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.True(t, m.Shuffling)

	updated, _ = m.Update(SurpriseMsg{})
	m = updated.(Model)
	assert.False(t, m.Shuffling)
	require.True(t, m.DetailsModal.IsVisible())
	assert.Contains(t, []string{"a", "b"}, m.DetailsModal.Item().ID)
}

func TestJournalFilter(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)
	s.UpsertFromDecision(domain.MediaItem{ID: "1", Title: "Blade Runner"}, domain.Details{Status: domain.StatusWatched})
	s.UpsertFromDecision(domain.MediaItem{ID: "2", Title: "Alien"}, domain.Details{Status: domain.StatusBacklog})

	m = press(m, "2")
	assert.Len(t, m.journalItems(), 2)

	m = press(m, "]", "]")
	assert.Equal(t, "watched", string(m.JournalFilter))
	assert.Len(t, m.journalItems(), 1)

	m = press(m, "[", "[", "/", "a", "l", "i")
	assert.True(t, m.Filtering)
	items := m.journalItems()
	require.Len(t, items, 1)
	assert.Equal(t, "Alien", items[0].Item.Title)
	assert.Equal(t, []int{0, 1, 2}, items[0].MatchedIndexes)

	m = press(m, "esc")
	assert.False(t, m.Filtering)
	assert.Len(t, m.journalItems(), 2)
}

func TestLoginOpensSession(t *testing.T) {
	s := newTestSession(t, nil, "a")
	var opened string
	m := NewModel(Options{
		Logger: adapter.NullLogger(),
		Open: func(username string) (*session.Session, error) {
			opened = username
			return s, nil
		},
	})
	t.Cleanup(m.debouncer.Stop)
	require.Equal(t, StateLogin, m.State)

	m = press(m, "B", "o", "b", "enter")
	assert.True(t, m.Login.Submitting())

	_, cmd := m.Update(LoginReadyMsg{Username: " Bob "})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, "bob", opened)

	updated, cmd := m.Update(msg)
	m = updated.(Model)
	assert.Equal(t, StateMain, m.State)
	assert.Equal(t, components.SyncLocal, m.SyncStatus)
	require.NotNil(t, cmd, "local-only session starts the deck load")

	loaded, ok := cmd().(DeckLoadedMsg)
	require.True(t, ok)
	updated, _ = m.Update(loaded)
	m = updated.(Model)
	assert.Equal(t, 1, s.Deck().Len())
}

func TestRemoteMergeStartsDeck(t *testing.T) {
	remote := &fakeRemote{}
	s := newTestSession(t, remote, "a")
	m := NewModel(Options{Session: s, Logger: adapter.NullLogger()})
	t.Cleanup(m.debouncer.Stop)

	updated, cmd := m.Update(SessionOpenedMsg{Session: s})
	m = updated.(Model)
	assert.Equal(t, components.SyncSyncing, m.SyncStatus)
	require.NotNil(t, cmd)

	fetched, ok := cmd().(RemoteFetchedMsg)
	require.True(t, ok)
	updated, cmd = m.Update(fetched)
	m = updated.(Model)
	assert.Equal(t, components.SyncSynced, m.SyncStatus)
	assert.NotNil(t, cmd)
	assert.True(t, s.Deck().Loading())
}

func TestLogoutReturnsToLogin(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)

	m = press(m, "L")
	require.Equal(t, StateConfirmLogout, m.State)
	m = press(m, "n")
	require.Equal(t, StateMain, m.State)

	updated, _ := m.Update(LogoutDoneMsg{})
	m = updated.(Model)
	assert.Equal(t, StateLogin, m.State)
	assert.Nil(t, m.Session)
}

func TestStatusClears(t *testing.T) {
	m := NewModel(Options{Logger: adapter.NullLogger()})
	t.Cleanup(m.debouncer.Stop)

	updated, cmd := m.Update(StatusMsg{Message: "hello"})
	m = updated.(Model)
	assert.Equal(t, "hello", m.StatusMsg)
	assert.NotNil(t, cmd)

	updated, _ = m.Update(ClearStatusMsg{})
	m = updated.(Model)
	assert.Empty(t, m.StatusMsg)
}

func TestResultsFromPreviousSessionAreDropped(t *testing.T) {
	aliceRemote := &fakeRemote{records: []domain.RemoteRecord{{
		Username: "alice",
		ItemID:   "alice-secret",
		Version:  1,
		Data: domain.CollectionItem{
			MediaItem: domain.MediaItem{ID: "alice-secret", Title: "Secret"},
			Status:    domain.StatusWatched,
		},
	}}}
	alice := newUserSession(t, "alice", aliceRemote, "alice-deck")
	bob := newUserSession(t, "bob", &fakeRemote{}, "bob-deck")

	m := NewModel(Options{Logger: adapter.NullLogger()})
	t.Cleanup(m.debouncer.Stop)

	updated, fetch := m.Update(SessionOpenedMsg{Session: alice})
	m = updated.(Model)
	require.NotNil(t, fetch)
	aliceFetched := fetch().(RemoteFetchedMsg)
	aliceTicket, ok := alice.Deck().Begin(true)
	require.True(t, ok)
	aliceDeck := LoadDeckCmd(alice, aliceTicket)().(DeckLoadedMsg)

	updated, _ = m.Update(LogoutDoneMsg{})
	m = updated.(Model)
	updated, _ = m.Update(SessionOpenedMsg{Session: bob})
	m = updated.(Model)
	require.Same(t, bob, m.Session)

	// bob's first load carries the same generation as alice's
	bobTicket, ok := bob.Deck().Begin(true)
	require.True(t, ok)
	require.Equal(t, aliceTicket.Generation, bobTicket.Generation)

	updated, _ = m.Update(aliceFetched)
	m = updated.(Model)
	updated, _ = m.Update(aliceDeck)
	m = updated.(Model)
	updated, _ = m.Update(PushDoneMsg{Session: alice, ItemID: "alice-secret", Err: assert.AnError})
	m = updated.(Model)

	assert.False(t, bob.Collection().Has("alice-secret"))
	assert.Equal(t, 0, bob.Deck().Len())
	assert.True(t, bob.Deck().Loading(), "bob's own load is still pending")
	assert.Equal(t, components.SyncSyncing, m.SyncStatus)
	assert.Equal(t, 0, bob.Sync().LoadLocal(), "nothing of alice's reached bob's mirror")

	updated, _ = m.Update(LoadDeckCmd(bob, bobTicket)())
	m = updated.(Model)
	top, ok := bob.Deck().Peek()
	require.True(t, ok)
	assert.Equal(t, "bob-deck", top.ID)
}

func TestDeckEmptyOffersRefresh(t *testing.T) {
	s := newTestSession(t, nil)
	m := newTestModel(t, s)
	assert.Contains(t, m.View(), "Finding something", "nothing loaded yet")

	loadDeck(t, s)
	require.True(t, s.Deck().Empty())
	assert.Contains(t, m.View(), "No more cards")
}

func TestJournalRowHighlightsMatch(t *testing.T) {
	assert.Equal(t, []int{0, 2}, runeIndexes("écho", []int{0, 3}))
	assert.Nil(t, runeIndexes("alien", nil))

	row := renderJournalRow(search.Match{
		Item:           domain.CollectionItem{MediaItem: domain.MediaItem{ID: "1", Title: "Alien", Type: domain.MediaTypeMovie}, Status: domain.StatusBacklog},
		MatchedIndexes: []int{0, 1, 2},
	}, true, 80)
	assert.Contains(t, row, "ien")
	assert.Contains(t, row, "Backlog")
}
