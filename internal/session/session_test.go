package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/store"
)

type fakeSource struct {
	mu      sync.Mutex
	pages   []int
	batches map[int][]domain.MediaItem
	err     error
}

func (f *fakeSource) FetchBatch(_ context.Context, _ domain.DeckKind, page int) ([]domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[page], nil
}

type fakeRemote struct {
	mu       sync.Mutex
	appended []domain.RemoteRecord
	fail     bool
}

func (f *fakeRemote) Append(_ context.Context, rec domain.RemoteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.ErrRemoteStore
	}
	f.appended = append(f.appended, rec)
	return nil
}

func (f *fakeRemote) List(context.Context, string, int) ([]domain.RemoteRecord, error) {
	return nil, nil
}

func media(ids ...string) []domain.MediaItem {
	out := make([]domain.MediaItem, len(ids))
	for i, id := range ids {
		out[i] = domain.MediaItem{ID: id, Title: "Title " + id, Type: domain.MediaTypeMovie}
	}
	return out
}

func newSession(t *testing.T, src *fakeSource, remote domain.RecordStore) *Session {
	t.Helper()
	mirror, err := store.NewMirrorStore(t.TempDir())
	require.NoError(t, err)
	s := New("alice", Deps{Source: src, Mirror: mirror, Remote: remote, Kind: domain.DeckMovie}, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmptyDeckRefreshResetsCursor(t *testing.T) {
	src := &fakeSource{batches: map[int][]domain.MediaItem{
		1: media("a", "b"),
		3: media("z"),
	}}
	s := newSession(t, src, nil)

	out, ok := s.LoadBatch(context.Background(), true)
	require.True(t, ok)
	assert.Equal(t, 2, out.Added)
	assert.Equal(t, 2, s.Deck().Page())

	for _, it := range media("a", "b") {
		s.Decide(it, domain.DirectionRight)
	}
	assert.True(t, s.Deck().Empty())

	// page 2 returns nothing new
	out, ok = s.LoadBatch(context.Background(), false)
	require.True(t, ok)
	assert.True(t, out.Empty)
	assert.Equal(t, 3, s.Deck().Page())

	// refresh goes back to page 1; everything there is already collected
	out, ok = s.LoadBatch(context.Background(), true)
	require.True(t, ok)
	assert.Zero(t, out.Added)
	assert.True(t, s.Deck().Empty())
	assert.Equal(t, 2, s.Deck().Page())
	assert.Equal(t, []int{1, 2, 1}, src.pages)
}

func TestDecidePopulatesCollection(t *testing.T) {
	s := newSession(t, &fakeSource{batches: map[int][]domain.MediaItem{1: media("l", "r", "u", "d")}}, nil)
	_, ok := s.LoadBatch(context.Background(), true)
	require.True(t, ok)

	items := media("l", "r", "u", "d")
	s.Decide(items[0], domain.DirectionLeft)
	s.Decide(items[1], domain.DirectionRight)
	s.Decide(items[2], domain.DirectionUp)
	res := s.Decide(items[3], domain.DirectionDown)
	assert.True(t, res.Removed)

	coll := s.Collection()
	assert.False(t, coll.Has("l"))
	r, _ := coll.Get("r")
	assert.Equal(t, domain.StatusWatched, r.Status)
	u, _ := coll.Get("u")
	assert.Equal(t, domain.StatusBacklog, u.Status)
	assert.True(t, u.Priority)
	d, _ := coll.Get("d")
	assert.Equal(t, domain.StatusBacklog, d.Status)
	assert.False(t, d.Priority)
	assert.Equal(t, 0, s.Deck().Len())
}

func TestLowWaterSignalsMore(t *testing.T) {
	s := newSession(t, &fakeSource{batches: map[int][]domain.MediaItem{1: media("1", "2", "3", "4", "5", "6")}}, nil)
	_, ok := s.LoadBatch(context.Background(), true)
	require.True(t, ok)

	res := s.Decide(media("1")[0], domain.DirectionLeft)
	assert.False(t, res.NeedsMore, "5 left is not below the mark")
	res = s.Decide(media("2")[0], domain.DirectionLeft)
	assert.True(t, res.NeedsMore)
}

func TestMutationsArePersistedAndPushed(t *testing.T) {
	remote := &fakeRemote{}
	s := newSession(t, &fakeSource{}, remote)

	item := media("m")[0]
	_, inserted := s.UpsertFromDecision(item, domain.Details{Status: domain.StatusBacklog})
	require.True(t, inserted)
	rated := s.ApplyRating(item, 4, []string{"Cozy"})
	assert.Equal(t, domain.StatusWatched, rated.Status)
	_, inserted = s.ApplyStatusAction(item, domain.StatusDropped)
	assert.False(t, inserted, "existing entry is unchanged")

	require.NoError(t, s.Flush(context.Background()))
	require.Len(t, remote.appended, 2)
	assert.Equal(t, domain.StatusBacklog, remote.appended[0].Data.Status)
	assert.Equal(t, domain.StatusWatched, remote.appended[1].Data.Status)
	assert.Equal(t, 4, remote.appended[1].Data.UserRating)
	assert.Less(t, remote.appended[0].Version, remote.appended[1].Version)
	assert.Empty(t, s.DrainPending())

	saved, ok := s.mirror.LoadCollection("alice")
	require.True(t, ok)
	require.Len(t, saved, 1)
	assert.Equal(t, 4, saved[0].UserRating)
}

func TestFlushReportsFailures(t *testing.T) {
	remote := &fakeRemote{fail: true}
	s := newSession(t, &fakeSource{}, remote)
	s.UpsertFromDecision(media("x")[0], domain.Details{Status: domain.StatusWatched})

	err := s.Flush(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemoteStore)
	assert.Empty(t, s.DrainPending(), "failed pushes are not retried")
}

func TestNextPendingIsOldestFirst(t *testing.T) {
	remote := &fakeRemote{}
	s := newSession(t, &fakeSource{}, remote)
	s.UpsertFromDecision(media("a")[0], domain.Details{Status: domain.StatusWatched})
	s.UpsertFromDecision(media("b")[0], domain.Details{Status: domain.StatusBacklog})

	first, ok := s.NextPending()
	require.True(t, ok)
	assert.Equal(t, "a", first.ItemID)
	assert.True(t, s.Sync().Syncing())

	require.NoError(t, s.Sync().Push(context.Background(), first))
	require.NoError(t, s.Flush(context.Background()))
	require.Len(t, remote.appended, 2)
	assert.Equal(t, "b", remote.appended[1].ItemID)

	_, ok = s.NextPending()
	assert.False(t, ok)
	assert.False(t, s.Sync().Syncing())
}

func TestForgetDeletesMirror(t *testing.T) {
	s := newSession(t, &fakeSource{}, &fakeRemote{})
	s.UpsertFromDecision(media("a")[0], domain.Details{Status: domain.StatusWatched})
	_, ok := s.mirror.LoadCollection("alice")
	require.True(t, ok)

	require.NoError(t, s.Forget())
	assert.Equal(t, 0, s.Collection().Len())
	assert.Empty(t, s.DrainPending())
	_, ok = s.mirror.LoadCollection("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Sync().LoadLocal())
}

func TestLocalOnlySessionQueuesNothing(t *testing.T) {
	s := newSession(t, &fakeSource{}, nil)
	s.UpsertFromDecision(media("x")[0], domain.Details{Status: domain.StatusWatched})
	assert.Empty(t, s.DrainPending())
	assert.Equal(t, 1, s.Start(context.Background()).Total)
}

func TestOpenRequiresUsername(t *testing.T) {
	_, err := Open(adapter.DefaultConfig(), "", nil)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestIdentity(t *testing.T) {
	cfg := adapter.DefaultConfig()
	var saved []string
	id := &Identity{
		cfg:   cfg,
		save:  func(u string) error { saved = append(saved, u); return nil },
		clear: func() error { return nil },
	}

	_, ok := id.Username()
	assert.False(t, ok)

	_, err := id.Login("   ")
	assert.ErrorIs(t, err, ErrEmptyUsername)

	name, err := id.Login("  Carol ")
	require.NoError(t, err)
	assert.Equal(t, "carol", name)
	assert.Equal(t, []string{"carol"}, saved)
	got, ok := id.Username()
	assert.True(t, ok)
	assert.Equal(t, "carol", got)

	require.NoError(t, id.Logout())
	_, ok = id.Username()
	assert.False(t, ok)

	id.clear = func() error { return fmt.Errorf("write failed: %w", errors.ErrUnsupported) }
	cfg.Session.Username = "dave"
	assert.Error(t, id.Logout())
	assert.Equal(t, "dave", cfg.Session.Username)
}
