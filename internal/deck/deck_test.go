package deck

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// pagedSource serves fixed pages and records every request
type pagedSource struct {
	pages    map[int][]domain.MediaItem
	err      error
	requests []int
}

func (p *pagedSource) FetchBatch(_ context.Context, _ domain.DeckKind, page int) ([]domain.MediaItem, error) {
	p.requests = append(p.requests, page)
	if p.err != nil {
		return nil, p.err
	}
	return p.pages[page], nil
}

func items(ids ...string) []domain.MediaItem {
	out := make([]domain.MediaItem, len(ids))
	for i, id := range ids {
		out[i] = domain.MediaItem{ID: id, Title: "Title " + id, Type: domain.MediaTypeMovie}
	}
	return out
}

func ids(items []domain.MediaItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestLoadBatchFiltersKnownAndQueued(t *testing.T) {
	src := &pagedSource{pages: map[int][]domain.MediaItem{
		1: items("a", "b", "c"),
		2: items("c", "d", "d", "e"),
	}}
	m := New(src, domain.DeckMovie, 0, nil)
	known := func(id string) bool { return id == "b" || id == "e" }

	out, ok := m.LoadBatch(context.Background(), true, known)
	require.True(t, ok)
	assert.Equal(t, 2, out.Added)
	assert.Equal(t, []string{"a", "c"}, ids(m.Items()))
	assert.Equal(t, 2, m.Page())

	out, ok = m.LoadBatch(context.Background(), false, known)
	require.True(t, ok)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, []string{"a", "c", "d"}, ids(m.Items()))
	assert.Equal(t, 3, m.Page())
	assert.Equal(t, []int{1, 2}, src.requests)
}

func TestBeginRejectsWhileLoading(t *testing.T) {
	m := New(&pagedSource{}, domain.DeckGame, 0, nil)
	_, ok := m.Begin(false)
	require.True(t, ok)
	_, ok = m.Begin(true)
	assert.False(t, ok)
	assert.True(t, m.Loading())
}

func TestInitialCursorIsOne(t *testing.T) {
	src := &pagedSource{pages: map[int][]domain.MediaItem{1: items("x")}}
	m := New(src, domain.DeckAll, 0, nil)
	assert.Equal(t, 1, m.Page())

	t1, ok := m.Begin(false)
	require.True(t, ok)
	assert.Equal(t, 1, t1.Page)
}

func TestFailedLoadLeavesStateUnchanged(t *testing.T) {
	src := &pagedSource{pages: map[int][]domain.MediaItem{1: items("a", "b")}}
	m := New(src, domain.DeckMovie, 0, nil)
	_, _ = m.LoadBatch(context.Background(), true, nil)

	src.err = errors.New("boom")
	out, ok := m.LoadBatch(context.Background(), false, nil)
	require.True(t, ok)
	assert.Error(t, out.Err)
	assert.False(t, m.Loading())
	assert.Equal(t, 2, m.Page())
	assert.Equal(t, []string{"a", "b"}, ids(m.Items()))
}

func TestStaleCompletionDiscarded(t *testing.T) {
	m := New(&pagedSource{}, domain.DeckMovie, 0, nil)
	stale, ok := m.Begin(true)
	require.True(t, ok)

	m.SetKind(domain.DeckGame)
	fresh, ok := m.Begin(true)
	require.True(t, ok)
	assert.Equal(t, domain.DeckGame, fresh.Kind)

	out := m.Complete(stale, items("movie-1"), nil, nil)
	assert.False(t, out.Applied)
	assert.Zero(t, m.Len())
	assert.True(t, m.Loading(), "stale result must not clear the newer load")

	out = m.Complete(fresh, items("game-1"), nil, nil)
	assert.True(t, out.Applied)
	assert.Equal(t, []string{"game-1"}, ids(m.Items()))
}

func TestSetKindResetsCursor(t *testing.T) {
	src := &pagedSource{pages: map[int][]domain.MediaItem{1: items("a"), 2: items("b")}}
	m := New(src, domain.DeckMovie, 0, nil)
	_, _ = m.LoadBatch(context.Background(), true, nil)
	_, _ = m.LoadBatch(context.Background(), false, nil)
	require.Equal(t, 3, m.Page())

	m.SetKind(domain.DeckSeries)
	assert.Equal(t, 1, m.Page())
	assert.Zero(t, m.Len())
	assert.Equal(t, domain.DeckSeries, m.Kind())
}

func TestDecide(t *testing.T) {
	pages := map[int][]domain.MediaItem{}
	var all []string
	for i := range 7 {
		all = append(all, fmt.Sprintf("m%d", i))
	}
	pages[1] = items(all...)
	m := New(&pagedSource{pages: pages}, domain.DeckMovie, 5, nil)
	_, _ = m.LoadBatch(context.Background(), true, nil)

	res := m.Decide(items("m0")[0], domain.DirectionLeft)
	assert.True(t, res.Removed)
	assert.False(t, res.Keep)
	assert.False(t, res.NeedsMore, "6 left is above the low-water mark")

	res = m.Decide(items("m1")[0], domain.DirectionUp)
	assert.True(t, res.Keep)
	assert.Equal(t, domain.StatusBacklog, res.Details.Status)
	assert.True(t, res.Details.Priority)
	assert.False(t, res.NeedsMore)

	res = m.Decide(items("m2")[0], domain.DirectionRight)
	assert.Equal(t, domain.StatusWatched, res.Details.Status)
	assert.True(t, res.NeedsMore, "4 left is below the low-water mark")

	// Not queued: no-op on the queue
	res = m.Decide(items("zzz")[0], domain.DirectionDown)
	assert.False(t, res.Removed)
	assert.True(t, res.Keep)
	assert.False(t, res.NeedsMore)
	assert.Equal(t, 4, m.Len())
}

func TestDecideOnEmptyQueue(t *testing.T) {
	m := New(&pagedSource{}, domain.DeckMovie, 0, nil)
	res := m.Decide(items("a")[0], domain.DirectionRight)
	assert.False(t, res.Removed)
	assert.Zero(t, m.Len())
}

// An empty deck followed by a refresh resets the cursor to 2 and refills.
func TestEmptyDeckRefresh(t *testing.T) {
	src := &pagedSource{pages: map[int][]domain.MediaItem{
		1: items("a"),
		2: nil,
	}}
	m := New(src, domain.DeckMovie, 0, nil)
	known := map[string]bool{}
	isKnown := func(id string) bool { return known[id] }

	_, _ = m.LoadBatch(context.Background(), true, isKnown)
	top, ok := m.Peek()
	require.True(t, ok)

	res := m.Decide(top, domain.DirectionRight)
	known[top.ID] = true
	require.True(t, res.NeedsMore)

	out, _ := m.LoadBatch(context.Background(), false, isKnown)
	assert.True(t, out.Empty)
	assert.True(t, m.Empty())
	assert.Equal(t, 3, m.Page())

	src.pages[1] = items("a", "b")
	out, _ = m.LoadBatch(context.Background(), true, isKnown)
	assert.False(t, out.Empty)
	assert.False(t, m.Empty())
	assert.Equal(t, 2, m.Page())
	assert.Equal(t, []string{"b"}, ids(m.Items()))
}
