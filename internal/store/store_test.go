package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/swipetrack/internal/domain"
)

func sampleItems() []domain.CollectionItem {
	return []domain.CollectionItem{
		{
			MediaItem:  domain.MediaItem{ID: "tt0944947", Title: "Game of Thrones", Type: domain.MediaTypeSeries, Runtime: "57 min"},
			Status:     domain.StatusWatched,
			UserRating: 5,
			DateAdded:  time.UnixMilli(1700000000000),
			Tags:       []string{"Binge-worthy"},
		},
		{
			MediaItem: domain.MediaItem{ID: "3498", Title: "Grand Theft Auto V", Type: domain.MediaTypeGame},
			Status:    domain.StatusBacklog,
			Priority:  true,
			DateAdded: time.UnixMilli(1690000000000),
		},
	}
}

func TestMirrorStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewMirrorStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveCollection("Alice", sampleItems()))
	require.NoError(t, s.Close())

	s, err = NewMirrorStore(dir)
	require.NoError(t, err)
	defer s.Close()

	items, ok := s.LoadCollection("alice")
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "tt0944947", items[0].ID)
	assert.Equal(t, domain.StatusWatched, items[0].Status)
	assert.Equal(t, int64(1700000000000), items[0].DateAdded.UnixMilli())
	assert.True(t, items[1].Priority)
}

func TestMirrorStoreMissingUser(t *testing.T) {
	s, err := NewMirrorStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.LoadCollection("nobody")
	assert.False(t, ok)
}

func TestMirrorStoreVersionClock(t *testing.T) {
	for name, dir := range map[string]string{"bolt": t.TempDir(), "memory": ""} {
		t.Run(name, func(t *testing.T) {
			s, err := NewMirrorStore(dir)
			require.NoError(t, err)
			defer s.Close()

			v1, err := s.NextVersion("bob")
			require.NoError(t, err)
			v2, err := s.NextVersion("bob")
			require.NoError(t, err)
			assert.Equal(t, uint64(1), v1)
			assert.Equal(t, uint64(2), v2)

			require.NoError(t, s.ObserveVersion("bob", 10))
			require.NoError(t, s.ObserveVersion("bob", 4))
			v3, err := s.NextVersion("bob")
			require.NoError(t, err)
			assert.Equal(t, uint64(11), v3)

			other, err := s.NextVersion("carol")
			require.NoError(t, err)
			assert.Equal(t, uint64(1), other)
		})
	}
}

func TestMirrorStoreDeleteUserAndInvalidateAll(t *testing.T) {
	s, err := NewMirrorStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveCollection("alice", sampleItems()))
	require.NoError(t, s.SaveCollection("bob", sampleItems()[:1]))

	require.NoError(t, s.DeleteUser("alice"))
	_, ok := s.LoadCollection("alice")
	assert.False(t, ok)
	_, ok = s.LoadCollection("bob")
	assert.True(t, ok)

	require.NoError(t, s.InvalidateAll())
	_, ok = s.LoadCollection("bob")
	assert.False(t, ok)
}

func TestMirrorStoreSavesEmptyCollection(t *testing.T) {
	s, err := NewMirrorStore("")
	require.NoError(t, err)

	require.NoError(t, s.SaveCollection("alice", nil))
	items, ok := s.LoadCollection("alice")
	assert.True(t, ok)
	assert.Empty(t, items)
}
