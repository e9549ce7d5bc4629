package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/swipetrack/internal/domain"
)

func TestCollectionItemJSONUsesRecordShape(t *testing.T) {
	rating := 8.8
	item := domain.CollectionItem{
		MediaItem: domain.MediaItem{
			ID:      "tt15239678",
			Title:   "Dune: Part Two",
			Year:    2024,
			Type:    domain.MediaTypeMovie,
			Rating:  &rating,
			Runtime: "166 min",
		},
		UserRating: 4,
		DateAdded:  time.UnixMilli(1718000000000),
		Status:     domain.StatusWatched,
		Tags:       []string{"Cozy"},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "tt15239678", raw["id"])
	assert.Equal(t, float64(1718000000000), raw["dateAdded"])
	assert.Equal(t, "watched", raw["status"])
	assert.Equal(t, []any{}, raw["genre"])
	assert.Equal(t, float64(4), raw["userRating"])

	var back domain.CollectionItem
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, item.ID, back.ID)
	assert.Equal(t, item.DateAdded.UnixMilli(), back.DateAdded.UnixMilli())
	assert.Equal(t, 8.8, back.ExternalRating())
}

func TestCollectionItemUnmarshalUnknownStatusFallsBackToBacklog(t *testing.T) {
	var item domain.CollectionItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","status":"wishlist","userRating":9,"tags":["a","a",""]}`), &item))
	assert.Equal(t, domain.StatusBacklog, item.Status)
	assert.Equal(t, domain.MaxUserRating, item.UserRating)
	assert.Equal(t, []string{"a"}, item.Tags)
}

func TestDirectionDetails(t *testing.T) {
	d, ok := domain.DirectionRight.Details()
	assert.True(t, ok)
	assert.Equal(t, domain.StatusWatched, d.Status)

	d, ok = domain.DirectionUp.Details()
	assert.True(t, ok)
	assert.Equal(t, domain.StatusBacklog, d.Status)
	assert.True(t, d.Priority)

	d, ok = domain.DirectionDown.Details()
	assert.True(t, ok)
	assert.False(t, d.Priority)

	_, ok = domain.DirectionLeft.Details()
	assert.False(t, ok)
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	_, err := domain.ParseStatus("finished")
	assert.Error(t, err)

	st, err := domain.ParseStatus(" Playing ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaying, st)
}
