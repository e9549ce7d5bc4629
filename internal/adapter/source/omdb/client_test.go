package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/swipetrack/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", "test-key", nil)
	c.retryDelay = time.Millisecond
	return c
}

func TestSearchTitles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apikey"))
		assert.Equal(t, "batman", q.Get("s"))
		assert.Equal(t, "movie", q.Get("type"))
		assert.Equal(t, "1", q.Get("page"))
		w.Write([]byte(`{"Search":[
			{"Title":"Batman Begins","Year":"2005","imdbID":"tt0372784","Type":"movie","Poster":"https://img/bb.jpg"},
			{"Title":"Batman","Year":"1989","imdbID":"tt0096895","Type":"movie","Poster":"N/A"}
		],"totalResults":"2","Response":"True"}`))
	})

	items, err := c.SearchTitles(context.Background(), "batman", domain.MediaTypeMovie, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "tt0372784", items[0].ID)
	assert.Equal(t, 2005, items[0].Year)
	assert.Equal(t, SearchResultDescription, items[0].Description)
	assert.Nil(t, items[0].Rating)
	assert.Equal(t, []string{}, items[0].Genres)
	assert.Equal(t, domain.PlaceholderPoster, items[1].Poster)
}

func TestSearchTitlesNotFoundIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	})
	items, err := c.SearchTitles(context.Background(), "zzzzzz", domain.MediaTypeSeries, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetTitle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt0903747", r.URL.Query().Get("i"))
		w.Write([]byte(`{"Title":"Breaking Bad","Year":"2008–2013","Runtime":"49 min",
			"Genre":"Crime, Drama, Thriller","Plot":"A teacher turns to crime.","Poster":"https://img/bb.jpg",
			"imdbRating":"9.5","imdbID":"tt0903747","Type":"series","Response":"True"}`))
	})

	item, err := c.GetTitle(context.Background(), "tt0903747", domain.MediaTypeSeries)
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", item.Title)
	assert.Equal(t, 2008, item.Year)
	assert.Equal(t, domain.MediaTypeSeries, item.Type)
	assert.Equal(t, []string{"Crime", "Drama", "Thriller"}, item.Genres)
	assert.Equal(t, "49 min", item.Runtime)
	require.NotNil(t, item.Rating)
	assert.Equal(t, 9.5, *item.Rating)
}

func TestGetTitleMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Title":"Obscure","Year":"N/A","Runtime":"N/A","Genre":"N/A","Plot":"N/A",
			"Poster":"N/A","imdbRating":"N/A","imdbID":"tt1","Type":"movie","Response":"True"}`))
	})

	item, err := c.GetTitle(context.Background(), "tt1", domain.MediaTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Year)
	assert.Equal(t, "", item.Runtime)
	assert.Equal(t, []string{}, item.Genres)
	assert.Equal(t, domain.NoDescription, item.Description)
	assert.Equal(t, domain.PlaceholderPoster, item.Poster)
	assert.Nil(t, item.Rating)
}

func TestGetTitleIncorrectID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})
	_, err := c.GetTitle(context.Background(), "bogus", domain.MediaTypeMovie)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
	})
	_, err := c.SearchTitles(context.Background(), "star", domain.MediaTypeMovie, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"Search":[{"Title":"Dark","Year":"2017","imdbID":"tt5753856","Type":"series","Poster":"N/A"}],"Response":"True"}`))
	})

	items, err := c.SearchTitles(context.Background(), "dark", domain.MediaTypeSeries, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestServerErrorsExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.SearchTitles(context.Background(), "dark", domain.MediaTypeSeries, 1)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestParseYear(t *testing.T) {
	assert.Equal(t, 2011, parseYear("2011–2019"))
	assert.Equal(t, 2022, parseYear("2022–"))
	assert.Equal(t, 0, parseYear("N/A"))
	assert.Equal(t, 0, parseYear(""))
}
