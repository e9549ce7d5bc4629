package cloud

import (
	"context"
	"encoding/json"
	"io"
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
	return NewClient(srv.URL+"/rest/user-entries/", "db-key", nil)
}

func TestAppend(t *testing.T) {
	added := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/user-entries", r.URL.Path)
		assert.Equal(t, "db-key", r.Header.Get("x-apikey"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"abc"}`))
	})

	rec := domain.RemoteRecord{
		EventID:  "ev-1",
		Username: "alice",
		ItemID:   "tt0133093",
		Version:  7,
		SyncedAt: added,
		Data: domain.CollectionItem{
			MediaItem: domain.MediaItem{ID: "tt0133093", Title: "The Matrix", Type: domain.MediaTypeMovie},
			Status:    domain.StatusWatched,
			DateAdded: added,
		},
	}
	require.NoError(t, c.Append(context.Background(), rec))

	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "tt0133093", got["itemId"])
	assert.EqualValues(t, 7, got["version"])
	data := got["data"].(map[string]any)
	assert.Equal(t, "watched", data["status"])
	assert.EqualValues(t, added.UnixMilli(), data["dateAdded"])
}

func TestList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.JSONEq(t, `{"username":"bob"}`, q.Get("q"))
		assert.Equal(t, "50", q.Get("max"))
		w.Write([]byte(`[
			{"_id":"1","username":"bob","itemId":"g1","version":2,"syncedAt":"2024-01-01T00:00:00Z",
			 "data":{"id":"g1","title":"Hades","type":"game","genre":["Action"],"status":"playing","dateAdded":1700000000000}},
			{"_id":"2","username":"bob","itemId":"m1","syncedAt":"2024-01-02T00:00:00Z",
			 "data":{"id":"m1","title":"Heat","type":"movie","status":"mystery","dateAdded":1700000000000}}
		]`))
	})

	records, err := c.List(context.Background(), "bob", 50)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(2), records[0].Version)
	assert.Equal(t, domain.StatusPlaying, records[0].Data.Status)
	assert.Equal(t, "Hades", records[0].Data.Title)
	assert.Zero(t, records[1].Version, "records without a version decode as 0")
	assert.Equal(t, domain.StatusBacklog, records[1].Data.Status)
}

func TestErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.Append(context.Background(), domain.RemoteRecord{ItemID: "x"})
	assert.ErrorIs(t, err, domain.ErrRemoteStore)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.List(context.Background(), "bob", 10)
	assert.ErrorIs(t, err, domain.ErrRemoteStore)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMissingCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.List(context.Background(), "bob", 10)
	assert.ErrorIs(t, err, domain.ErrRemoteStore)
}
