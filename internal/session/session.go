// Package session holds the per-user application state created at login
// and torn down at logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/adapter/cloud"
	"github.com/mmcdole/swipetrack/internal/adapter/source"
	"github.com/mmcdole/swipetrack/internal/cloudsync"
	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/deck"
	"github.com/mmcdole/swipetrack/internal/domain"
	"github.com/mmcdole/swipetrack/internal/search"
	"github.com/mmcdole/swipetrack/internal/store"
)

// Deps are the collaborators a session is built from
type Deps struct {
	Source     domain.CandidateSource
	Titles     domain.TitleRepository
	Games      domain.GameRepository
	Mirror     domain.Mirror
	Remote     domain.RecordStore // nil for local-only sessions
	Kind       domain.DeckKind
	LowWater   int
	MaxRecords int
}

// Session owns the collection, the deck, the sync coordinator and search
// for one user. Every collection mutation goes through it.
type Session struct {
	username   string
	collection *collection.Store
	deck       *deck.Manager
	sync       *cloudsync.Coordinator
	search     *search.Service
	mirror     domain.Mirror
	logger     *slog.Logger

	mu      sync.Mutex
	pending []domain.RemoteRecord
}

// New creates a session for username
func New(username string, deps Deps, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	coll := collection.New(logger)
	s := &Session{
		username:   username,
		collection: coll,
		deck:       deck.New(deps.Source, deps.Kind, deps.LowWater, logger),
		sync:       cloudsync.New(username, coll, deps.Mirror, deps.Remote, deps.MaxRecords, logger),
		search:     search.NewService(deps.Titles, deps.Games, logger),
		mirror:     deps.Mirror,
		logger:     logger.With("username", username),
	}
	coll.SetObserver(s.onChange)
	return s
}

// Open builds a session from configuration: providers, the bbolt mirror in
// the cache dir and, when configured, the remote record store.
func Open(cfg *adapter.Config, username string, logger *slog.Logger) (*Session, error) {
	if username == "" {
		return nil, domain.ErrNoSession
	}
	mirror, err := store.NewMirrorStore(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local mirror: %w", err)
	}

	catalog := source.NewCatalogFromConfig(cfg, logger)
	deps := Deps{
		Source:     catalog,
		Titles:     catalog.Titles(),
		Games:      catalog.Games(),
		Mirror:     mirror,
		Kind:       cfg.DeckKind(),
		LowWater:   cfg.Deck.LowWaterMark,
		MaxRecords: cfg.Cloud.MaxRecords,
	}
	if cfg.CloudEnabled() {
		deps.Remote = cloud.NewClient(cfg.Cloud.URL, cfg.Cloud.APIKey, logger)
	}
	return New(username, deps, logger), nil
}

// onChange mirrors the full collection and queues a push for the changed item
func (s *Session) onChange(change collection.Change) {
	s.sync.Persist()
	if !s.sync.RemoteEnabled() {
		return
	}
	rec, err := s.sync.Prepare(change)
	if err != nil {
		s.logger.Error("failed to prepare push", "error", err, "itemID", change.Item.ID)
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, rec)
	s.mu.Unlock()
}

// Username returns the session's user
func (s *Session) Username() string { return s.username }

// Collection returns the collection store
func (s *Session) Collection() *collection.Store { return s.collection }

// Deck returns the deck manager
func (s *Session) Deck() *deck.Manager { return s.deck }

// Sync returns the sync coordinator
func (s *Session) Sync() *cloudsync.Coordinator { return s.sync }

// Search returns the unified search service
func (s *Session) Search() *search.Service { return s.search }

// Start loads the mirror, then merges the remote snapshot. Remote failures
// keep the local state.
func (s *Session) Start(ctx context.Context) cloudsync.MergeResult {
	s.sync.LoadLocal()
	records, err := s.sync.FetchRemote(ctx)
	return s.sync.ApplyRemote(records, err)
}

// LoadBatch synchronously fetches the next deck page. Candidates already in
// the collection are skipped.
func (s *Session) LoadBatch(ctx context.Context, reset bool) (deck.Outcome, bool) {
	return s.deck.LoadBatch(ctx, reset, s.collection.Has)
}

// CompleteLoad applies an asynchronously fetched batch
func (s *Session) CompleteLoad(t deck.Ticket, items []domain.MediaItem, err error) deck.Outcome {
	return s.deck.Complete(t, items, err, s.collection.Has)
}

// Decide applies a swipe: the card leaves the deck and, unless discarded,
// joins the collection.
func (s *Session) Decide(item domain.MediaItem, dir domain.Direction) deck.DecideResult {
	res := s.deck.Decide(item, dir)
	if res.Keep {
		s.collection.UpsertFromDecision(item, res.Details)
	}
	return res
}

// UpsertFromDecision adds item with explicit details
func (s *Session) UpsertFromDecision(item domain.MediaItem, d domain.Details) (domain.CollectionItem, bool) {
	return s.collection.UpsertFromDecision(item, d)
}

// ApplyRating rates item, inserting it as watched when absent
func (s *Session) ApplyRating(item domain.MediaItem, rating int, tags []string) domain.CollectionItem {
	return s.collection.ApplyRating(item, rating, tags)
}

// ApplyStatusAction records a status chosen from the detail view and drops
// the item from the deck
func (s *Session) ApplyStatusAction(item domain.MediaItem, status domain.Status) (domain.CollectionItem, bool) {
	s.deck.Remove(item.ID)
	return s.collection.ApplyStatusAction(item, status)
}

// NextPending pops the oldest record waiting to be pushed
func (s *Session) NextPending() (domain.RemoteRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return domain.RemoteRecord{}, false
	}
	rec := s.pending[0]
	s.pending = s.pending[1:]
	return rec, true
}

// DrainPending hands over the records waiting to be pushed
func (s *Session) DrainPending() []domain.RemoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Flush pushes every pending record in order. Failed pushes are dropped.
// The TUI pushes record by record; Flush covers logout and shutdown.
func (s *Session) Flush(ctx context.Context) error {
	var errs []error
	for _, rec := range s.DrainPending() {
		if err := s.sync.Push(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Forget deletes the user's mirrored collection and push clock and empties
// the in-memory collection. Remote records are untouched.
func (s *Session) Forget() error {
	s.collection.Replace(nil)
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	if err := s.mirror.DeleteUser(s.username); err != nil {
		return fmt.Errorf("failed to forget %s: %w", s.username, err)
	}
	s.logger.Info("forgot local journal")
	return nil
}

// Close releases the local mirror
func (s *Session) Close() error {
	if s.mirror == nil {
		return nil
	}
	return s.mirror.Close()
}
