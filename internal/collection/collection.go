package collection

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// ChangeKind describes how a mutation touched the collection
type ChangeKind int

const (
	ChangeInserted ChangeKind = iota
	ChangeUpdated
)

func (k ChangeKind) String() string {
	if k == ChangeInserted {
		return "inserted"
	}
	return "updated"
}

// Change is emitted to the observer after every successful mutation
type Change struct {
	Item domain.CollectionItem
	Kind ChangeKind
}

// Observer receives change notifications. It is called without the store
// lock held, so it may read the store.
type Observer func(Change)

// Filter selects a journal tab
type Filter string

const (
	FilterAll      Filter = "all"
	FilterPriority Filter = "priority"
	FilterWatched  Filter = "watched"
	FilterBacklog  Filter = "backlog"
	FilterUnrated  Filter = "unrated"
)

// Filters lists the journal tabs in display order
var Filters = []Filter{FilterAll, FilterPriority, FilterWatched, FilterBacklog, FilterUnrated}

// ParseFilter validates a filter string
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FilterAll, nil
	}
	if !slices.Contains(Filters, f) {
		return "", fmt.Errorf("unknown filter %q", s)
	}
	return f, nil
}

// Match reports whether an entry belongs under the filter
func (f Filter) Match(item domain.CollectionItem) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterPriority:
		return item.Priority
	case FilterUnrated:
		return item.IsUnrated()
	case FilterWatched:
		return item.Status == domain.StatusWatched
	case FilterBacklog:
		return item.Status == domain.StatusBacklog
	default:
		return false
	}
}

// Store is the in-memory collection, newest entries first.
// At most one entry exists per id; the first write for an id wins.
type Store struct {
	mu       sync.RWMutex
	items    []domain.CollectionItem
	index    map[string]int
	observer Observer
	now      func() time.Time
	logger   *slog.Logger
}

// New creates an empty store
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		index:  make(map[string]int),
		now:    time.Now,
		logger: logger,
	}
}

// SetObserver registers the single change observer (nil clears it)
func (s *Store) SetObserver(fn Observer) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// SetClock overrides the clock used for dateAdded
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// UpsertFromDecision inserts a new entry at the front. Returns false and
// leaves the store untouched when the id already exists.
func (s *Store) UpsertFromDecision(item domain.MediaItem, d domain.Details) (domain.CollectionItem, bool) {
	s.mu.Lock()
	if i, ok := s.index[item.ID]; ok {
		existing := s.items[i]
		s.mu.Unlock()
		s.logger.Debug("collection entry exists, ignoring", "itemID", item.ID)
		return existing, false
	}
	entry := s.insertLocked(item, d)
	obs := s.observer
	s.mu.Unlock()

	s.logger.Debug("collection entry added", "itemID", entry.ID, "status", entry.Status, "priority", entry.Priority)
	notify(obs, Change{Item: entry, Kind: ChangeInserted})
	return entry, true
}

// ApplyRating sets rating and tags on an entry and marks it watched. Every
// other field is kept. An absent entry is inserted as watched.
func (s *Store) ApplyRating(item domain.MediaItem, rating int, tags []string) domain.CollectionItem {
	s.mu.Lock()
	i, ok := s.index[item.ID]
	if !ok {
		entry := s.insertLocked(item, domain.Details{
			Status:     domain.StatusWatched,
			UserRating: rating,
			Tags:       tags,
		})
		obs := s.observer
		s.mu.Unlock()

		s.logger.Debug("rated new entry", "itemID", entry.ID, "rating", entry.UserRating)
		notify(obs, Change{Item: entry, Kind: ChangeInserted})
		return entry
	}

	entry := s.items[i]
	entry.UserRating = domain.ClampRating(rating)
	entry.Tags = domain.NormalizeTags(tags)
	entry.Status = domain.StatusWatched
	s.items[i] = entry
	obs := s.observer
	s.mu.Unlock()

	s.logger.Debug("rated entry", "itemID", entry.ID, "rating", entry.UserRating, "tags", len(entry.Tags))
	notify(obs, Change{Item: entry, Kind: ChangeUpdated})
	return entry
}

// ApplyStatusAction adds the item with an explicit status from the detail
// view. Existing entries are left as they are.
func (s *Store) ApplyStatusAction(item domain.MediaItem, status domain.Status) (domain.CollectionItem, bool) {
	return s.UpsertFromDecision(item, domain.Details{Status: status})
}

func (s *Store) insertLocked(item domain.MediaItem, d domain.Details) domain.CollectionItem {
	entry := domain.NewCollectionItem(item, d, s.now())
	s.items = slices.Insert(s.items, 0, entry)
	s.reindexLocked()
	return entry
}

func (s *Store) reindexLocked() {
	clear(s.index)
	for i, it := range s.items {
		s.index[it.ID] = i
	}
}

// Replace swaps the whole state (session load or merge). Later duplicates
// of an id are dropped. No change is emitted.
func (s *Store) Replace(items []domain.CollectionItem) {
	deduped := make([]domain.CollectionItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		deduped = append(deduped, it)
	}

	s.mu.Lock()
	s.items = deduped
	s.reindexLocked()
	s.mu.Unlock()
}

// Get returns the entry for id
func (s *Store) Get(id string) (domain.CollectionItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.CollectionItem{}, false
	}
	return s.items[i], true
}

// Has reports whether id is in the collection
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Items returns a snapshot in collection order
func (s *Store) Items() []domain.CollectionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Recent returns up to n entries, newest dateAdded first
func (s *Store) Recent(n int) []domain.CollectionItem {
	items := s.Items()
	SortByDateAdded(items)
	if n >= 0 && len(items) > n {
		items = items[:n]
	}
	return items
}

// Filter returns entries matching the tab and a case-insensitive fuzzy
// title query. An empty query matches everything.
func (s *Store) Filter(f Filter, query string) []domain.CollectionItem {
	query = strings.TrimSpace(query)
	var out []domain.CollectionItem
	for _, it := range s.Items() {
		if !f.Match(it) {
			continue
		}
		if query != "" && !fuzzy.MatchNormalizedFold(query, it.Title) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// PickBacklog returns a random backlog entry
func (s *Store) PickBacklog(rng *rand.Rand) (domain.CollectionItem, bool) {
	backlog := s.Filter(FilterBacklog, "")
	if len(backlog) == 0 {
		return domain.CollectionItem{}, false
	}
	if rng == nil {
		return backlog[rand.IntN(len(backlog))], true
	}
	return backlog[rng.IntN(len(backlog))], true
}

// SortByDateAdded orders entries newest first. Equal timestamps keep their order.
func SortByDateAdded(items []domain.CollectionItem) {
	slices.SortStableFunc(items, func(a, b domain.CollectionItem) int {
		return b.DateAdded.Compare(a.DateAdded)
	})
}

func notify(obs Observer, c Change) {
	if obs != nil {
		obs(c)
	}
}
