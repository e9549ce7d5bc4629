package deck

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/swipetrack/internal/domain"
)

// DefaultLowWaterMark is the queue length below which a decision asks for
// another batch
const DefaultLowWaterMark = 5

// Ticket identifies one load request. Results carrying a ticket from an
// older generation are discarded.
type Ticket struct {
	Generation uint64
	Kind       domain.DeckKind
	Page       int
	Reset      bool
}

// Outcome reports what Complete did with a batch
type Outcome struct {
	Applied bool // false when the ticket was stale
	Added   int  // candidates enqueued after filtering
	Empty   bool // queue is empty after the load
	Err     error
}

// DecideResult reports the effect of a swipe on the deck
type DecideResult struct {
	Removed   bool           // item was in the queue
	Keep      bool           // direction adds to the collection
	Details   domain.Details // collection fields implied by the direction
	NeedsMore bool           // caller should schedule a non-reset load
}

// Manager owns the candidate queue and its page cursor.
type Manager struct {
	mu         sync.Mutex
	source     domain.CandidateSource
	queue      []domain.MediaItem
	kind       domain.DeckKind
	page       int
	loading    bool
	empty      bool
	generation uint64
	lowWater   int
	logger     *slog.Logger
}

// New creates a deck for kind. lowWater <= 0 uses DefaultLowWaterMark.
func New(source domain.CandidateSource, kind domain.DeckKind, lowWater int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if lowWater <= 0 {
		lowWater = DefaultLowWaterMark
	}
	if kind == "" {
		kind = domain.DeckAll
	}
	return &Manager{
		source:   source,
		kind:     kind,
		page:     1,
		lowWater: lowWater,
		logger:   logger,
	}
}

// Begin starts a load for the current kind. Returns false while another
// load is in flight.
func (m *Manager) Begin(reset bool) (Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loading {
		m.logger.Debug("deck load already in flight", "kind", m.kind)
		return Ticket{}, false
	}
	m.loading = true
	m.generation++

	page := m.page
	if reset {
		page = 1
	}
	return Ticket{Generation: m.generation, Kind: m.kind, Page: page, Reset: reset}, true
}

// Fetch asks the candidate source for the ticket's page
func (m *Manager) Fetch(ctx context.Context, t Ticket) ([]domain.MediaItem, error) {
	return m.source.FetchBatch(ctx, t.Kind, t.Page)
}

// Complete applies a fetched batch. known reports ids already in the
// collection; those and ids already queued are dropped.
func (m *Manager) Complete(t Ticket, items []domain.MediaItem, err error, known func(id string) bool) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.Generation != m.generation {
		m.logger.Debug("discarding stale deck load", "kind", t.Kind, "page", t.Page,
			"generation", t.Generation, "current", m.generation)
		return Outcome{Applied: false}
	}
	m.loading = false

	if err != nil {
		m.logger.Error("failed to load deck", "error", err, "kind", t.Kind, "page", t.Page)
		m.empty = len(m.queue) == 0
		return Outcome{Applied: true, Err: err, Empty: m.empty}
	}

	seen := make(map[string]bool, len(m.queue)+len(items))
	if !t.Reset {
		for _, it := range m.queue {
			seen[it.ID] = true
		}
	}

	fresh := make([]domain.MediaItem, 0, len(items))
	for _, it := range items {
		if seen[it.ID] || (known != nil && known(it.ID)) {
			continue
		}
		seen[it.ID] = true
		fresh = append(fresh, it)
	}

	if t.Reset {
		m.queue = fresh
		m.page = 2
	} else {
		m.queue = append(m.queue, fresh...)
		m.page++
	}
	m.empty = len(m.queue) == 0

	m.logger.Debug("deck loaded", "kind", t.Kind, "page", t.Page, "fetched", len(items),
		"added", len(fresh), "queued", len(m.queue))
	return Outcome{Applied: true, Added: len(fresh), Empty: m.empty}
}

// LoadBatch runs Begin, Fetch and Complete in one call. Returns false when
// a load was already in flight.
func (m *Manager) LoadBatch(ctx context.Context, reset bool, known func(id string) bool) (Outcome, bool) {
	t, ok := m.Begin(reset)
	if !ok {
		return Outcome{}, false
	}
	items, err := m.Fetch(ctx, t)
	return m.Complete(t, items, err, known), true
}

// Decide removes item from the queue and maps the direction to
// collection details. Removing an item that is not queued is a no-op.
func (m *Manager) Decide(item domain.MediaItem, dir domain.Direction) DecideResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := DecideResult{}
	if i := slices.IndexFunc(m.queue, func(q domain.MediaItem) bool { return q.ID == item.ID }); i >= 0 {
		m.queue = slices.Delete(m.queue, i, i+1)
		res.Removed = true
	}
	res.Details, res.Keep = dir.Details()
	if len(m.queue) == 0 {
		m.empty = true
	}
	res.NeedsMore = res.Removed && !m.loading && len(m.queue) < m.lowWater
	return res
}

// Remove drops an item from the queue without a decision (detail view actions)
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.queue, func(q domain.MediaItem) bool { return q.ID == id })
	if i < 0 {
		return false
	}
	m.queue = slices.Delete(m.queue, i, i+1)
	if len(m.queue) == 0 {
		m.empty = true
	}
	return true
}

// SetKind switches the deck. The queue is cleared, the cursor resets to 1
// and any in-flight load is invalidated.
func (m *Manager) SetKind(kind domain.DeckKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kind = kind
	m.queue = nil
	m.page = 1
	m.loading = false
	m.empty = false
	m.generation++
}

// Peek returns the top card
func (m *Manager) Peek() (domain.MediaItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return domain.MediaItem{}, false
	}
	return m.queue[0], true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Items returns a snapshot of the queue
func (m *Manager) Items() []domain.MediaItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.queue)
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Empty reports whether there is nothing to swipe and no load pending
func (m *Manager) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.empty && !m.loading && len(m.queue) == 0
}

func (m *Manager) Page() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page
}

func (m *Manager) Kind() domain.DeckKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}
