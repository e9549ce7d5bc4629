package cloudsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/domain"
)

// DefaultMaxRecords caps how many remote records are pulled at session start
const DefaultMaxRecords = 50

// MergeResult summarizes a remote merge
type MergeResult struct {
	Fetched int // remote records received
	Added   int // entries that were only on the remote
	Total   int // collection size after the merge
}

// Coordinator keeps the collection, the local mirror and the remote record
// store in step for one user.
type Coordinator struct {
	username   string
	store      *collection.Store
	mirror     domain.Mirror
	remote     domain.RecordStore // nil when cloud sync is disabled
	maxRecords int
	now        func() time.Time
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight int // remote requests running
	queued   int // prepared records not yet pushed
}

// New creates a coordinator. remote may be nil for local-only sessions.
func New(
	username string,
	store *collection.Store,
	mirror domain.Mirror,
	remote domain.RecordStore,
	maxRecords int,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Coordinator{
		username:   username,
		store:      store,
		mirror:     mirror,
		remote:     remote,
		maxRecords: maxRecords,
		now:        time.Now,
		logger:     logger.With("username", username),
	}
}

// RemoteEnabled reports whether a remote record store is configured
func (c *Coordinator) RemoteEnabled() bool {
	return c.remote != nil
}

// LoadLocal makes the mirror's saved collection the active state.
// Returns the number of entries loaded.
func (c *Coordinator) LoadLocal() int {
	items, ok := c.mirror.LoadCollection(c.username)
	if !ok {
		c.logger.Debug("no local mirror for user")
		c.store.Replace(nil)
		return 0
	}
	c.store.Replace(items)
	c.logger.Debug("loaded local mirror", "count", len(items))
	return c.store.Len()
}

// FetchRemote pulls the user's remote records. Returns nothing when the
// remote is disabled.
func (c *Coordinator) FetchRemote(ctx context.Context) ([]domain.RemoteRecord, error) {
	if c.remote == nil {
		return nil, nil
	}
	c.begin()
	defer c.end()

	records, err := c.remote.List(ctx, c.username, c.maxRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote records: %w", err)
	}
	return records, nil
}

// ApplyRemote merges fetched records into the collection. A fetch error is
// logged and the local state is kept.
func (c *Coordinator) ApplyRemote(records []domain.RemoteRecord, fetchErr error) MergeResult {
	if fetchErr != nil {
		c.logger.Warn("remote fetch failed, using local state", "error", fetchErr)
		return MergeResult{Total: c.store.Len()}
	}

	remoteItems, maxVersion := Reduce(c.owned(records))
	local := c.store.Items()
	merged := Merge(local, remoteItems)
	c.store.Replace(merged)

	if maxVersion > 0 {
		if err := c.mirror.ObserveVersion(c.username, maxVersion); err != nil {
			c.logger.Error("failed to advance version clock", "error", err, "version", maxVersion)
		}
	}

	res := MergeResult{Fetched: len(records), Added: len(merged) - len(local), Total: len(merged)}
	if res.Added > 0 {
		c.Persist()
	}
	c.logger.Info("merged remote records", "fetched", res.Fetched, "added", res.Added, "total", res.Total)
	return res
}

// owned drops records that belong to another user
func (c *Coordinator) owned(records []domain.RemoteRecord) []domain.RemoteRecord {
	out := records[:0:0]
	for _, rec := range records {
		if rec.Username != "" && !strings.EqualFold(rec.Username, c.username) {
			c.logger.Warn("skipping remote record for another user", "owner", rec.Username, "itemID", rec.ItemID)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Persist overwrites the mirror with the full collection. Errors are logged.
func (c *Coordinator) Persist() {
	if err := c.mirror.SaveCollection(c.username, c.store.Items()); err != nil {
		c.logger.Error("failed to save local mirror", "error", err)
	}
}

// Prepare builds the remote record for a change, assigning the next
// version from the user's clock
func (c *Coordinator) Prepare(change collection.Change) (domain.RemoteRecord, error) {
	version, err := c.mirror.NextVersion(c.username)
	if err != nil {
		return domain.RemoteRecord{}, err
	}
	c.mu.Lock()
	c.queued++
	c.mu.Unlock()
	return domain.RemoteRecord{
		EventID:  uuid.NewString(),
		Username: c.username,
		ItemID:   change.Item.ID,
		Data:     change.Item,
		Version:  version,
		SyncedAt: c.now().UTC(),
	}, nil
}

// Push appends one record to the remote store. No retry.
func (c *Coordinator) Push(ctx context.Context, rec domain.RemoteRecord) error {
	defer c.dequeue()
	if c.remote == nil {
		return nil
	}
	c.begin()
	defer c.end()

	if err := c.remote.Append(ctx, rec); err != nil {
		c.logger.Error("failed to push record", "error", err, "itemID", rec.ItemID, "version", rec.Version)
		return err
	}
	c.logger.Debug("pushed record", "itemID", rec.ItemID, "version", rec.Version)
	return nil
}

// Syncing reports whether a remote request is in flight or a prepared
// record is still waiting to be pushed
func (c *Coordinator) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0 || c.queued > 0
}

func (c *Coordinator) dequeue() {
	c.mu.Lock()
	c.queued = max(c.queued-1, 0)
	c.mu.Unlock()
}

func (c *Coordinator) begin() {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
}

func (c *Coordinator) end() {
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}
