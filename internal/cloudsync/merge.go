package cloudsync

import (
	"github.com/mmcdole/swipetrack/internal/collection"
	"github.com/mmcdole/swipetrack/internal/domain"
)

// Reduce collapses an event log into one entry per item: the record with
// the highest version wins, ties go to the latest syncedAt. Also returns
// the highest version seen.
func Reduce(records []domain.RemoteRecord) ([]domain.CollectionItem, uint64) {
	best := make(map[string]domain.RemoteRecord, len(records))
	order := make([]string, 0, len(records))
	var maxVersion uint64

	for _, rec := range records {
		id := rec.ItemID
		if id == "" {
			id = rec.Data.ID
		}
		if id == "" {
			continue
		}
		if rec.Data.ID == "" {
			rec.Data.ID = id
		}
		maxVersion = max(maxVersion, rec.Version)

		cur, ok := best[id]
		if !ok {
			order = append(order, id)
			best[id] = rec
			continue
		}
		if newer(rec, cur) {
			best[id] = rec
		}
	}

	items := make([]domain.CollectionItem, 0, len(order))
	for _, id := range order {
		items = append(items, best[id].Data)
	}
	return items, maxVersion
}

func newer(a, b domain.RemoteRecord) bool {
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	return a.SyncedAt.After(b.SyncedAt)
}

// Merge appends remote entries whose id is not present locally (local
// wins on collision) and sorts the result newest first.
func Merge(local, remote []domain.CollectionItem) []domain.CollectionItem {
	merged := make([]domain.CollectionItem, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local)+len(remote))
	for _, it := range local {
		seen[it.ID] = true
		merged = append(merged, it)
	}
	for _, it := range remote {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		merged = append(merged, it)
	}
	collection.SortByDateAdded(merged)
	return merged
}
