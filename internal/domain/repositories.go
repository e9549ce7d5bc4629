package domain

import (
	"context"
	"time"
)

// TitleRepository provides movie and series metadata (keyword search + detail lookup)
type TitleRepository interface {
	// SearchTitles returns short records for a keyword. Short records lack
	// genres, plot, rating and runtime.
	SearchTitles(ctx context.Context, query string, mediaType MediaType, page int) ([]MediaItem, error)

	// GetTitle returns the full record for an id
	GetTitle(ctx context.Context, id string, mediaType MediaType) (*MediaItem, error)
}

// GameRepository provides game metadata in a single call per page
type GameRepository interface {
	// ListGames returns one page of games ordered by quality score
	ListGames(ctx context.Context, page, pageSize int) ([]MediaItem, error)

	// SearchGames returns games matching a free-text query
	SearchGames(ctx context.Context, query string, pageSize int) ([]MediaItem, error)
}

// CandidateSource produces deck candidates for a kind and page
type CandidateSource interface {
	FetchBatch(ctx context.Context, kind DeckKind, page int) ([]MediaItem, error)
}

// RemoteRecord is one append-only event in the remote record store
type RemoteRecord struct {
	EventID  string         `json:"eventId"`
	Username string         `json:"username"`
	ItemID   string         `json:"itemId"`
	Data     CollectionItem `json:"data"`
	Version  uint64         `json:"version"`
	SyncedAt time.Time      `json:"syncedAt"`
}

// RecordStore is the hosted event log of collection changes
type RecordStore interface {
	// Append writes one record
	Append(ctx context.Context, rec RemoteRecord) error

	// List returns up to max records for a username
	List(ctx context.Context, username string, max int) ([]RemoteRecord, error)
}
