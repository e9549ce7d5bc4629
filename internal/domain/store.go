package domain

// Mirror is the local durable copy of a user's collection (BoltDB + memory).
// Keyed by username; always holds the full collection.
type Mirror interface {
	// LoadCollection returns the saved collection, ok=false when none exists
	LoadCollection(username string) ([]CollectionItem, bool)

	// SaveCollection overwrites the saved collection
	SaveCollection(username string, items []CollectionItem) error

	// NextVersion advances and returns the user's push clock
	NextVersion(username string) (uint64, error)

	// ObserveVersion raises the push clock to at least v
	ObserveVersion(username string, v uint64) error

	// DeleteUser removes everything stored for a username
	DeleteUser(username string) error

	Close() error
}
