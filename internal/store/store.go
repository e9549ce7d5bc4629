package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/swipetrack/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCollections = []byte("collections")
	bucketVersions    = []byte("versions")
)

var allBuckets = [][]byte{bucketCollections, bucketVersions}

// MirrorStore implements domain.Mirror using BoltDB.
type MirrorStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ domain.Mirror = (*MirrorStore)(nil)

// NewMirrorStore opens (or creates) the mirror database under baseDir.
// An empty baseDir yields a memory-only store.
func NewMirrorStore(baseDir string) (*MirrorStore, error) {
	if baseDir == "" {
		// Memory-only mode (no persistence)
		return &MirrorStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "swipetrack.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MirrorStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *MirrorStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// userKey normalizes a username into a bucket key
func userKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// === Generic helpers ===

func (s *MirrorStore) getRaw(bucket []byte, key string) []byte {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data
}

func (s *MirrorStore) putRaw(bucket []byte, key string, data []byte) error {
	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *MirrorStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// === Collections ===

// LoadCollection returns the saved collection for username. A corrupt
// payload is reported as absent.
func (s *MirrorStore) LoadCollection(username string) ([]domain.CollectionItem, bool) {
	data := s.getRaw(bucketCollections, userKey(username))
	if data == nil {
		return nil, false
	}
	var items []domain.CollectionItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

// SaveCollection overwrites the saved collection for username
func (s *MirrorStore) SaveCollection(username string, items []domain.CollectionItem) error {
	if items == nil {
		items = []domain.CollectionItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	return s.putRaw(bucketCollections, userKey(username), data)
}

// === Versions (per-user push clock) ===

// NextVersion advances the user's logical clock and returns the new value.
// The read-modify-write runs inside one bolt transaction.
func (s *MirrorStore) NextVersion(username string) (uint64, error) {
	key := userKey(username)
	cacheKey := string(bucketVersions) + ":" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		next := decodeVersion(s.cache[cacheKey]) + 1
		s.cache[cacheKey] = encodeVersion(next)
		return next, nil
	}

	var next uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVersions)
		next = decodeVersion(b.Get([]byte(key))) + 1
		return b.Put([]byte(key), encodeVersion(next))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance version: %w", err)
	}
	s.cache[cacheKey] = encodeVersion(next)
	return next, nil
}

// ObserveVersion raises the user's clock to at least v. Used after pulling
// remote records so later pushes sort after them.
func (s *MirrorStore) ObserveVersion(username string, v uint64) error {
	key := userKey(username)
	cacheKey := string(bucketVersions) + ":" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		if decodeVersion(s.cache[cacheKey]) < v {
			s.cache[cacheKey] = encodeVersion(v)
		}
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVersions)
		if decodeVersion(b.Get([]byte(key))) >= v {
			return nil
		}
		s.cache[cacheKey] = encodeVersion(v)
		return b.Put([]byte(key), encodeVersion(v))
	})
}

func encodeVersion(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeVersion(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// === Invalidation ===

// DeleteUser removes the collection and clock for username
func (s *MirrorStore) DeleteUser(username string) error {
	key := userKey(username)
	for _, bucket := range allBuckets {
		if err := s.delete(bucket, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", bucket, err)
		}
	}
	return nil
}

// InvalidateAll wipes every user from the mirror
func (s *MirrorStore) InvalidateAll() error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
