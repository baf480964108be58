package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gamedeck/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketGenres = []byte("genres")

// cacheRecord is the persisted form of a domain.CacheEntry
type cacheRecord struct {
	Items      []domain.Item `json:"items"`
	CachedAtMs int64         `json:"cached_at_ms"`
}

func newRecord(items []domain.Item, cachedAt time.Time) cacheRecord {
	cp := make([]domain.Item, len(items))
	copy(cp, items)
	return cacheRecord{Items: cp, CachedAtMs: cachedAt.UnixMilli()}
}

func (r cacheRecord) entry(genre string) domain.CacheEntry {
	return domain.CacheEntry{
		Genre:    genre,
		Items:    r.Items,
		CachedAt: time.UnixMilli(r.CachedAtMs),
	}
}

// BoltStore implements domain.CacheStore using BoltDB.
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache and serializes writes

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewBoltStore opens the cache database under baseCacheDir. Each catalog base
// URL gets its own subdirectory. An empty baseCacheDir yields a memory-only store.
func NewBoltStore(baseCacheDir, catalogURL string) (*BoltStore, error) {
	if baseCacheDir == "" {
		return NewMemoryStore(), nil
	}

	dir, err := catalogDir(baseCacheDir, catalogURL)
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "gamedeck.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketGenres)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, cache: make(map[string][]byte)}, nil
}

// NewMemoryStore returns a store that keeps entries for the life of the process.
func NewMemoryStore() *BoltStore {
	return &BoltStore{cache: make(map[string][]byte)}
}

func catalogDir(baseCacheDir, catalogURL string) (string, error) {
	dir := baseCacheDir
	if catalogURL != "" {
		dir = filepath.Join(baseCacheDir, hashCatalogURL(catalogURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func hashCatalogURL(catalogURL string) string {
	normalized := strings.TrimRight(strings.ToLower(catalogURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Read returns the cached entry for genre, if any.
func (s *BoltStore) Read(genre string) (domain.CacheEntry, bool) {
	data, ok := s.load(genre)
	if !ok {
		return domain.CacheEntry{}, false
	}
	var rec cacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CacheEntry{}, false
	}
	return rec.entry(genre), true
}

// Replace overwrites the genre's entry in a single transaction.
func (s *BoltStore) Replace(genre string, items []domain.Item, cachedAt time.Time) error {
	data, err := json.Marshal(newRecord(items, cachedAt))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketGenres).Put([]byte(genre), data)
		})
		if err != nil {
			return fmt.Errorf("failed to write cache for %s: %w", genre, err)
		}
	}
	s.cache[genre] = data
	return nil
}

// Clear removes the genre's entry.
func (s *BoltStore) Clear(genre string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, genre)
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGenres).Delete([]byte(genre))
	})
}

// ClearAll removes every entry.
func (s *BoltStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = make(map[string][]byte)
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketGenres); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketGenres)
		return err
	})
}

// load checks the memory cache first, then BoltDB, promoting hits to memory.
func (s *BoltStore) load(genre string) ([]byte, bool) {
	s.mu.RLock()
	if data, ok := s.cache[genre]; ok {
		s.mu.RUnlock()
		return data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	// Writers hold mu across the BoltDB write, so a promotion can never
	// resurrect a value that was just replaced or cleared.
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.cache[genre]; ok {
		return data, true
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketGenres).Get([]byte(genre)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}
	s.cache[genre] = data
	return data, true
}
