package store

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/gamedeck/internal/domain"
)

// Cache drivers accepted by Open
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns the cache store for driver. An empty driver selects BoltDB.
func Open(driver, baseCacheDir, catalogURL string, logger *slog.Logger) (domain.CacheStore, error) {
	switch driver {
	case "", DriverBolt:
		return NewBoltStore(baseCacheDir, catalogURL)
	case DriverSQLite:
		if baseCacheDir == "" {
			return NewMemoryStore(), nil
		}
		return NewSQLiteStore(baseCacheDir, catalogURL, logger)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", driver)
	}
}
