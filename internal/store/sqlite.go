package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mmcdole/gamedeck/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements domain.CacheStore on SQLite, one row per cached item.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens or creates the cache database under baseCacheDir.
func NewSQLiteStore(baseCacheDir, catalogURL string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := catalogDir(baseCacheDir, catalogURL)
	if err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "gamedeck.sqlite")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_genres (
		genre TEXT PRIMARY KEY,
		cached_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cache_items (
		genre TEXT NOT NULL REFERENCES cache_genres(genre),
		position INTEGER NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		image_url TEXT DEFAULT '',
		rating REAL NOT NULL DEFAULT 0,
		critic_score INTEGER,
		released TEXT DEFAULT '',
		PRIMARY KEY (genre, position)
	);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Read returns the cached entry for genre, if any.
func (s *SQLiteStore) Read(genre string) (domain.CacheEntry, bool) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error("failed to begin cache read", "error", err, "genre", genre)
		return domain.CacheEntry{}, false
	}
	defer tx.Rollback()

	var cachedAtMs int64
	err = tx.QueryRow("SELECT cached_at FROM cache_genres WHERE genre = ?", genre).Scan(&cachedAtMs)
	if err == sql.ErrNoRows {
		return domain.CacheEntry{}, false
	}
	if err != nil {
		s.logger.Error("failed to read cache timestamp", "error", err, "genre", genre)
		return domain.CacheEntry{}, false
	}

	rows, err := tx.Query(`
		SELECT id, name, image_url, rating, critic_score, released
		FROM cache_items
		WHERE genre = ?
		ORDER BY position ASC
	`, genre)
	if err != nil {
		s.logger.Error("failed to read cached items", "error", err, "genre", genre)
		return domain.CacheEntry{}, false
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var (
			it          domain.Item
			criticScore sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.ImageURL, &it.Rating, &criticScore, &it.Released); err != nil {
			s.logger.Error("failed to scan cached item", "error", err, "genre", genre)
			return domain.CacheEntry{}, false
		}
		if criticScore.Valid {
			score := int(criticScore.Int64)
			it.CriticScore = &score
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return domain.CacheEntry{}, false
	}

	return domain.CacheEntry{
		Genre:    genre,
		Items:    items,
		CachedAt: time.UnixMilli(cachedAtMs),
	}, true
}

// Replace deletes the genre's rows and inserts items in a single transaction.
func (s *SQLiteStore) Replace(genre string, items []domain.Item, cachedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cache_items WHERE genre = ?", genre); err != nil {
		return fmt.Errorf("clearing cached items: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO cache_genres (genre, cached_at) VALUES (?, ?)
		 ON CONFLICT(genre) DO UPDATE SET cached_at=excluded.cached_at`,
		genre, cachedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("writing cache timestamp: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO cache_items (genre, position, id, name, image_url, rating, critic_score, released)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range items {
		var criticScore sql.NullInt64
		if it.CriticScore != nil {
			criticScore = sql.NullInt64{Int64: int64(*it.CriticScore), Valid: true}
		}
		if _, err := stmt.Exec(genre, i, it.ID, it.Name, it.ImageURL, it.Rating, criticScore, it.Released); err != nil {
			return fmt.Errorf("inserting cached item %d: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

// Clear removes the genre's entry.
func (s *SQLiteStore) Clear(genre string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cache_items WHERE genre = ?", genre); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM cache_genres WHERE genre = ?", genre); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearAll removes every entry.
func (s *SQLiteStore) ClearAll() error {
	_, err := s.db.Exec("DELETE FROM cache_items; DELETE FROM cache_genres;")
	return err
}
