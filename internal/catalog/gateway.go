// Package catalog serves genre pages cache-first on top of the remote catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/metrics"
)

// CacheTTL is how long a cached page 1 is served without asking the remote.
const CacheTTL = 10 * time.Minute

// Gateway implements domain.PageFetcher.
//
// Page 1 is read from the store when fresh, written through on every
// successful remote fetch, and served stale when the remote fails. Later
// pages always go to the remote and never fall back.
type Gateway struct {
	client  domain.CatalogClient
	store   domain.CacheStore
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // per-genre fetch-then-replace
}

// Option configures a Gateway
type Option func(*Gateway)

// WithClock replaces time.Now, used for cache timestamps and freshness.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Gateway) {
		if r != nil {
			g.metrics = r
		}
	}
}

// NewGateway creates a gateway over client and store
func NewGateway(client domain.CatalogClient, store domain.CacheStore, logger *slog.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		client:  client,
		store:   store,
		logger:  logger,
		metrics: metrics.NoopRecorder{},
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fetch returns one page of genre.
func (g *Gateway) Fetch(ctx context.Context, genre string, page int) (domain.Page, error) {
	if page < 1 {
		return domain.Page{}, fmt.Errorf("invalid page %d", page)
	}
	if page > 1 {
		return g.fetchRemote(ctx, genre, page)
	}

	lock := g.lockFor(genre)
	lock.Lock()
	defer lock.Unlock()

	entry, ok := g.read(genre)
	usable := ok && len(entry.Items) > 0

	if usable && entry.Age(g.now()) < CacheTTL {
		g.metrics.IncCacheOutcome(metrics.CacheHit)
		g.logger.Debug("cache fresh", "genre", genre, "count", len(entry.Items))
		// The cache does not know whether more pages exist; assume they do.
		return domain.Page{Items: entry.Items, HasMore: true, TotalCount: len(entry.Items)}, nil
	}

	if usable {
		g.metrics.IncCacheOutcome(metrics.CacheExpired)
		g.logger.Debug("cache expired, fetching", "genre", genre, "age", entry.Age(g.now()))
	} else {
		g.metrics.IncCacheOutcome(metrics.CacheMiss)
		g.logger.Debug("cache miss, fetching", "genre", genre)
	}

	result, err := g.fetchRemote(ctx, genre, page)
	if err == nil {
		g.replace(genre, result.Items)
		return result, nil
	}

	if usable {
		g.metrics.IncCacheOutcome(metrics.CacheStaleUsed)
		g.logger.Warn("remote fetch failed, serving stale cache",
			"error", err, "genre", genre, "count", len(entry.Items))
		return domain.Page{Items: entry.Items, HasMore: false, TotalCount: len(entry.Items)}, nil
	}
	return domain.Page{}, err
}

func (g *Gateway) lockFor(genre string) *sync.Mutex {
	g.locksMu.Lock()
	defer g.locksMu.Unlock()

	l, ok := g.locks[genre]
	if !ok {
		l = &sync.Mutex{}
		g.locks[genre] = l
	}
	return l
}

func (g *Gateway) fetchRemote(ctx context.Context, genre string, page int) (domain.Page, error) {
	var (
		result domain.Page
		err    error
	)
	start := time.Now()
	if r := panics.Try(func() { result, err = g.client.ListItems(ctx, genre, page) }); r != nil {
		err = fmt.Errorf("catalog client panicked: %w", r.AsError())
	}
	g.metrics.ObserveRemoteFetch("list", time.Since(start), err)

	if err != nil {
		g.logger.Error("failed to fetch page", "error", err, "genre", genre, "page", page)
		return domain.Page{}, err
	}
	g.logger.Debug("fetched page", "genre", genre, "page", page, "count", len(result.Items), "hasMore", result.HasMore)
	return result, nil
}

// read treats a failing store as a miss
func (g *Gateway) read(genre string) (domain.CacheEntry, bool) {
	var (
		entry domain.CacheEntry
		ok    bool
	)
	if r := panics.Try(func() { entry, ok = g.store.Read(genre) }); r != nil {
		g.logger.Error("cache read panicked", "error", r.AsError(), "genre", genre)
		return domain.CacheEntry{}, false
	}
	return entry, ok
}

// replace writes through; failures are logged and never fail the fetch
func (g *Gateway) replace(genre string, items []domain.Item) {
	var err error
	if r := panics.Try(func() { err = g.store.Replace(genre, items, g.now()) }); r != nil {
		err = r.AsError()
	}
	if err != nil {
		g.metrics.IncCacheWriteFailure()
		g.logger.Error("failed to save cache", "error", err, "genre", genre)
	}
}
