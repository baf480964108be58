// Package browse reconciles genre switching, pagination and search into one
// published state.
package browse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/metrics"
	"github.com/mmcdole/gamedeck/internal/observe"
	"github.com/mmcdole/gamedeck/internal/search"
)

const (
	loadFailedMessage     = "Failed to load games"
	loadMoreFailedMessage = "Failed to load more games"
)

// Engine owns the browse state for one catalog session.
//
// Operations block until their fetch completes and are meant to be called
// from background goroutines. Every fetch is tagged with the genre and load
// generation it was issued for; a result whose tag is no longer current is
// dropped.
type Engine struct {
	fetcher domain.PageFetcher
	logger  *slog.Logger
	metrics metrics.Recorder
	state   *observe.Value[State]

	// pageMu is held for the duration of a next-page fetch. Callers that
	// cannot take it are dropped, never queued.
	pageMu sync.Mutex

	mu           sync.Mutex // guards the fields below; held while publishing
	genre        string
	generation   uint64
	cursor       int
	allItems     []domain.Item
	query        string
	hasMore      bool
	fetchingNext bool
	pageErr      string
	loaded       bool // a load has succeeded this session

	cancelPage context.CancelFunc // aborts the in-flight next-page fetch
}

// Option configures an Engine
type Option func(*Engine)

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.metrics = r
		}
	}
}

// NewEngine creates an engine that will browse initialGenre once started.
func NewEngine(fetcher domain.PageFetcher, initialGenre string, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if initialGenre == "" {
		initialGenre = domain.DefaultGenre
	}
	e := &Engine{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics.NoopRecorder{},
		state:   observe.New[State](InitialLoading{}),
		genre:   initialGenre,
		cursor:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current state
func (e *Engine) State() State {
	return e.state.Load()
}

// Subscribe returns a channel of state updates (latest wins) and a cancel func.
func (e *Engine) Subscribe() (<-chan State, func()) {
	return e.state.Subscribe()
}

// Genre returns the genre currently being browsed
func (e *Engine) Genre() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.genre
}

// Close ends every subscription
func (e *Engine) Close() {
	e.state.Close()
}

// Start loads the initial genre.
func (e *Engine) Start(ctx context.Context) {
	e.loadGenre(ctx, e.Genre())
}

// SelectGenre switches to genre. Selecting the current genre does nothing.
func (e *Engine) SelectGenre(ctx context.Context, genre string) {
	if genre == e.Genre() {
		return
	}
	e.loadGenre(ctx, genre)
}

// Retry reloads the current genre from page 1.
func (e *Engine) Retry(ctx context.Context) {
	e.loadGenre(ctx, e.Genre())
}

func (e *Engine) loadGenre(ctx context.Context, genre string) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.genre = genre
	e.cursor = 1
	e.allItems = nil
	e.query = ""
	e.hasMore = false
	e.fetchingNext = false
	e.pageErr = ""
	if e.cancelPage != nil {
		e.cancelPage()
		e.cancelPage = nil
	}
	if e.loaded {
		e.publish(GenreLoading{Genre: genre})
	} else {
		e.publish(InitialLoading{})
	}
	e.mu.Unlock()

	e.logger.Debug("loading genre", "genre", genre, "generation", gen)
	page, err := e.fetcher.Fetch(ctx, genre, 1)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.current(genre, gen) {
		e.logger.Debug("discarding superseded load", "genre", genre, "generation", gen)
		return
	}
	if err != nil {
		e.logger.Error("failed to load genre", "error", err, "genre", genre)
		e.publish(Error{Message: domain.UserMessage(err, loadFailedMessage)})
		return
	}

	e.loaded = true
	if len(page.Items) == 0 {
		e.publish(Empty{Reason: NoGenreResults, Genre: genre})
		return
	}
	e.allItems = page.Items
	e.hasMore = page.HasMore
	e.publishItems()
}

// LoadNextPage appends the next page. It does nothing unless the state is
// Success with more pages, and returns at once if a page load is already
// running.
func (e *Engine) LoadNextPage(ctx context.Context) {
	if s, ok := e.State().(Success); !ok || !s.HasMore {
		return
	}

	if !e.pageMu.TryLock() {
		e.metrics.IncPaginationDropped()
		e.logger.Debug("next page already loading, dropping request")
		return
	}
	defer e.pageMu.Unlock()

	e.mu.Lock()
	s, ok := e.state.Load().(Success)
	if !ok || !s.HasMore {
		e.mu.Unlock()
		return
	}
	gen := e.generation
	genre := e.genre
	e.cursor++
	page := e.cursor
	e.fetchingNext = true
	s.IsFetchingNextPage = true
	e.publish(s)
	pageCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.cancelPage = cancel
	e.mu.Unlock()

	result, err := e.fetcher.Fetch(pageCtx, genre, page)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.current(genre, gen) {
		e.logger.Debug("discarding superseded page", "genre", genre, "page", page, "generation", gen)
		return
	}
	e.fetchingNext = false
	e.cancelPage = nil

	if err != nil {
		e.cursor--
		e.pageErr = domain.UserMessage(err, loadMoreFailedMessage)
		e.logger.Error("failed to load next page", "error", err, "genre", genre, "page", page)
		if cur, ok := e.state.Load().(Success); ok {
			cur.IsFetchingNextPage = false
			cur.PaginationError = e.pageErr
			e.publish(cur)
		}
		return
	}

	merged := make([]domain.Item, 0, len(e.allItems)+len(result.Items))
	merged = append(merged, e.allItems...)
	merged = append(merged, result.Items...)
	e.allItems = merged
	e.hasMore = result.HasMore
	e.pageErr = ""
	e.logger.Debug("appended page", "genre", genre, "page", page, "count", len(result.Items), "total", len(merged))
	e.publishItems()
}

// SetSearchQuery filters the loaded items by name. It only applies while
// items or an empty result are on screen.
func (e *Engine) SetSearchQuery(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Load().(type) {
	case Success, Empty:
	default:
		return
	}

	e.query = query
	if len(e.allItems) == 0 {
		reason := NoSearchResults
		if search.IsBlank(query) {
			reason = NoGenreResults
		}
		e.publish(Empty{Reason: reason, Genre: e.genre, SearchQuery: query})
		return
	}
	e.publishItems()
}

// ClearPaginationError dismisses a failed next-page load.
func (e *Engine) ClearPaginationError() {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.state.Load().(Success)
	if !ok {
		return
	}
	e.pageErr = ""
	s.PaginationError = ""
	e.publish(s)
}

func (e *Engine) current(genre string, gen uint64) bool {
	return e.genre == genre && e.generation == gen
}

// publishItems publishes Success, or Empty when a non-blank query matches
// nothing. Callers hold mu and have at least one item loaded.
func (e *Engine) publishItems() {
	filtered := search.Filter(e.allItems, e.query)
	if len(filtered) == 0 && !search.IsBlank(e.query) {
		e.publish(Empty{Reason: NoSearchResults, Genre: e.genre, SearchQuery: e.query})
		return
	}
	e.publish(Success{
		AllItems:           e.allItems,
		FilteredItems:      filtered,
		Genre:              e.genre,
		SearchQuery:        e.query,
		HasMore:            e.hasMore,
		IsFetchingNextPage: e.fetchingNext,
		PaginationError:    e.pageErr,
	})
}

// publish must be called with mu held so publications are totally ordered.
func (e *Engine) publish(s State) {
	e.state.Store(s)
}
