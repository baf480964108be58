// Package detail loads one game's detail and its media extras.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/metrics"
	"github.com/mmcdole/gamedeck/internal/observe"
)

const loadFailedMessage = "Failed to load game details"

// State is the published detail state
type State interface {
	isState()
}

type Loading struct{}

// Success holds the detail. Screenshots and Trailers are nil until their
// fetch finishes; a failed fetch leaves an empty list.
type Success struct {
	Detail         domain.ItemDetail
	Screenshots    []domain.Screenshot
	Trailers       []domain.Trailer
	FetchingExtras bool
}

type Error struct {
	Message string
}

func (Loading) isState() {}
func (Success) isState() {}
func (Error) isState()   {}

// Loader fetches detail for a single game id.
type Loader struct {
	client  domain.DetailClient
	id      int
	logger  *slog.Logger
	metrics metrics.Recorder
	state   *observe.Value[State]

	mu         sync.Mutex // guards generation; held while publishing
	generation uint64
}

// Option configures a Loader
type Option func(*Loader)

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) Option {
	return func(l *Loader) {
		if r != nil {
			l.metrics = r
		}
	}
}

// NewLoader creates a loader for the game with id
func NewLoader(client domain.DetailClient, id int, logger *slog.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		client:  client,
		id:      id,
		logger:  logger,
		metrics: metrics.NoopRecorder{},
		state:   observe.New[State](Loading{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ID returns the game id this loader fetches
func (l *Loader) ID() int { return l.id }

func (l *Loader) State() State { return l.state.Load() }

func (l *Loader) Subscribe() (<-chan State, func()) { return l.state.Subscribe() }

func (l *Loader) Close() { l.state.Close() }

// Retry reloads from scratch; extras of the previous load are discarded.
func (l *Loader) Retry(ctx context.Context) { l.Load(ctx) }

// Load fetches the detail, then screenshots and trailers concurrently.
// It returns once both extras have settled.
func (l *Loader) Load(ctx context.Context) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.state.Store(Loading{})
	l.mu.Unlock()

	var (
		d       domain.ItemDetail
		err     error
		message string
	)
	start := time.Now()
	if r := panics.Try(func() { d, err = l.client.GetDetail(ctx, l.id) }); r != nil {
		err = fmt.Errorf("detail client panicked: %w", r.AsError())
		message = loadFailedMessage
	}
	l.metrics.ObserveRemoteFetch("detail", time.Since(start), err)

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		return
	}
	if err != nil {
		l.logger.Error("failed to load detail", "error", err, "id", l.id)
		if message == "" {
			message = domain.UserMessage(err, loadFailedMessage)
		}
		l.state.Store(Error{Message: message})
		l.mu.Unlock()
		return
	}
	l.state.Store(Success{Detail: d, FetchingExtras: true})
	l.mu.Unlock()

	var wg conc.WaitGroup
	wg.Go(func() {
		start := time.Now()
		shots, err := l.client.GetScreenshots(ctx, l.id)
		l.metrics.ObserveRemoteFetch("screenshots", time.Since(start), err)
		if err != nil {
			l.logger.Warn("failed to load screenshots", "error", err, "id", l.id)
			shots = []domain.Screenshot{}
		}
		l.merge(gen, func(s *Success) { s.Screenshots = nonNil(shots) })
	})
	wg.Go(func() {
		start := time.Now()
		trailers, err := l.client.GetTrailers(ctx, l.id)
		l.metrics.ObserveRemoteFetch("trailers", time.Since(start), err)
		if err != nil {
			l.logger.Warn("failed to load trailers", "error", err, "id", l.id)
			trailers = []domain.Trailer{}
		}
		l.merge(gen, func(s *Success) { s.Trailers = nonNil(trailers) })
	})
	if r := wg.WaitAndRecover(); r != nil {
		l.logger.Error("extras fetch panicked", "error", r.AsError(), "id", l.id)
	}

	l.merge(gen, func(s *Success) {
		if s.Screenshots == nil {
			s.Screenshots = []domain.Screenshot{}
		}
		if s.Trailers == nil {
			s.Trailers = []domain.Trailer{}
		}
		s.FetchingExtras = false
	})
}

// merge applies fn to a copy of the current Success and publishes it, unless
// a newer load has started.
func (l *Loader) merge(gen uint64, fn func(*Success)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		return
	}
	s, ok := l.state.Load().(Success)
	if !ok {
		return
	}
	fn(&s)
	l.state.Store(s)
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
