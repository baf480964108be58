package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/gamedeck/internal/domain"
)

type result struct {
	page domain.Page
	err  error
}

type request struct {
	genre string
	page  int
	reply chan result
}

// gatedFetcher hands every Fetch to the test, which answers it explicitly.
type gatedFetcher struct {
	requests chan request
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{requests: make(chan request, 16)}
}

func (f *gatedFetcher) Fetch(ctx context.Context, genre string, page int) (domain.Page, error) {
	req := request{genre: genre, page: page, reply: make(chan result, 1)}
	f.requests <- req
	select {
	case r := <-req.reply:
		return r.page, r.err
	case <-ctx.Done():
		return domain.Page{}, ctx.Err()
	}
}

func (f *gatedFetcher) next(t *testing.T) request {
	t.Helper()
	select {
	case req := <-f.requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("expected a fetch")
		return request{}
	}
}

func (f *gatedFetcher) none(t *testing.T) {
	t.Helper()
	select {
	case req := <-f.requests:
		t.Fatalf("unexpected fetch for %s page %d", req.genre, req.page)
	case <-time.After(50 * time.Millisecond):
	}
}

// scriptedFetcher answers synchronously from a function
type scriptedFetcher struct {
	mu    sync.Mutex
	pages []int
	fn    func(genre string, page int) (domain.Page, error)
}

func (f *scriptedFetcher) Fetch(_ context.Context, genre string, page int) (domain.Page, error) {
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	return f.fn(genre, page)
}

func named(names ...string) []domain.Item {
	out := make([]domain.Item, len(names))
	for i, n := range names {
		out[i] = domain.Item{ID: i + 1, Name: n}
	}
	return out
}

func pageOf(start, n int) []domain.Item {
	out := make([]domain.Item, n)
	for i := range out {
		out[i] = domain.Item{ID: start + i, Name: fmt.Sprintf("Game %d", start+i)}
	}
	return out
}

func run(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return done
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not finish")
	}
}

func requireSuccess(t *testing.T, s State) Success {
	t.Helper()
	success, ok := s.(Success)
	require.True(t, ok, "expected Success, got %T %+v", s, s)
	return success
}

func startedEngine(t *testing.T, items []domain.Item, hasMore bool) (*Engine, *gatedFetcher) {
	t.Helper()
	f := newGatedFetcher()
	e := NewEngine(f, "action", nil)
	done := run(func() { e.Start(context.Background()) })
	req := f.next(t)
	require.Equal(t, "action", req.genre)
	require.Equal(t, 1, req.page)
	req.reply <- result{page: domain.Page{Items: items, HasMore: hasMore}}
	wait(t, done)
	return e, f
}

func TestEngine_InitialState(t *testing.T) {
	e := NewEngine(&scriptedFetcher{}, "", nil)
	require.Equal(t, InitialLoading{}, e.State())
	require.Equal(t, domain.DefaultGenre, e.Genre())
}

func TestEngine_StartPublishesInitialLoadingThenSuccess(t *testing.T) {
	f := newGatedFetcher()
	e := NewEngine(f, "action", nil)

	done := run(func() { e.Start(context.Background()) })
	req := f.next(t)
	require.Equal(t, InitialLoading{}, e.State())

	req.reply <- result{page: domain.Page{Items: named("Alpha", "Beta"), HasMore: true}}
	wait(t, done)

	s := requireSuccess(t, e.State())
	require.Equal(t, named("Alpha", "Beta"), s.AllItems)
	require.Equal(t, s.AllItems, s.FilteredItems)
	require.Equal(t, "action", s.Genre)
	require.True(t, s.HasMore)
	require.False(t, s.IsFetchingNextPage)
	require.Empty(t, s.PaginationError)
}

func TestEngine_SearchScenario(t *testing.T) {
	e, _ := startedEngine(t, named("Alpha"), true)
	require.Len(t, requireSuccess(t, e.State()).AllItems, 1)

	e.SetSearchQuery("zzz")
	require.Equal(t, Empty{Reason: NoSearchResults, Genre: "action", SearchQuery: "zzz"}, e.State())

	e.SetSearchQuery("")
	s := requireSuccess(t, e.State())
	require.Equal(t, named("Alpha"), s.FilteredItems)
	require.Equal(t, named("Alpha"), s.AllItems)
	require.True(t, s.HasMore)
}

func TestEngine_EmptyFirstPage(t *testing.T) {
	e, _ := startedEngine(t, nil, false)
	require.Equal(t, Empty{Reason: NoGenreResults, Genre: "action"}, e.State())

	e.SetSearchQuery("mario")
	require.Equal(t, Empty{Reason: NoSearchResults, Genre: "action", SearchQuery: "mario"}, e.State())

	e.SetSearchQuery("")
	require.Equal(t, Empty{Reason: NoGenreResults, Genre: "action"}, e.State())
}

func TestEngine_FirstPageFailure(t *testing.T) {
	f := &scriptedFetcher{fn: func(string, int) (domain.Page, error) {
		return domain.Page{}, fmt.Errorf("listing: %w", domain.ErrServerOffline)
	}}
	e := NewEngine(f, "action", nil)
	e.Start(context.Background())

	errState, ok := e.State().(Error)
	require.True(t, ok)
	require.Equal(t, domain.UserMessage(domain.ErrServerOffline, ""), errState.Message)

	// Search and pagination are ignored in Error
	e.SetSearchQuery("x")
	e.LoadNextPage(context.Background())
	require.Equal(t, errState, e.State())
	require.Equal(t, []int{1}, f.pages)
}

func TestEngine_RetryAfterFailure(t *testing.T) {
	var fail = true
	f := &scriptedFetcher{fn: func(string, int) (domain.Page, error) {
		if fail {
			return domain.Page{}, errors.New("boom")
		}
		return domain.Page{Items: named("Alpha"), HasMore: false}, nil
	}}
	e := NewEngine(f, "action", nil)
	e.Start(context.Background())
	require.Equal(t, Error{Message: "boom"}, e.State())

	fail = false
	e.Retry(context.Background())
	s := requireSuccess(t, e.State())
	require.Equal(t, named("Alpha"), s.AllItems)
}

func TestEngine_NextPageAppends(t *testing.T) {
	e, f := startedEngine(t, pageOf(1, 20), true)

	done := run(func() { e.LoadNextPage(context.Background()) })
	req := f.next(t)
	require.Equal(t, 2, req.page)
	require.True(t, requireSuccess(t, e.State()).IsFetchingNextPage)

	req.reply <- result{page: domain.Page{Items: pageOf(21, 20), HasMore: true}}
	wait(t, done)

	s := requireSuccess(t, e.State())
	require.Len(t, s.AllItems, 40)
	require.Equal(t, 1, s.AllItems[0].ID)
	require.Equal(t, 40, s.AllItems[39].ID)
	require.False(t, s.IsFetchingNextPage)
	require.True(t, s.HasMore)
}

func TestEngine_NextPageIsSingleFlight(t *testing.T) {
	e, f := startedEngine(t, pageOf(1, 20), true)

	first := run(func() { e.LoadNextPage(context.Background()) })
	req := f.next(t)
	require.Equal(t, 2, req.page)

	// Second call while the first is unresolved returns without fetching
	e.LoadNextPage(context.Background())
	f.none(t)

	req.reply <- result{page: domain.Page{Items: pageOf(21, 20), HasMore: true}}
	wait(t, first)
	require.Len(t, requireSuccess(t, e.State()).AllItems, 40)
}

func TestEngine_MonotonicAppendAndCursorRollback(t *testing.T) {
	var mu sync.Mutex
	failPage := 0
	f := &scriptedFetcher{fn: func(_ string, page int) (domain.Page, error) {
		mu.Lock()
		defer mu.Unlock()
		if page == failPage {
			return domain.Page{}, errors.New("timeout")
		}
		return domain.Page{Items: pageOf((page-1)*10+1, 10), HasMore: true}, nil
	}}
	e := NewEngine(f, "action", nil)
	e.Start(context.Background())

	for i := 0; i < 3; i++ {
		e.LoadNextPage(context.Background())
	}
	require.Len(t, requireSuccess(t, e.State()).AllItems, 40)

	mu.Lock()
	failPage = 5
	mu.Unlock()
	e.LoadNextPage(context.Background())
	s := requireSuccess(t, e.State())
	require.Len(t, s.AllItems, 40)
	require.Equal(t, "timeout", s.PaginationError)

	mu.Lock()
	failPage = 0
	mu.Unlock()
	e.LoadNextPage(context.Background())
	s = requireSuccess(t, e.State())
	require.Len(t, s.AllItems, 50)
	require.Empty(t, s.PaginationError)

	require.Equal(t, []int{1, 2, 3, 4, 5, 5}, f.pages)
}

func TestEngine_PageTwoFailureKeepsPageOne(t *testing.T) {
	e, f := startedEngine(t, named("Alpha", "Beta"), true)

	done := run(func() { e.LoadNextPage(context.Background()) })
	req := f.next(t)
	req.reply <- result{err: errors.New("network down")}
	wait(t, done)

	s := requireSuccess(t, e.State())
	require.Equal(t, named("Alpha", "Beta"), s.AllItems)
	require.Equal(t, "network down", s.PaginationError)
	require.True(t, s.HasMore)
	require.False(t, s.IsFetchingNextPage)

	e.ClearPaginationError()
	s = requireSuccess(t, e.State())
	require.Empty(t, s.PaginationError)
	require.Equal(t, named("Alpha", "Beta"), s.AllItems)
}

func TestEngine_NextPageRequiresHasMore(t *testing.T) {
	e, f := startedEngine(t, named("Alpha"), false)
	e.LoadNextPage(context.Background())
	f.none(t)
}

func TestEngine_LastPageStopsPagination(t *testing.T) {
	e, f := startedEngine(t, pageOf(1, 20), true)

	done := run(func() { e.LoadNextPage(context.Background()) })
	f.next(t).reply <- result{page: domain.Page{Items: pageOf(21, 5), HasMore: false}}
	wait(t, done)

	require.False(t, requireSuccess(t, e.State()).HasMore)
	e.LoadNextPage(context.Background())
	f.none(t)
}

func TestEngine_SearchAppliesToAppendedPages(t *testing.T) {
	e, f := startedEngine(t, named("Alpha", "Beta"), true)
	e.SetSearchQuery("gam")
	require.Equal(t, NoSearchResults, e.State().(Empty).Reason)

	e.SetSearchQuery("a")
	done := run(func() { e.LoadNextPage(context.Background()) })
	req := f.next(t)

	// Query narrows to nothing while the page is in flight
	e.SetSearchQuery("gam")
	req.reply <- result{page: domain.Page{Items: []domain.Item{{ID: 3, Name: "Gamma"}}, HasMore: false}}
	wait(t, done)

	s := requireSuccess(t, e.State())
	require.Equal(t, "gam", s.SearchQuery)
	require.Equal(t, []domain.Item{{ID: 3, Name: "Gamma"}}, s.FilteredItems)
	require.Len(t, s.AllItems, 3)
}

func TestEngine_FilterPurity(t *testing.T) {
	all := named("Alpha", "alphabet", "Beta", "ALPINE", "Delta")
	e, _ := startedEngine(t, all, false)

	for _, q := range []string{"alp", "ALP", "ta", "e", "Alpha", " ", ""} {
		e.SetSearchQuery(q)
		var want []domain.Item
		for _, it := range all {
			if strings.TrimSpace(q) == "" || strings.Contains(strings.ToLower(it.Name), strings.ToLower(q)) {
				want = append(want, it)
			}
		}
		s := requireSuccess(t, e.State())
		require.Equal(t, want, s.FilteredItems, "query %q", q)
		require.Equal(t, all, s.AllItems)
	}

	e.SetSearchQuery("")
	s := requireSuccess(t, e.State())
	require.Equal(t, s.AllItems, s.FilteredItems)
}

func TestEngine_SelectGenreResetsState(t *testing.T) {
	e, f := startedEngine(t, named("Alpha"), true)
	e.SetSearchQuery("alp")

	done := run(func() { e.SelectGenre(context.Background(), "rpg") })
	req := f.next(t)
	require.Equal(t, "rpg", req.genre)
	require.Equal(t, 1, req.page)
	require.Equal(t, GenreLoading{Genre: "rpg"}, e.State())

	req.reply <- result{page: domain.Page{Items: named("Baldur"), HasMore: true}}
	wait(t, done)

	s := requireSuccess(t, e.State())
	require.Equal(t, "rpg", s.Genre)
	require.Empty(t, s.SearchQuery)
	require.Equal(t, named("Baldur"), s.AllItems)
}

func TestEngine_SelectSameGenreIsNoop(t *testing.T) {
	e, f := startedEngine(t, named("Alpha"), true)
	before := e.State()
	e.SelectGenre(context.Background(), "action")
	f.none(t)
	require.Equal(t, before, e.State())
}

func TestEngine_SupersededGenreLoadIsDiscarded(t *testing.T) {
	e, f := startedEngine(t, named("Alpha"), true)

	slow := run(func() { e.SelectGenre(context.Background(), "rpg") })
	rpg := f.next(t)

	fast := run(func() { e.SelectGenre(context.Background(), "indie") })
	indie := f.next(t)
	indie.reply <- result{page: domain.Page{Items: named("Celeste"), HasMore: false}}
	wait(t, fast)

	rpg.reply <- result{page: domain.Page{Items: named("Baldur"), HasMore: true}}
	wait(t, slow)

	s := requireSuccess(t, e.State())
	require.Equal(t, "indie", s.Genre)
	require.Equal(t, named("Celeste"), s.AllItems)
}

func TestEngine_PageFromPreviousGenreIsDiscarded(t *testing.T) {
	e, f := startedEngine(t, named("Alpha"), true)

	paging := run(func() { e.LoadNextPage(context.Background()) })
	page2 := f.next(t)

	switching := run(func() { e.SelectGenre(context.Background(), "rpg") })
	rpg := f.next(t)
	rpg.reply <- result{page: domain.Page{Items: named("Baldur"), HasMore: true}}
	wait(t, switching)

	page2.reply <- result{page: domain.Page{Items: named("Stale"), HasMore: true}}
	wait(t, paging)

	s := requireSuccess(t, e.State())
	require.Equal(t, "rpg", s.Genre)
	require.Equal(t, named("Baldur"), s.AllItems)
	require.False(t, s.IsFetchingNextPage)
}

func TestEngine_GenreSwitchReleasesPagination(t *testing.T) {
	e, f := startedEngine(t, named("Alpha"), true)

	paging := run(func() { e.LoadNextPage(context.Background()) })
	stale := f.next(t)
	require.Equal(t, "action", stale.genre)

	switching := run(func() { e.SelectGenre(context.Background(), "rpg") })
	rpg := f.next(t)
	rpg.reply <- result{page: domain.Page{Items: named("Baldur"), HasMore: true}}
	wait(t, switching)

	// The action page is never answered; the switch cancelled it
	wait(t, paging)

	next := run(func() { e.LoadNextPage(context.Background()) })
	req := f.next(t)
	require.Equal(t, "rpg", req.genre)
	require.Equal(t, 2, req.page)
	req.reply <- result{page: domain.Page{Items: []domain.Item{{ID: 9, Name: "Divinity"}}}}
	wait(t, next)

	s := requireSuccess(t, e.State())
	require.Equal(t, []string{"Baldur", "Divinity"}, []string{s.AllItems[0].Name, s.AllItems[1].Name})
	require.False(t, s.HasMore)
}

func TestEngine_RetryShowsGenreLoadingAfterFirstLoad(t *testing.T) {
	e, f := startedEngine(t, named("Alpha"), true)

	done := run(func() { e.Retry(context.Background()) })
	req := f.next(t)
	require.Equal(t, GenreLoading{Genre: "action"}, e.State())
	req.reply <- result{page: domain.Page{Items: named("Alpha", "Beta")}}
	wait(t, done)

	require.Len(t, requireSuccess(t, e.State()).AllItems, 2)
}

func TestEngine_SubscribeSeesOrderedStates(t *testing.T) {
	f := &scriptedFetcher{fn: func(string, int) (domain.Page, error) {
		return domain.Page{Items: named("Alpha"), HasMore: true}, nil
	}}
	e := NewEngine(f, "action", nil)
	ch, cancel := e.Subscribe()
	defer cancel()

	require.Equal(t, InitialLoading{}, <-ch)
	e.Start(context.Background())

	var last State
	for s := range ch {
		last = s
		if _, ok := s.(Success); ok {
			break
		}
	}
	require.Equal(t, "action", requireSuccess(t, last).Genre)

	e.Close()
	_, open := <-ch
	require.False(t, open)
}

func TestEngine_PublishedStatesAreNotMutated(t *testing.T) {
	e, f := startedEngine(t, named("Alpha", "Beta"), true)
	first := requireSuccess(t, e.State())
	snapshot := append([]domain.Item(nil), first.AllItems...)

	done := run(func() { e.LoadNextPage(context.Background()) })
	f.next(t).reply <- result{page: domain.Page{Items: named("Gamma"), HasMore: false}}
	wait(t, done)

	require.Equal(t, snapshot, first.AllItems)
	require.False(t, first.IsFetchingNextPage)
	require.Len(t, requireSuccess(t, e.State()).AllItems, 3)
}
