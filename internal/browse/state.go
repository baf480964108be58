package browse

import "github.com/mmcdole/gamedeck/internal/domain"

// State is the published browse state. Exactly one variant is active;
// values are replaced wholesale and never mutated after publication.
type State interface {
	isState()
}

// InitialLoading is shown before the first successful load of a session.
type InitialLoading struct{}

// GenreLoading is shown while a genre switch or retry is in flight.
type GenreLoading struct {
	Genre       string
	SearchQuery string
}

// Success holds the loaded items. FilteredItems is derived from AllItems and
// SearchQuery and is always a subset of AllItems.
type Success struct {
	AllItems           []domain.Item
	FilteredItems      []domain.Item
	Genre              string
	SearchQuery        string
	HasMore            bool
	IsFetchingNextPage bool
	PaginationError    string // empty when there is none
}

// EmptyReason explains why there is nothing to show
type EmptyReason int

const (
	NoGenreResults EmptyReason = iota
	NoSearchResults
)

func (r EmptyReason) String() string {
	switch r {
	case NoGenreResults:
		return "no genre results"
	case NoSearchResults:
		return "no search results"
	default:
		return "unknown"
	}
}

// Empty is shown when a genre has no items or a search matches none.
type Empty struct {
	Reason      EmptyReason
	Genre       string
	SearchQuery string
}

// Error is shown when the first page failed and no cache could stand in.
type Error struct {
	Message string
}

func (InitialLoading) isState() {}
func (GenreLoading) isState()   {}
func (Success) isState()        {}
func (Empty) isState()          {}
func (Error) isState()          {}
