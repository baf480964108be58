package domain

import (
	"context"
	"time"
)

// CatalogClient fetches genre listings from the remote catalog.
// Page size and ordering are fixed by the implementation.
type CatalogClient interface {
	ListItems(ctx context.Context, genre string, page int) (Page, error)
}

// DetailClient fetches a single game's detail and its media extras.
type DetailClient interface {
	GetDetail(ctx context.Context, id int) (ItemDetail, error)
	GetScreenshots(ctx context.Context, id int) ([]Screenshot, error)
	GetTrailers(ctx context.Context, id int) ([]Trailer, error)
}

// RemoteCatalog combines every remote operation a catalog backend provides.
type RemoteCatalog interface {
	CatalogClient
	DetailClient
}

// CacheStore persists the most recent page-1 result set per genre.
// Replace overwrites the genre's entry wholesale; there is no partial merge.
type CacheStore interface {
	Read(genre string) (CacheEntry, bool)
	Replace(genre string, items []Item, cachedAt time.Time) error
	Clear(genre string) error
	ClearAll() error
	Close() error
}

// PageFetcher is the single fetch operation the browse engine depends on.
type PageFetcher interface {
	Fetch(ctx context.Context, genre string, page int) (Page, error)
}
