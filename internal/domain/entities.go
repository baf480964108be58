package domain

import (
	"fmt"
	"time"
)

// Item represents a game in a list context.
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url,omitempty"`
	Rating      float64 `json:"rating"`                 // 0-5 community rating
	CriticScore *int    `json:"critic_score,omitempty"` // Metacritic, nil when unrated
	Released    string  `json:"released,omitempty"`     // Release label, e.g. "2015-05-18"
}

// HasCriticScore reports whether a critic score is available
func (i Item) HasCriticScore() bool {
	return i.CriticScore != nil
}

// FormattedRating returns the rating with one decimal, e.g. "4.5"
func (i Item) FormattedRating() string {
	return fmt.Sprintf("%.1f", i.Rating)
}

// ItemDetail is the full record for a single game.
type ItemDetail struct {
	Item
	Description        string `json:"description,omitempty"`
	ImageURLAdditional string `json:"image_url_additional,omitempty"`
	Website            string `json:"website,omitempty"`
	Playtime           int    `json:"playtime"` // Average hours
	TBA                bool   `json:"tba"`
}

// ReleaseLabel returns the release date, "TBA", or "Unknown"
func (d ItemDetail) ReleaseLabel() string {
	switch {
	case d.TBA:
		return "TBA"
	case d.Released != "":
		return d.Released
	default:
		return "Unknown"
	}
}

// Page is one page of a genre listing. Pages are produced fresh per fetch.
type Page struct {
	Items      []Item
	HasMore    bool
	TotalCount int
}

// CacheEntry is the cached page-1 result set for a genre.
type CacheEntry struct {
	Genre    string
	Items    []Item
	CachedAt time.Time
}

// Age returns how long ago the entry was written relative to now
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// Screenshot is a still image attached to a game.
type Screenshot struct {
	ID       int    `json:"id"`
	ImageURL string `json:"image_url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Trailer is a video attached to a game.
type Trailer struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url"`
	VideoURL     string `json:"video_url"`
}
