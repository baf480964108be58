package rawg

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/gamedeck/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/api/", APIKey: "secret", RequestsPerSecond: 1000}, nil)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func TestListItems_RequestAndMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/games", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "secret", q.Get("key"))
		require.Equal(t, "rpg", q.Get("genres"))
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "20", q.Get("page_size"))
		require.Equal(t, "-rating", q.Get("ordering"))
		require.NotEmpty(t, r.Header.Get(requestIDHeader))

		writeJSON(w, `{
			"count": 41,
			"next": "https://api.rawg.io/api/games?page=3",
			"previous": null,
			"results": [
				{"id": 3328, "slug": "the-witcher-3", "name": "The Witcher 3", "released": "2015-05-18",
				 "background_image": "https://img/w3.jpg", "rating": 4.66, "rating_top": 5, "metacritic": 92},
				{"id": 7, "slug": "x", "name": "Unrated", "released": null,
				 "background_image": null, "rating": 0, "rating_top": 0, "metacritic": null}
			]
		}`)
	})

	page, err := c.ListItems(context.Background(), "rpg", 2)
	require.NoError(t, err)
	require.True(t, page.HasMore)
	require.Equal(t, 41, page.TotalCount)
	require.Len(t, page.Items, 2)

	w3 := page.Items[0]
	require.Equal(t, 3328, w3.ID)
	require.Equal(t, "The Witcher 3", w3.Name)
	require.Equal(t, "https://img/w3.jpg", w3.ImageURL)
	require.Equal(t, "2015-05-18", w3.Released)
	require.NotNil(t, w3.CriticScore)
	require.Equal(t, 92, *w3.CriticScore)

	unrated := page.Items[1]
	require.Empty(t, unrated.ImageURL)
	require.Empty(t, unrated.Released)
	require.Nil(t, unrated.CriticScore)
}

func TestListItems_LastPageHasNoMore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"count": 1, "next": null, "previous": null, "results": [{"id": 1, "name": "Only"}]}`)
	})

	page, err := c.ListItems(context.Background(), "indie", 1)
	require.NoError(t, err)
	require.False(t, page.HasMore)
}

func TestGetDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/games/3328", r.URL.Path)
		writeJSON(w, `{
			"id": 3328, "name": "The Witcher 3", "description_raw": "Geralt.",
			"released": null, "tba": true, "playtime": 46, "website": "https://thewitcher.com",
			"background_image_additional": "https://img/extra.jpg", "rating": 4.66, "metacritic": null
		}`)
	})

	d, err := c.GetDetail(context.Background(), 3328)
	require.NoError(t, err)
	require.Equal(t, "Geralt.", d.Description)
	require.Equal(t, 46, d.Playtime)
	require.Equal(t, "https://thewitcher.com", d.Website)
	require.Equal(t, "https://img/extra.jpg", d.ImageURLAdditional)
	require.True(t, d.TBA)
	require.Equal(t, "TBA", d.ReleaseLabel())
}

func TestGetScreenshots_DropsDeleted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/games/5/screenshots", r.URL.Path)
		writeJSON(w, `{"count": 2, "results": [
			{"id": 1, "image": "https://img/1.jpg", "width": 1920, "height": 1080, "is_deleted": false},
			{"id": 2, "image": "https://img/2.jpg", "width": 1920, "height": 1080, "is_deleted": true}
		]}`)
	})

	shots, err := c.GetScreenshots(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, []domain.Screenshot{{ID: 1, ImageURL: "https://img/1.jpg", Width: 1920, Height: 1080}}, shots)
}

func TestGetTrailers_PrefersMaxQuality(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/games/5/movies", r.URL.Path)
		writeJSON(w, `{"count": 2, "results": [
			{"id": 1, "name": "Launch", "preview": "https://img/p1.jpg", "data": {"480": "https://v/1-480.mp4", "max": "https://v/1-max.mp4"}},
			{"id": 2, "name": "Teaser", "preview": "https://img/p2.jpg", "data": {"480": "https://v/2-480.mp4", "max": ""}}
		]}`)
	})

	trailers, err := c.GetTrailers(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, trailers, 2)
	require.Equal(t, "https://v/1-max.mp4", trailers[0].VideoURL)
	require.Equal(t, "https://img/p1.jpg", trailers[0].ThumbnailURL)
	require.Equal(t, "https://v/2-480.mp4", trailers[1].VideoURL)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrAuthFailed},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusBadGateway, domain.ErrServerOffline},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := c.ListItems(context.Background(), "action", 1)
		require.Error(t, err)
		require.True(t, errors.Is(err, tc.want), "status %d: %v", tc.status, err)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: url, APIKey: "secret"}, nil)
	_, err := c.ListItems(context.Background(), "action", 1)
	require.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestTransportErrorHidesAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/api/"
	srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	c := NewClient(Options{BaseURL: base, APIKey: "k-7f3a9c", RequestsPerSecond: 1000}, logger)

	_, err := c.GetDetail(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrServerOffline)
	require.NotContains(t, err.Error(), "k-7f3a9c")
	require.NotContains(t, logs.String(), "k-7f3a9c")
	require.Contains(t, logs.String(), "rawg request failed")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	require.Equal(t, "hé", truncate("héllo wörld", 2))
	require.Equal(t, "日本", truncate("日本語", 2))
	require.True(t, utf8.ValidString(truncate("wörld", 2)))
	require.Equal(t, "short", truncate("short", 200))
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"count": 0, "results": []}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListItems(ctx, "action", 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.ListItems(context.Background(), "action", 1)
	require.ErrorIs(t, err, domain.ErrMissingAPIKey)
}
