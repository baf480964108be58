// Package rawg implements the remote catalog against the RAWG Video Games API.
package rawg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mmcdole/gamedeck/internal/domain"
)

const (
	DefaultBaseURL  = "https://api.rawg.io/api/"
	defaultTimeout  = 30 * time.Second
	defaultRPS      = 5.0
	userAgent       = "gamedeck/1.0"
	requestIDHeader = "X-Request-ID"

	// Listing parameters are fixed; the UI never varies them.
	PageSize = 20
	ordering = "-rating"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client implements domain.RemoteCatalog for RAWG
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	apiKey  string
	logger  *slog.Logger
}

// NewClient creates a new RAWG API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetQueryParam("key", opts.APIKey)

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 5),
		apiKey:  opts.APIKey,
		logger:  logger,
	}
}

// ListItems fetches one page of a genre, highest rated first
func (c *Client) ListItems(ctx context.Context, genre string, page int) (domain.Page, error) {
	var resp GamesResponse
	err := c.get(ctx, "games", &resp, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"genres":    genre,
			"page":      strconv.Itoa(page),
			"page_size": strconv.Itoa(PageSize),
			"ordering":  ordering,
		})
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("listing %s page %d: %w", genre, page, err)
	}
	return MapGamesPage(resp), nil
}

// GetDetail fetches the full record for a game
func (c *Client) GetDetail(ctx context.Context, id int) (domain.ItemDetail, error) {
	var resp GameDetail
	if err := c.get(ctx, "games/{id}", &resp, withID(id)); err != nil {
		return domain.ItemDetail{}, fmt.Errorf("fetching game %d: %w", id, err)
	}
	return MapGameDetail(resp), nil
}

// GetScreenshots fetches a game's screenshots
func (c *Client) GetScreenshots(ctx context.Context, id int) ([]domain.Screenshot, error) {
	var resp ScreenshotsResponse
	if err := c.get(ctx, "games/{id}/screenshots", &resp, withID(id)); err != nil {
		return nil, fmt.Errorf("fetching screenshots for %d: %w", id, err)
	}
	return MapScreenshots(resp), nil
}

// GetTrailers fetches a game's trailers
func (c *Client) GetTrailers(ctx context.Context, id int) ([]domain.Trailer, error) {
	var resp MoviesResponse
	if err := c.get(ctx, "games/{id}/movies", &resp, withID(id)); err != nil {
		return nil, fmt.Errorf("fetching trailers for %d: %w", id, err)
	}
	return MapTrailers(resp), nil
}

func withID(id int) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetPathParam("id", strconv.Itoa(id))
	}
}

// get performs a rate-limited GET and decodes a JSON body into result
func (c *Client) get(ctx context.Context, path string, result any, configure func(*resty.Request)) error {
	if c.apiKey == "" {
		return domain.ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID).
		SetResult(result)
	if configure != nil {
		configure(req)
	}

	c.logger.Debug("rawg request", "path", path, "requestId", requestID)

	resp, err := req.Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = withoutURL(err)
		c.logger.Error("rawg request failed", "error", err, "path", path, "requestId", requestID)
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthFailed
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}

	c.logger.Error("rawg request error",
		"status", resp.StatusCode(),
		"path", path,
		"requestId", requestID,
		"body", truncate(resp.String(), 200))
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("%w: status %d", domain.ErrServerOffline, resp.StatusCode())
	}
	return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
}

// withoutURL drops the request URL from a transport error. The URL carries
// the API key as a query parameter.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
