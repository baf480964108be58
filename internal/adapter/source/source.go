// Package source builds the remote catalog backend from configuration.
package source

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mmcdole/gamedeck/internal/adapter"
	"github.com/mmcdole/gamedeck/internal/adapter/source/rawg"
	"github.com/mmcdole/gamedeck/internal/domain"
)

// NewClientFromConfig creates the RAWG client described by cfg.API
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (domain.RemoteCatalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.API.Key == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api.base_url %q", cfg.API.BaseURL)
	}

	return rawg.NewClient(rawg.Options{
		BaseURL:           cfg.API.BaseURL,
		APIKey:            cfg.API.Key,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	}, logger), nil
}
