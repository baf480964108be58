package adapter

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/gamedeck/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
api:
  key: abc123
  timeout: 5s
  requests_per_second: 2
cache:
  driver: sqlite
  dir: /tmp/gamedeck-cache
browse:
  default_genre: rpg
metrics:
  addr: 127.0.0.1:9100
`)
	t.Setenv("GAMEDECK_API_KEY", "")
	t.Setenv("RAWG_API_KEY", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "abc123", cfg.API.Key)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, 2.0, cfg.API.RequestsPerSecond)
	require.Equal(t, "sqlite", cfg.Cache.Driver)
	require.Equal(t, "/tmp/gamedeck-cache", cfg.Cache.Dir)
	require.Equal(t, "rpg", cfg.Browse.DefaultGenre)
	require.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	// Untouched keys keep their defaults
	require.Equal(t, "https://api.rawg.io/api/", cfg.API.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "api:\n  key: from-file\n")
	t.Setenv("GAMEDECK_API_KEY", "from-env")
	t.Setenv("GAMEDECK_CACHE_DRIVER", "memory")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.API.Key)
	require.Equal(t, "memory", cfg.Cache.Driver)
}

func TestLoadConfig_RawgKeyFallback(t *testing.T) {
	path := writeConfig(t, "browse:\n  default_genre: indie\n")
	t.Setenv("GAMEDECK_API_KEY", "")
	t.Setenv("RAWG_API_KEY", "rawg-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "rawg-key", cfg.API.Key)
}

func TestLoadConfig_BadFile(t *testing.T) {
	path := writeConfig(t, "api: [unterminated")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.ErrorIs(t, err, domain.ErrMissingAPIKey)
	require.False(t, cfg.IsConfigured())

	cfg.API.Key = "k"
	require.NoError(t, cfg.Validate())

	cfg.Cache.Driver = "redis"
	require.ErrorContains(t, cfg.Validate(), "redis")

	cfg.Cache.Driver = "bolt"
	cfg.Browse.DefaultGenre = "horror"
	require.ErrorContains(t, cfg.Validate(), "horror")
}

func TestSetupLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gamedeck.log")
	logger, closeLog, err := SetupLogger(LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("fetched page", "genre", "action", "page", 2)
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	require.Equal(t, "fetched page", entry["msg"])
	require.Equal(t, "action", entry["genre"])
	require.Equal(t, float64(2), entry["page"])
}

func TestSetupLogger_EmptyPathDiscards(t *testing.T) {
	logger, closeLog, err := SetupLogger(LoggingConfig{})
	require.NoError(t, err)
	logger.Info("nothing")
	require.NoError(t, closeLog())
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLogLevel("WARNING"))
	require.Equal(t, slog.LevelError, ParseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLogLevel("nonsense"))
}
