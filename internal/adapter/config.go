package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmcdole/gamedeck/internal/adapter/source/rawg"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/store"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Browse  BrowseConfig  `mapstructure:"browse"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Browser BrowserConfig `mapstructure:"browser"`
}

// APIConfig holds remote catalog configuration
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Key               string        `mapstructure:"key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Driver string `mapstructure:"driver"` // "bolt", "sqlite" or "memory"
	Dir    string `mapstructure:"dir"`
}

// BrowseConfig holds browsing defaults
type BrowseConfig struct {
	DefaultGenre string `mapstructure:"default_genre"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the Prometheus endpoint address; empty disables it
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// BrowserConfig holds the command used to open links; empty uses the system default
type BrowserConfig struct {
	Command string `mapstructure:"command"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           rawg.DefaultBaseURL,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
		},
		Cache: CacheConfig{
			Driver: store.DriverBolt,
			Dir:    defaultCachePath(),
		},
		Browse: BrowseConfig{
			DefaultGenre: domain.DefaultGenre,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "gamedeck", "gamedeck.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "gamedeck", "gamedeck.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "gamedeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "gamedeck")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "gamedeck", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "gamedeck", "cache")
	}
}

// LoadConfig loads configuration from file and environment. An empty
// configFile searches the default config directory and the working directory.
//
// A .env file in the working directory is loaded first; variables already set
// in the environment win. GAMEDECK_API_KEY and RAWG_API_KEY both set api.key.
func LoadConfig(configFile string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	setDefaults(v, cfg)

	// Environment variable overrides, e.g. GAMEDECK_CACHE_DRIVER
	v.SetEnvPrefix("GAMEDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.key", "GAMEDECK_API_KEY", "RAWG_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.key", cfg.API.Key)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.requests_per_second", cfg.API.RequestsPerSecond)
	v.SetDefault("cache.driver", cfg.Cache.Driver)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("browse.default_genre", cfg.Browse.DefaultGenre)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
	v.SetDefault("browser.command", cfg.Browser.Command)
}

// Validate reports configuration that would make the catalog unusable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.Key) == "" {
		errs = append(errs, fmt.Errorf("%w: set api.key, GAMEDECK_API_KEY or RAWG_API_KEY", domain.ErrMissingAPIKey))
	}
	switch c.Cache.Driver {
	case "", store.DriverBolt, store.DriverSQLite, store.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown cache driver %q", c.Cache.Driver))
	}
	if c.Browse.DefaultGenre != "" && !domain.IsKnownGenre(c.Browse.DefaultGenre) {
		errs = append(errs, fmt.Errorf("unknown default genre %q", c.Browse.DefaultGenre))
	}
	return errors.Join(errs...)
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.API.Key) != ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
