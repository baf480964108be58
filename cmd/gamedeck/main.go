package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mmcdole/gamedeck/internal/adapter"
	"github.com/mmcdole/gamedeck/internal/adapter/source"
	"github.com/mmcdole/gamedeck/internal/browse"
	"github.com/mmcdole/gamedeck/internal/catalog"
	"github.com/mmcdole/gamedeck/internal/detail"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/metrics"
	"github.com/mmcdole/gamedeck/internal/search"
	"github.com/mmcdole/gamedeck/internal/store"
	"github.com/mmcdole/gamedeck/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const missingKeyHelp = `
Welcome to gamedeck!

The game catalog needs a free API key from https://rawg.io/apidocs.
Set it in your config file (api.key) or export RAWG_API_KEY.

`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "gamedeck",
		Short: "Browse the video game catalog from your terminal",
		Long: `gamedeck - Browse games by genre, search the loaded results and
open details with screenshots and trailers. Genre listings are cached locally
so the last results stay available offline.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), configFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of a genre listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, configFile)
		},
	}
	listCmd.Flags().String("genre", "", "Genre slug (default from config)")
	listCmd.Flags().Int("page", 1, "Page number, starting at 1")
	listCmd.Flags().String("search", "", "Only show games whose name contains this text")

	detailCmd := &cobra.Command{
		Use:   "detail <id>",
		Short: "Print a game's details, screenshots and trailers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetail(cmd, configFile, args[0])
		},
	}

	genresCmd := &cobra.Command{
		Use:   "genres",
		Short: "List the genres that can be browsed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenres(cmd, configFile)
		},
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local listing cache",
	}
	cacheClearCmd := &cobra.Command{
		Use:   "clear [genre]",
		Short: "Remove cached listings for one genre, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd, configFile, args)
		},
	}
	cacheCmd.AddCommand(cacheClearCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gamedeck %s\n", Version)
		},
	}

	rootCmd.AddCommand(listCmd, detailCmd, genresCmd, cacheCmd, versionCmd)
	return rootCmd
}

// app holds the wired dependencies shared by the commands
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	remote   domain.RemoteCatalog
	store    domain.CacheStore
	closers  []func() error
}

// setup loads config, opens the log and cache, and builds the catalog client.
// withRemote is false for commands that never touch the network.
func setup(configFile string, withRemote bool) (*app, error) {
	cfg, err := adapter.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg, recorder: metrics.NoopRecorder{}}

	logger, closeLog, err := adapter.SetupLogger(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		a.closers = append(a.closers, closeLog)
	}
	slog.SetDefault(logger)
	a.logger = logger

	if withRemote {
		if !cfg.IsConfigured() {
			fmt.Fprint(os.Stderr, missingKeyHelp)
		}
		if err := cfg.Validate(); err != nil {
			a.close()
			return nil, err
		}
		remote, err := source.NewClientFromConfig(cfg, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create catalog client: %w", err)
		}
		a.remote = remote
	}

	cache, err := store.Open(cfg.Cache.Driver, cfg.Cache.Dir, cfg.API.BaseURL, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	a.store = cache
	a.closers = append(a.closers, cache.Close)

	return a, nil
}

// startMetrics serves Prometheus metrics when an address is configured
func (a *app) startMetrics() {
	if a.cfg.Metrics.Addr == "" {
		return
	}

	reg := prom.NewRegistry()
	a.recorder = metrics.NewPrometheusRecorder(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err, "addr", a.cfg.Metrics.Addr)
		}
	}()
	a.logger.Info("serving metrics", "addr", a.cfg.Metrics.Addr)

	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

func (a *app) gateway() *catalog.Gateway {
	return catalog.NewGateway(a.remote, a.store, a.logger, catalog.WithRecorder(a.recorder))
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}

func runTUI(ctx context.Context, configFile string) error {
	a, err := setup(configFile, true)
	if err != nil {
		return err
	}
	defer a.close()
	a.startMetrics()

	a.logger.Info("starting gamedeck", "version", Version)

	engine := browse.NewEngine(a.gateway(), a.cfg.Browse.DefaultGenre, a.logger, browse.WithRecorder(a.recorder))
	defer engine.Close()

	launcher := adapter.NewLauncher(a.cfg.Browser.Command, a.logger)
	model := tui.NewModel(engine, a.remote, launcher, a.logger, a.recorder)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

func runList(cmd *cobra.Command, configFile string) error {
	genre, _ := cmd.Flags().GetString("genre")
	page, _ := cmd.Flags().GetInt("page")
	query, _ := cmd.Flags().GetString("search")

	a, err := setup(configFile, true)
	if err != nil {
		return err
	}
	defer a.close()

	if genre == "" {
		genre = a.cfg.Browse.DefaultGenre
	}
	if !domain.IsKnownGenre(genre) {
		return fmt.Errorf("unknown genre %q (see 'gamedeck genres')", genre)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	result, err := a.gateway().Fetch(ctx, genre, page)
	if err != nil {
		return errors.New(domain.UserMessage(err, "Failed to load games"))
	}

	items := search.Filter(result.Items, query)
	if len(items) == 0 {
		if !search.IsBlank(query) {
			fmt.Fprintln(cmd.ErrOrStderr(), "No Results Found")
			names := make([]string, len(result.Items))
			for i, it := range result.Items {
				names[i] = it.Name
			}
			if s := search.Suggest(query, names, 3); len(s) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Did you mean: %s\n", joinComma(s))
			}
			return nil
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "No games available for this genre")
		return nil
	}

	printItems(cmd.OutOrStdout(), items, isTerminal(os.Stdout))
	if result.HasMore {
		fmt.Fprintf(cmd.ErrOrStderr(), "More results: gamedeck list --genre %s --page %d\n", genre, page+1)
	}
	return nil
}

func runDetail(cmd *cobra.Command, configFile, rawID string) error {
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid game id %q", rawID)
	}

	a, err := setup(configFile, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	loader := detail.NewLoader(a.remote, id, a.logger, detail.WithRecorder(a.recorder))
	defer loader.Close()
	loader.Load(ctx)

	switch s := loader.State().(type) {
	case detail.Error:
		return errors.New(s.Message)
	case detail.Success:
		printDetail(cmd.OutOrStdout(), s)
		return nil
	default:
		return errors.New("detail load did not finish")
	}
}

func runGenres(cmd *cobra.Command, configFile string) error {
	cfg, err := adapter.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, g := range domain.Genres {
		marker := " "
		if g == cfg.Browse.DefaultGenre {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s %s\n", marker, g, domain.GenreTitle(g))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, configFile string, args []string) error {
	a, err := setup(configFile, false)
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 0 {
		if err := a.store.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared all cached genres")
		return nil
	}

	genre := args[0]
	if err := a.store.Clear(genre); err != nil {
		return fmt.Errorf("failed to clear %s: %w", genre, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached %s games\n", genre)
	return nil
}
