package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/gamedeck/internal/browse"
	"github.com/mmcdole/gamedeck/internal/detail"
)

// Command factories for async operations. Engine and loader operations
// publish their results through state subscriptions, so these commands
// return no message of their own.

const requestTimeout = 30 * time.Second

// StartBrowseCmd loads the initial genre
func StartBrowseCmd(engine *browse.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		engine.Start(ctx)
		return nil
	}
}

// SelectGenreCmd switches the browsed genre
func SelectGenreCmd(engine *browse.Engine, genre string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		engine.SelectGenre(ctx, genre)
		return nil
	}
}

// RetryBrowseCmd reloads the current genre from page one
func RetryBrowseCmd(engine *browse.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		engine.Retry(ctx)
		return nil
	}
}

// LoadNextPageCmd requests the next page. Concurrent requests are dropped
// by the engine.
func LoadNextPageCmd(engine *browse.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		engine.LoadNextPage(ctx)
		return nil
	}
}

// WaitForBrowseStateCmd reads one state from the subscription. The handler
// re-issues it to keep listening.
func WaitForBrowseStateCmd(ch <-chan browse.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return BrowseStateMsg{State: s}
	}
}

// LoadDetailCmd runs a detail load until detail and extras have settled.
// ctx is cancelled when the detail screen is left.
func LoadDetailCmd(ctx context.Context, loader *detail.Loader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		loader.Load(ctx)
		return nil
	}
}

// WaitForDetailStateCmd reads one state from a detail subscription
func WaitForDetailStateCmd(loader *detail.Loader, ch <-chan detail.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return DetailStateMsg{Loader: loader, State: s}
	}
}

// OpenLinkCmd opens url in the browser
func OpenLinkCmd(opener LinkOpener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "opening website"}
		}
		return LinkOpenedMsg{URL: url}
	}
}

// ClearStatusCmd clears status message id after d
func ClearStatusCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}
