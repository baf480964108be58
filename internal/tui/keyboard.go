package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/gamedeck/internal/browse"
	"github.com/mmcdole/gamedeck/internal/detail"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/tui/components"
)

// handleKeyMsg routes key input to the active screen or modal
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.closeDetail()
		return m, tea.Quit
	}

	// Modals capture all input
	if m.picker != nil {
		return m.handleGenrePickerKeys(msg)
	}
	if m.searchInput.Focused() {
		return m.handleSearchKeys(msg)
	}

	switch m.screen {
	case ScreenHelp:
		m.screen = m.previous
		return m, nil
	case ScreenDetail:
		return m.handleDetailKeys(msg)
	default:
		return m.handleBrowseKeys(msg)
	}
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.previous = m.screen
		m.screen = ScreenHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.list.MoveUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.list.MoveDown()
		return m, m.maybeLoadNextPage()

	case key.Matches(msg, m.keys.HalfUp):
		m.list.HalfPageUp()
		return m, nil

	case key.Matches(msg, m.keys.HalfDown):
		m.list.HalfPageDown()
		return m, m.maybeLoadNextPage()

	case key.Matches(msg, m.keys.Home):
		m.list.Top()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.list.Bottom()
		return m, m.maybeLoadNextPage()

	case key.Matches(msg, m.keys.Enter):
		if item := m.list.Selected(); item != nil {
			return m, m.openDetail(*item)
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		if !m.canSearch() {
			return m, nil
		}
		m.searchInput.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Genres):
		m.openGenrePicker()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		return m, m.retryBrowse()

	case key.Matches(msg, m.keys.DismissError):
		if s, ok := m.browseState.(browse.Success); ok && s.PaginationError != "" {
			m.engine.ClearPaginationError()
		}
		return m, nil

	case msg.String() == "esc":
		// Esc clears an applied search
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.engine.SetSearchQuery("")
		}
		return m, nil
	}

	return m, nil
}

// retryBrowse retries whatever failed: the pagination request when a page
// error is showing, otherwise the whole genre load.
func (m *Model) retryBrowse() tea.Cmd {
	switch s := m.browseState.(type) {
	case browse.Success:
		if s.PaginationError != "" {
			m.engine.ClearPaginationError()
			return LoadNextPageCmd(m.engine)
		}
	case browse.Error:
		return RetryBrowseCmd(m.engine)
	case browse.Empty:
		if s.Reason == browse.NoGenreResults || len(m.lastItems) == 0 {
			return RetryBrowseCmd(m.engine)
		}
	}
	return nil
}

// canSearch reports whether the browse state accepts a search query
func (m Model) canSearch() bool {
	switch m.browseState.(type) {
	case browse.Success, browse.Empty:
		return true
	}
	return false
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.engine.SetSearchQuery("")
		return m, nil
	case "enter", "down":
		// Keep the query and return to the list
		m.searchInput.Blur()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if q := m.searchInput.Value(); q != before {
		m.engine.SetSearchQuery(q)
	}
	return m, cmd
}

func (m *Model) openGenrePicker() {
	m.picker = components.NewGenrePicker(domain.Genres, m.engine.Genre())
	m.picker.SetWidth(min(m.width-4, 40))
}

func (m Model) handleGenrePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.picker.Update(msg)
	if !m.picker.Done() {
		return m, cmd
	}

	genre := m.picker.Selected()
	m.picker = nil
	if genre == "" || genre == m.engine.Genre() {
		return m, nil
	}

	// A new genre starts without a search
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.list.Reset()
	return m, SelectGenreCmd(m.engine, genre)
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeDetail()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.previous = m.screen
		m.screen = ScreenHelp
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.closeDetail()
		m.screen = ScreenBrowse
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.detailScroll > 0 {
			m.detailScroll--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.detailScroll++
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if _, ok := m.detailState.(detail.Error); ok {
			return m, m.retryDetail()
		}
		return m, nil

	case key.Matches(msg, m.keys.OpenWebsite):
		s, ok := m.detailState.(detail.Success)
		if !ok || s.Detail.Website == "" || m.opener == nil {
			return m, nil
		}
		return m, OpenLinkCmd(m.opener, s.Detail.Website)
	}

	return m, nil
}
