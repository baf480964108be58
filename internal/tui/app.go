package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/gamedeck/internal/browse"
	"github.com/mmcdole/gamedeck/internal/detail"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/metrics"
	"github.com/mmcdole/gamedeck/internal/tui/components"
	"github.com/mmcdole/gamedeck/internal/tui/styles"
)

// Screen is the screen currently shown
type Screen int

const (
	ScreenBrowse Screen = iota
	ScreenDetail
	ScreenHelp
)

// Layout constants
const (
	// Header, search bar and footer
	ChromeHeight = 5

	// Rows from the end of the list at which the next page is requested
	PrefetchThreshold = 5

	statusDuration = 4 * time.Second
)

// LinkOpener opens a URL outside the terminal
type LinkOpener interface {
	Open(url string) error
}

// Model is the main application model
type Model struct {
	engine   *browse.Engine
	client   domain.DetailClient
	opener   LinkOpener
	logger   *slog.Logger
	recorder metrics.Recorder
	keys     KeyMap

	// Browse
	browseCh    <-chan browse.State
	browseState browse.State
	lastItems   []domain.Item // AllItems of the latest Success, for suggestions
	list        *components.GameList
	searchInput textinput.Model
	picker      *components.GenrePicker

	// Detail
	loader       *detail.Loader
	detailState  detail.State
	detailCh     <-chan detail.State
	detailCancel func()
	detailUnsub  func()
	detailScroll int

	screen   Screen
	previous Screen // screen to return to from help
	spinner  spinner.Model

	statusMsg   string
	statusIsErr bool
	statusID    int

	width  int
	height int
	ready  bool
}

// NewModel creates the application model. The engine must not have been
// started; Init starts it.
func NewModel(engine *browse.Engine, client domain.DetailClient, opener LinkOpener, logger *slog.Logger, recorder metrics.Recorder) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	ti := textinput.New()
	ti.Placeholder = "search games..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	ch, _ := engine.Subscribe()

	return Model{
		engine:      engine,
		client:      client,
		opener:      opener,
		logger:      logger,
		recorder:    recorder,
		keys:        DefaultKeyMap(),
		browseCh:    ch,
		browseState: engine.State(),
		list:        components.NewGameList(),
		searchInput: ti,
		spinner:     sp,
		screen:      ScreenBrowse,
	}
}

// Init starts the first load and begins listening for browse states
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		StartBrowseCmd(m.engine),
		WaitForBrowseStateCmd(m.browseCh),
		m.spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case BrowseStateMsg:
		cmd := m.applyBrowseState(msg.State)
		return m, tea.Batch(WaitForBrowseStateCmd(m.browseCh), cmd)

	case DetailStateMsg:
		if msg.Loader != m.loader {
			// Left over from a detail screen that was closed
			return m, nil
		}
		m.detailState = msg.State
		return m, WaitForDetailStateCmd(m.loader, m.detailCh)

	case LinkOpenedMsg:
		return m, m.setStatus("Opened "+msg.URL, false)

	case ErrMsg:
		m.logger.Error("command failed", "error", msg.Err, "context", msg.Context)
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		if msg.ID == m.statusID {
			m.statusMsg = ""
			m.statusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

// applyBrowseState stores the state and returns a next-page command when the
// cursor is already near the end of a list that has more.
func (m *Model) applyBrowseState(s browse.State) tea.Cmd {
	m.browseState = s

	switch s := s.(type) {
	case browse.Success:
		m.lastItems = s.AllItems
		m.list.SetItems(s.FilteredItems)
		return m.maybeLoadNextPage()
	case browse.GenreLoading, browse.InitialLoading:
		m.lastItems = nil
		m.list.SetItems(nil)
		m.list.Reset()
	case browse.Empty:
		m.list.SetItems(nil)
	case browse.Error:
		m.lastItems = nil
		m.list.SetItems(nil)
	}
	return nil
}

// maybeLoadNextPage requests the next page when the cursor is within
// PrefetchThreshold rows of the end. A pending pagination error stops
// automatic requests until the user retries or dismisses it.
func (m *Model) maybeLoadNextPage() tea.Cmd {
	s, ok := m.browseState.(browse.Success)
	if !ok || !s.HasMore || s.IsFetchingNextPage || s.PaginationError != "" {
		return nil
	}
	if !m.list.NearEnd(PrefetchThreshold) {
		return nil
	}
	return LoadNextPageCmd(m.engine)
}

// openDetail creates a loader for the selected game and switches screens
func (m *Model) openDetail(item domain.Item) tea.Cmd {
	m.closeDetail()

	ctx, cancel := context.WithCancel(context.Background())
	m.loader = detail.NewLoader(m.client, item.ID, m.logger, detail.WithRecorder(m.recorder))
	m.detailCancel = cancel
	m.detailState = m.loader.State()
	m.detailScroll = 0
	m.screen = ScreenDetail

	m.detailCh, m.detailUnsub = m.loader.Subscribe()
	return tea.Batch(
		LoadDetailCmd(ctx, m.loader),
		WaitForDetailStateCmd(m.loader, m.detailCh),
	)
}

// closeDetail cancels any in-flight detail fetch and drops its subscription
func (m *Model) closeDetail() {
	if m.detailCancel != nil {
		m.detailCancel()
		m.detailCancel = nil
	}
	if m.detailUnsub != nil {
		m.detailUnsub()
		m.detailUnsub = nil
	}
	if m.loader != nil {
		m.loader.Close()
		m.loader = nil
	}
	m.detailCh = nil
	m.detailState = nil
}

func (m *Model) retryDetail() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	if m.detailCancel != nil {
		m.detailCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.detailCancel = cancel
	return LoadDetailCmd(ctx, m.loader)
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusID++
	m.statusMsg = msg
	m.statusIsErr = isErr
	return ClearStatusCmd(m.statusID, statusDuration)
}

func (m *Model) updateLayout() {
	m.list.SetSize(m.width, max(m.height-ChromeHeight, 3))
	m.searchInput.Width = max(m.width-6, 10)
	if m.picker != nil {
		m.picker.SetWidth(min(m.width-4, 40))
	}
}
