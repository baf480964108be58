package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Home     key.Binding
	End      key.Binding
	Enter    key.Binding
	Back     key.Binding

	// Actions
	Quit         key.Binding
	Help         key.Binding
	Search       key.Binding
	Genres       key.Binding
	Retry        key.Binding
	DismissError key.Binding
	OpenWebsite  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "half page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "h", "left", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Genres: key.NewBinding(
			key.WithKeys("tab", "c"),
			key.WithHelp("tab", "genres"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		DismissError: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		OpenWebsite: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open website"),
		),
	}
}

// BrowseHelp returns the bindings shown in the browse footer
func (k KeyMap) BrowseHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Search, k.Genres, k.Quit}
}

// DetailHelp returns the bindings shown in the detail footer
func (k KeyMap) DetailHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.OpenWebsite, k.Back, k.Quit}
}

// AllBindings returns every binding for the help screen
func (k KeyMap) AllBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.HalfUp, k.HalfDown, k.Home, k.End,
		k.Enter, k.Back, k.Search, k.Genres, k.Retry, k.DismissError,
		k.OpenWebsite, k.Help, k.Quit,
	}
}
