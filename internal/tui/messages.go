package tui

import (
	"github.com/mmcdole/gamedeck/internal/browse"
	"github.com/mmcdole/gamedeck/internal/detail"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// BrowseStateMsg carries a newly published browse state
type BrowseStateMsg struct {
	State browse.State
}

// DetailStateMsg carries a newly published detail state. Loader identifies
// the detail screen the state belongs to.
type DetailStateMsg struct {
	Loader *detail.Loader
	State  detail.State
}

// LinkOpenedMsg signals that the browser was launched
type LinkOpenedMsg struct {
	URL string
}

// ClearStatusMsg clears the status line if it still shows the message with ID
type ClearStatusMsg struct {
	ID int
}
