package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/tui/styles"
)

// Scroll indicators ("↑ more" and "↓ more") each take 1 line
const ScrollIndicatorLines = 2

// GameList is a scrollable list of games. It does not filter; the browse
// engine hands it the already filtered rows.
type GameList struct {
	items []domain.Item

	cursor     int
	offset     int
	maxVisible int

	width  int
	height int
}

// NewGameList creates an empty list
func NewGameList() *GameList {
	return &GameList{}
}

// SetItems replaces the rows. The cursor stays on the same game when it is
// still present, otherwise it is clamped.
func (l *GameList) SetItems(items []domain.Item) {
	var selectedID int
	if sel := l.Selected(); sel != nil {
		selectedID = sel.ID
	}

	l.items = items

	if selectedID != 0 {
		for i, it := range items {
			if it.ID == selectedID {
				l.cursor = i
				l.ensureVisible()
				return
			}
		}
	}
	l.clamp()
}

// Items returns the rows currently shown
func (l *GameList) Items() []domain.Item { return l.items }

// Len returns the number of rows
func (l *GameList) Len() int { return len(l.items) }

// Cursor returns the selected row index
func (l *GameList) Cursor() int { return l.cursor }

// Selected returns the selected game or nil when the list is empty
func (l *GameList) Selected() *domain.Item {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return nil
	}
	it := l.items[l.cursor]
	return &it
}

// NearEnd reports whether the cursor is within threshold rows of the last row
func (l *GameList) NearEnd(threshold int) bool {
	return len(l.items) > 0 && l.cursor >= len(l.items)-1-threshold
}

// SetSize sets the outer dimensions
func (l *GameList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.maxVisible = height - ScrollIndicatorLines
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
	l.ensureVisible()
}

// Reset moves the cursor back to the top
func (l *GameList) Reset() {
	l.cursor = 0
	l.offset = 0
}

func (l *GameList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
		l.ensureVisible()
	}
}

func (l *GameList) MoveDown() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
		l.ensureVisible()
	}
}

func (l *GameList) HalfPageDown() {
	l.cursor += max(l.maxVisible/2, 1)
	l.clamp()
}

func (l *GameList) HalfPageUp() {
	l.cursor -= max(l.maxVisible/2, 1)
	l.clamp()
}

func (l *GameList) Top() {
	l.cursor = 0
	l.offset = 0
}

func (l *GameList) Bottom() {
	l.cursor = len(l.items) - 1
	l.clamp()
}

func (l *GameList) clamp() {
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

func (l *GameList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the visible rows between scroll indicators
func (l *GameList) View() string {
	width := max(l.width, 20)

	start := min(l.offset, len(l.items))
	end := min(start+l.maxVisible, len(l.items))

	lines := make([]string, 0, end-start+2)

	// Always reserve the indicator lines so the layout does not shift
	header := " "
	if start > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	lines = append(lines, header)

	for i := start; i < end; i++ {
		lines = append(lines, renderGameRow(l.items[i], i == l.cursor, width))
	}

	footer := " "
	if end < len(l.items) {
		footer = styles.DimStyle.Render("↓ more")
	}
	lines = append(lines, footer)

	return strings.Join(lines, "\n")
}

func renderGameRow(item domain.Item, selected bool, width int) string {
	ratingFg := styles.Accent
	rating := "★ " + item.FormattedRating()

	score := "    "
	scoreFg := styles.DimGray
	if item.HasCriticScore() {
		score = fmt.Sprintf("%4d", *item.CriticScore)
		scoreFg = styles.CriticColor(*item.CriticScore)
	}

	released := item.Released
	if len(released) >= 4 {
		released = released[:4]
	}
	releasedFg := styles.DimGray

	// margins(2) + rating(5) + gaps(3) + score(4) + year(4)
	available := width - 2 - lipgloss.Width(rating) - 3 - 4 - 4
	name := styles.Pad(styles.Truncate(item.Name, available), available)

	parts := []styles.RowPart{
		{Text: name},
		{Text: " " + rating, Foreground: &ratingFg},
		{Text: " " + score, Foreground: &scoreFg},
		{Text: " " + styles.Pad(released, 4), Foreground: &releasedFg},
	}
	return styles.RenderListRow(parts, selected, width)
}
