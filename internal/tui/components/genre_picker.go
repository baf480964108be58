package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/search"
	"github.com/mmcdole/gamedeck/internal/tui/styles"
)

// GenrePicker is a modal for choosing the genre to browse. Typing narrows
// the list by fuzzy match.
type GenrePicker struct {
	genres   []string
	matches  []string
	current  string
	cursor   int
	input    textinput.Model
	width    int
	selected string
	done     bool
}

// NewGenrePicker creates a picker over genres with current marked
func NewGenrePicker(genres []string, current string) *GenrePicker {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "> "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.Focus()

	p := &GenrePicker{
		genres:  genres,
		matches: genres,
		current: current,
		input:   ti,
	}
	for i, g := range genres {
		if g == current {
			p.cursor = i
		}
	}
	return p
}

// SetWidth sets the modal width
func (p *GenrePicker) SetWidth(width int) {
	p.width = width
}

// Done reports whether the picker was closed. Selected is empty when it was
// dismissed without a choice.
func (p *GenrePicker) Done() bool { return p.done }

// Selected returns the chosen genre slug
func (p *GenrePicker) Selected() string { return p.selected }

// Matches returns the genres that match the typed filter, best first
func (p *GenrePicker) Matches() []string { return p.matches }

// Update handles key input
func (p *GenrePicker) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			p.done = true
			return nil
		case "enter":
			if p.cursor < len(p.matches) {
				p.selected = p.matches[p.cursor]
			}
			p.done = true
			return nil
		case "up", "ctrl+k", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
			return nil
		case "down", "ctrl+j", "ctrl+n":
			if p.cursor < len(p.matches)-1 {
				p.cursor++
			}
			return nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.matches = search.RankGenres(p.input.Value(), p.genres)
		p.cursor = 0
	}
	return cmd
}

// View renders the modal
func (p *GenrePicker) View() string {
	width := max(p.width, 24)

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Genres"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.matches) == 0 {
		b.WriteString(styles.DimStyle.Render("No matches"))
	}
	for i, g := range p.matches {
		marker := "  "
		markerFg := styles.DimGray
		if g == p.current {
			marker = "● "
			markerFg = styles.Accent
		}
		parts := []styles.RowPart{
			{Text: marker, Foreground: &markerFg},
			{Text: domain.GenreTitle(g)},
		}
		b.WriteString(styles.RenderListRow(parts, i == p.cursor, width-4))
		if i < len(p.matches)-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Accent).
		Padding(0, 1).
		Width(width).
		Render(b.String())
}
