package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/gamedeck/internal/browse"
	"github.com/mmcdole/gamedeck/internal/detail"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/search"
	"github.com/mmcdole/gamedeck/internal/tui/styles"
)

const suggestionLimit = 3

// View renders the current screen
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch m.screen {
	case ScreenHelp:
		return m.renderHelp()
	case ScreenDetail:
		body = m.renderDetail()
	default:
		body = m.renderBrowse()
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
	)
	view = lipgloss.NewStyle().Height(m.height - 1).MaxHeight(m.height - 1).Render(view)
	view += "\n" + m.renderFooter()

	if m.picker != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View())
	}
	return view
}

func (m Model) renderHeader() string {
	title := styles.AccentStyle.Bold(true).Render("gamedeck")
	genre := styles.SubtitleStyle.Render(domain.GenreTitle(m.engine.Genre()))

	count := ""
	if s, ok := m.browseState.(browse.Success); ok {
		if search.IsBlank(s.SearchQuery) {
			count = fmt.Sprintf("%d games", len(s.AllItems))
		} else {
			count = fmt.Sprintf("%d of %d games", len(s.FilteredItems), len(s.AllItems))
		}
	}

	line := title + styles.DimStyle.Render(" · ") + genre
	if count != "" {
		line += styles.DimStyle.Render(" · " + count)
	}
	return styles.HeaderStyle.Render(line)
}

func (m Model) renderSearchBar() string {
	if m.searchInput.Focused() || m.searchInput.Value() != "" {
		return m.searchInput.View()
	}
	return styles.DimStyle.Render("/ search")
}

func (m Model) renderBrowse() string {
	var content string

	switch s := m.browseState.(type) {
	case browse.InitialLoading:
		content = m.renderLoading("Loading games...")
	case browse.GenreLoading:
		content = m.renderLoading(fmt.Sprintf("Loading %s games...", domain.GenreTitle(s.Genre)))
	case browse.Error:
		content = m.renderErrorState(s.Message)
	case browse.Empty:
		content = m.renderEmpty(s)
	case browse.Success:
		content = m.list.View() + "\n" + m.renderPaginationFooter(s)
	}

	return styles.BodyStyle.Render(m.renderSearchBar() + "\n" + content)
}

func (m Model) renderLoading(text string) string {
	return styles.EmptyStateStyle.Render(m.spinner.View() + " " + styles.DimStyle.Render(text))
}

func (m Model) renderErrorState(message string) string {
	lines := []string{
		styles.ErrorStyle.Bold(true).Render("Something went wrong"),
		styles.ErrorStyle.Render(wordWrap(message, max(m.width-12, 20))),
		"",
		styles.HelpKeyStyle.Render("r") + styles.HelpDescStyle.Render(" retry"),
	}
	return styles.EmptyStateStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderEmpty(s browse.Empty) string {
	var lines []string

	switch s.Reason {
	case browse.NoSearchResults:
		lines = append(lines,
			styles.TitleStyle.Render("No Results Found"),
			styles.DimStyle.Render("Try a different search term"),
		)
		if suggestions := search.Suggest(s.SearchQuery, itemNames(m.lastItems), suggestionLimit); len(suggestions) > 0 {
			lines = append(lines, "",
				styles.SubtitleStyle.Render("Did you mean: ")+styles.AccentStyle.Render(strings.Join(suggestions, ", ")),
			)
		}
		if len(m.lastItems) == 0 {
			lines = append(lines, "", styles.HelpKeyStyle.Render("r")+styles.HelpDescStyle.Render(" retry"))
		}
	default:
		lines = append(lines,
			styles.TitleStyle.Render("No Games Found"),
			styles.DimStyle.Render("No games available for this genre"),
			"",
			styles.HelpKeyStyle.Render("r")+styles.HelpDescStyle.Render(" retry"),
		)
	}

	return styles.EmptyStateStyle.Render(strings.Join(lines, "\n"))
}

// renderPaginationFooter shows the next-page status under the list
func (m Model) renderPaginationFooter(s browse.Success) string {
	switch {
	case s.IsFetchingNextPage:
		return m.spinner.View() + styles.DimStyle.Render(" Loading more...")
	case s.PaginationError != "":
		return styles.ErrorStyle.Render(s.PaginationError) +
			styles.DimStyle.Render("  ") +
			styles.HelpKeyStyle.Render("r") + styles.HelpDescStyle.Render(" retry · ") +
			styles.HelpKeyStyle.Render("x") + styles.HelpDescStyle.Render(" dismiss")
	case !s.HasMore:
		return styles.DimStyle.Render("End of list")
	default:
		return " "
	}
}

func (m Model) renderDetail() string {
	width := max(m.width-4, 20)

	var content string
	switch s := m.detailState.(type) {
	case nil, detail.Loading:
		content = m.renderLoading("Loading game details...")
	case detail.Error:
		content = m.renderErrorState(s.Message)
	case detail.Success:
		content = m.renderDetailSuccess(s, width)
	}

	lines := strings.Split(content, "\n")
	visible := max(m.height-ChromeHeight, 1)
	offset := min(m.detailScroll, max(len(lines)-visible, 0))
	end := min(offset+visible, len(lines))

	return styles.BodyStyle.Render(strings.Join(lines[offset:end], "\n"))
}

func (m Model) renderDetailSuccess(s detail.Success, width int) string {
	d := s.Detail
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(d.Name))
	b.WriteString("\n\n")

	meta := styles.RenderStars(d.Rating) + " " + styles.SubtitleStyle.Render(d.FormattedRating())
	if d.HasCriticScore() {
		meta += "  " + styles.CriticScoreStyle(*d.CriticScore).Render(fmt.Sprintf("%d", *d.CriticScore))
	}
	b.WriteString(meta)
	b.WriteString("\n")

	b.WriteString(styles.DimStyle.Render("Released: ") + d.ReleaseLabel())
	b.WriteString("\n")
	if d.Playtime > 0 {
		b.WriteString(styles.DimStyle.Render("Playtime: ") + fmt.Sprintf("%d hours", d.Playtime))
		b.WriteString("\n")
	}
	if d.Website != "" {
		b.WriteString(styles.DimStyle.Render("Website:  ") + styles.AccentStyle.Render(d.Website))
		b.WriteString("\n")
	}

	if d.Description != "" {
		b.WriteString("\n")
		b.WriteString(wordWrap(d.Description, width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Bold(true).Render("Screenshots"))
	b.WriteString("\n")
	switch {
	case s.Screenshots == nil:
		b.WriteString(m.spinner.View() + styles.DimStyle.Render(" Loading..."))
		b.WriteString("\n")
	case len(s.Screenshots) == 0:
		b.WriteString(styles.DimStyle.Render("None"))
		b.WriteString("\n")
	default:
		for _, shot := range s.Screenshots {
			b.WriteString(styles.DimStyle.Render(styles.Truncate(shot.ImageURL, width)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Bold(true).Render("Trailers"))
	b.WriteString("\n")
	switch {
	case s.Trailers == nil:
		b.WriteString(m.spinner.View() + styles.DimStyle.Render(" Loading..."))
	case len(s.Trailers) == 0:
		b.WriteString(styles.DimStyle.Render("None"))
	default:
		names := make([]string, len(s.Trailers))
		for i, tr := range s.Trailers {
			names[i] = "▶ " + styles.Truncate(tr.Name, width-2)
		}
		b.WriteString(strings.Join(names, "\n"))
	}

	return b.String()
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style := styles.SubtitleStyle
		if m.statusIsErr {
			style = styles.ErrorStyle
		}
		return styles.FooterStyle.Render(style.Render(styles.Truncate(m.statusMsg, max(m.width-2, 10))))
	}

	bindings := m.keys.BrowseHelp()
	if m.screen == ScreenDetail {
		bindings = m.keys.DetailHelp()
	}
	return styles.FooterStyle.Render(renderBindings(bindings))
}

func renderBindings(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, styles.DimStyle.Render("  "))
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range m.keys.AllBindings() {
		h := binding.Help()
		b.WriteString("  " + styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10)) + styles.HelpDescStyle.Render(h.Desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Accent).
			Padding(1, 2).
			Render(b.String()),
	)
}

func itemNames(items []domain.Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

// wordWrap wraps text to the specified width, keeping paragraph breaks
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	paragraphs := strings.Split(text, "\n")
	wrapped := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		wrapped = append(wrapped, wrapLine(p, width))
	}
	return strings.Join(wrapped, "\n")
}

func wrapLine(text string, width int) string {
	var result strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
