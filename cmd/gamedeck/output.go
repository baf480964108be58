package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/mmcdole/gamedeck/internal/detail"
	"github.com/mmcdole/gamedeck/internal/domain"
	"github.com/mmcdole/gamedeck/internal/tui/styles"
)

var listHeaders = []string{"ID", "NAME", "RATING", "CRITIC", "RELEASED"}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// itemRow returns the plain cells for one listing row
func itemRow(it domain.Item) []string {
	critic := "-"
	if it.HasCriticScore() {
		critic = strconv.Itoa(*it.CriticScore)
	}
	released := it.Released
	if released == "" {
		released = "-"
	}
	return []string{strconv.Itoa(it.ID), it.Name, it.FormattedRating(), critic, released}
}

// printItems writes items as a styled table on a terminal and as
// tab-separated lines otherwise
func printItems(w io.Writer, items []domain.Item, tty bool) {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = itemRow(it)
	}

	if !tty {
		fmt.Fprintln(w, strings.Join(listHeaders, "\t"))
		for _, r := range rows {
			fmt.Fprintln(w, strings.Join(r, "\t"))
		}
		return
	}

	headerStyle := styles.AccentStyle.Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.DimStyle).
		Headers(listHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			// Critic score column gets its band color
			if col == 3 && row >= 0 && row < len(items) && items[row].HasCriticScore() {
				return cellStyle.Foreground(styles.CriticColor(*items[row].CriticScore))
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
}

func printDetail(w io.Writer, s detail.Success) {
	d := s.Detail

	fmt.Fprintf(w, "%s (#%d)\n", d.Name, d.ID)
	fmt.Fprintf(w, "Rating:   %s\n", d.FormattedRating())
	if d.HasCriticScore() {
		fmt.Fprintf(w, "Critic:   %d\n", *d.CriticScore)
	}
	fmt.Fprintf(w, "Released: %s\n", d.ReleaseLabel())
	if d.Playtime > 0 {
		fmt.Fprintf(w, "Playtime: %d hours\n", d.Playtime)
	}
	if d.Website != "" {
		fmt.Fprintf(w, "Website:  %s\n", d.Website)
	}
	if d.Description != "" {
		fmt.Fprintf(w, "\n%s\n", d.Description)
	}

	fmt.Fprintf(w, "\nScreenshots (%d)\n", len(s.Screenshots))
	for _, shot := range s.Screenshots {
		fmt.Fprintf(w, "  %s\n", shot.ImageURL)
	}

	fmt.Fprintf(w, "\nTrailers (%d)\n", len(s.Trailers))
	for _, tr := range s.Trailers {
		fmt.Fprintf(w, "  %s  %s\n", tr.Name, tr.VideoURL)
	}
}

func joinComma(xs []string) string {
	return strings.Join(xs, ", ")
}
