package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(72)
	textStyle   = lipgloss.NewStyle().Bold(true)
	authorStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))
	metaStyle   = lipgloss.NewStyle().Faint(true)
	favStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// renderQuote draws one quote as a card.
func renderQuote(r domain.QuoteRecord) string {
	title := textStyle.Render(`"` + r.Text + `"`)
	if r.Fav {
		title = favStyle.Render("★ ") + title
	}

	lines := []string{title}

	if r.Author != "" {
		lines = append(lines, authorStyle.Render("— "+r.Author))
	}

	if len(r.Tags) > 0 {
		tags := make([]string, len(r.Tags))
		for i, t := range r.Tags {
			tags[i] = "#" + t
		}

		lines = append(lines, tagStyle.Render(strings.Join(tags, " ")))
	}

	created := time.UnixMilli(r.Created).Format(time.DateOnly)
	lines = append(lines, metaStyle.Render(r.ID+" · "+created))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderQuotes writes every record followed by a count line.
func renderQuotes(w io.Writer, records []domain.QuoteRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, noticeStyle.Render("No quotes found."))
		return
	}

	for _, r := range records {
		fmt.Fprintln(w, renderQuote(r))
	}

	fmt.Fprintln(w, noticeStyle.Render(fmt.Sprintf("%d quote(s)", len(records))))
}

// renderStats writes the stats panel.
func renderStats(w io.Writer, s domain.Stats) {
	row := func(label string, value any) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			headerStyle.Width(11).Render(label),
			fmt.Sprint(value))
	}

	tags := "none"
	if len(s.Tags) > 0 {
		tags = strings.Join(s.Tags, ", ")
	}

	fmt.Fprintln(w, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		row("Quotes", s.Count),
		row("Favorites", s.Favorites),
		row("Tags", tags),
	)))
}
