package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/filter"
	"github.com/blackwell-systems/readshelf/internal/shelf"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	// detailsMinWidth is the terminal width below which the details pane is hidden.
	detailsMinWidth = 100
	detailsWidth    = 38
	// chromeHeight covers the search line, two chip rows, status and help.
	chromeHeight = 6
)

func (m *BrowserModel) showDetails() bool {
	return m.width >= detailsMinWidth
}

func (m *BrowserModel) resize() {
	listWidth := m.width
	if m.showDetails() {
		listWidth -= detailsWidth + 2
	}
	h := m.height - chromeHeight
	if h < 4 {
		h = 4
	}
	m.list.SetSize(listWidth, h)
	m.search.Width = max(listWidth-len(m.search.Prompt)-2, 10)
	m.help.Width = m.width
}

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	state := m.opts.Pipeline.State().Get()

	var b strings.Builder
	if m.searching || state.Search != "" {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(StyleHelp.Render("press / to search"))
	}
	b.WriteString("\n")
	b.WriteString(moodBar(state) + "\n")
	b.WriteString(formatSortBar(state) + "\n")

	body := m.list.View()
	if len(m.feed.books) == 0 {
		body = StyleHelp.Render("No books match. Press c to clear the filters.")
	}
	if m.showDetails() {
		if book, ok := m.selectedBook(); ok {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", renderDetails(book, m.feed.shelf, detailsWidth))
		}
	}
	b.WriteString(body + "\n")

	if m.status != "" {
		b.WriteString(StyleActive.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func moodBar(s filter.State) string {
	chips := make([]chip, len(catalog.Moods))
	for i, mood := range catalog.Moods {
		chips[i] = chip{
			Label:  fmt.Sprintf("%d %s", i+1, mood),
			Active: slices.Contains(s.Moods, mood),
		}
	}
	return renderChips(chips)
}

func formatSortBar(s filter.State) string {
	formats := make([]chip, len(catalog.Formats))
	for i, f := range catalog.Formats {
		formats[i] = chip{Label: string(f), Active: slices.Contains(s.Formats, f)}
	}
	sorts := make([]chip, len(filter.Sorts))
	for i, so := range filter.Sorts {
		sorts[i] = chip{Label: string(so), Active: so == s.Sort}
	}
	return renderChips(formats) + "   " + StyleHelp.Render("sort:") + " " + renderChips(sorts)
}

// renderDetails renders the side pane for the highlighted book.
func renderDetails(b catalog.Book, s shelf.Shelf, width int) string {
	inner := width - 4

	var lines []string
	lines = append(lines, StyleHighlight.Render(xansi.Truncate(b.Title, inner, "…")))
	lines = append(lines, StyleHelp.Render("by "+xansi.Truncate(b.Author, inner-3, "…")))
	lines = append(lines, "")
	lines = append(lines, StyleTag.Render(strings.Join(b.Tags, ", ")))
	lines = append(lines, StyleNormal.Render(fmt.Sprintf("%s, %s", b.Format, pagesLabel(b))))
	lines = append(lines, "")
	lines = append(lines, StyleNormal.Render(xansi.Wordwrap(b.Summary, inner, " ")))

	var onShelf []string
	if shelf.IsFavourite(b.ID, s) {
		onShelf = append(onShelf, StyleFavourite.Render("♥ favourite"))
	}
	if shelf.IsReading(b.ID, s) {
		onShelf = append(onShelf, StyleReading.Render("▶ reading"))
	}
	if shelf.IsFinished(b.ID, s) {
		onShelf = append(onShelf, StyleReading.Render("✓ finished"))
	}
	if len(onShelf) > 0 {
		lines = append(lines, "", strings.Join(onShelf, "  "))
	}
	if len(b.Prompts) > 0 {
		lines = append(lines, "", StyleHelp.Render(fmt.Sprintf("%d reflection prompt(s) when finished", len(b.Prompts))))
	}

	return StyleBorder.Width(width - 2).Render(strings.Join(lines, "\n"))
}
