package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/shelf"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// BookItem is one row of the browser.
type BookItem struct {
	Book      catalog.Book
	Favourite bool
	Reading   bool
	Finished  bool
}

// FilterValue implements list.Item. The browser drives search through the
// filter pipeline, so the list's own filter is disabled.
func (b BookItem) FilterValue() string {
	return b.Book.Title
}

// itemsFor pairs each book with its shelf membership.
func itemsFor(books []catalog.Book, s shelf.Shelf) []list.Item {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = BookItem{
			Book:      b,
			Favourite: shelf.IsFavourite(b.ID, s),
			Reading:   shelf.IsReading(b.ID, s),
			Finished:  shelf.IsFinished(b.ID, s),
		}
	}
	return items
}

// Column width constraints
const (
	minTitleWidth  = 12
	maxTitleWidth  = 40
	minAuthorWidth = 8
	maxAuthorWidth = 22
	marksWidth     = 5
	columnGap      = 1
)

// computeColumnWidths splits the first row line between title and author.
func computeColumnWidths(totalWidth int) (titleW, authorW int) {
	usable := totalWidth - 2 - marksWidth - columnGap*2
	if usable < minTitleWidth+minAuthorWidth {
		return minTitleWidth, minAuthorWidth
	}
	titleW = min(usable*60/100, maxTitleWidth)
	authorW = min(usable-titleW, maxAuthorWidth)
	return max(titleW, minTitleWidth), max(authorW, minAuthorWidth)
}

// padOrTruncate fits s to exactly width cells.
func padOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = xansi.Truncate(s, width, "…")
	if w := xansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// marks renders the shelf indicators: ♥ favourite, ▶ reading, ✓ finished.
func marks(b BookItem) string {
	var s strings.Builder
	if b.Favourite {
		s.WriteString(StyleFavourite.Render("♥"))
	} else {
		s.WriteString(" ")
	}
	if b.Reading {
		s.WriteString(StyleReading.Render("▶"))
	} else {
		s.WriteString(" ")
	}
	if b.Finished {
		s.WriteString(StyleReading.Render("✓"))
	} else {
		s.WriteString(" ")
	}
	return s.String()
}

func pagesLabel(b catalog.Book) string {
	if n, ok := b.PageCount(); ok {
		return fmt.Sprintf("%d pages", n)
	}
	return "pages unknown"
}

// renderBookItem renders a two-line row: title, author and shelf marks,
// then moods, format and length.
func renderBookItem(w io.Writer, m list.Model, index int, item list.Item) {
	bookItem, ok := item.(BookItem)
	if !ok {
		return
	}

	listWidth := m.Width()
	if listWidth <= 0 {
		listWidth = 80
	}
	titleW, authorW := computeColumnWidths(listWidth)
	gap := strings.Repeat(" ", columnGap)

	isCursor := index == m.Index()
	prefix := "  "
	if isCursor {
		prefix = lipgloss.NewStyle().Foreground(ColorOrange).Render("›") + " "
	}

	titleCol := padOrTruncate(bookItem.Book.Title, titleW)
	authorCol := padOrTruncate(bookItem.Book.Author, authorW)

	detail := strings.Join(bookItem.Book.Tags, " · ") + "  " +
		string(bookItem.Book.Format) + ", " + pagesLabel(bookItem.Book)
	detailCol := xansi.Truncate(detail, listWidth-4, "…")

	var first, second string
	if isCursor {
		first = prefix + StyleHighlight.Render(titleCol) + gap +
			lipgloss.NewStyle().Foreground(ColorOrange).Faint(true).Render(authorCol) + gap + marks(bookItem)
		second = "    " + StyleTag.Render(detailCol)
	} else {
		first = prefix + StyleNormal.Render(titleCol) + gap + StyleHelp.Render(authorCol) + gap + marks(bookItem)
		second = "    " + StyleHelp.Render(detailCol)
	}

	_, _ = fmt.Fprint(w, first+"\n"+second)
}
