package tui

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/filter"
	"github.com/blackwell-systems/readshelf/internal/reactive"
	"github.com/blackwell-systems/readshelf/internal/shelf"
	"github.com/blackwell-systems/readshelf/internal/tui/delegate"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Pipeline is the filter state holder the browser drives.
type Pipeline interface {
	Results() reactive.Readable[[]catalog.Book]
	State() reactive.Readable[filter.State]
	SetSearch(q string)
	ToggleMood(mood string) error
	ToggleFormat(f catalog.Format) error
	SetSort(s filter.Sort) error
	ClearFilters()
}

// Shelves is the shelf manager the browser reads and mutates.
type Shelves interface {
	Shelf() reactive.Readable[shelf.Shelf]
	AddToFavourites(bookID, studentID string) shelf.Shelf
	RemoveFromFavourites(bookID, studentID string) shelf.Shelf
	AddToReading(bookID, studentID string) shelf.Shelf
	RemoveFromReading(bookID, studentID string) shelf.Shelf
}

// BrowserAction represents an action requested from the browser
type BrowserAction string

const (
	ActionNone        BrowserAction = ""
	ActionShowDetails BrowserAction = "details"
	ActionOpen        BrowserAction = "open"
)

// BrowserResult holds the result of a browser session
type BrowserResult struct {
	Action BrowserAction
	Book   *catalog.Book
}

// BrowserOptions wires the browser to the rest of the program. Shelves may
// be nil and StudentID empty, in which case the shelf keys only show a hint.
type BrowserOptions struct {
	Pipeline  Pipeline
	Shelves   Shelves
	StudentID string
	Rand      *rand.Rand
}

// feed receives pushed snapshots from the pipeline and the shelf. It is
// shared by every copy of the model.
type feed struct {
	books []catalog.Book
	shelf shelf.Shelf
	stops []func()
}

func (f *feed) stop() {
	for _, s := range f.stops {
		s()
	}
	f.stops = nil
}

// BrowserModel is the bubbletea model of the catalog browser.
type BrowserModel struct {
	opts      BrowserOptions
	feed      *feed
	list      list.Model
	search    textinput.Model
	searching bool
	help      help.Model
	keys      browserKeys
	status    string
	width     int
	height    int
	quitting  bool
	action    BrowserAction
	selected  *catalog.Book
}

// NewBrowser builds the model and subscribes it to the pipeline results and
// the shelf.
func NewBrowser(opts BrowserOptions) BrowserModel {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f := &feed{shelf: shelf.Empty()}
	f.stops = append(f.stops, opts.Pipeline.Results().Subscribe(func(b []catalog.Book) { f.books = b }))
	if opts.Shelves != nil {
		f.stops = append(f.stops, opts.Shelves.Shelf().Subscribe(func(s shelf.Shelf) { f.shelf = s }))
	}

	l := list.New(itemsFor(f.books, f.shelf), delegate.NewWithHeight(renderBookItem, 2, 1), 0, 0)
	l.Title = "Library"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = StyleHeader
	l.Styles.PaginationStyle = StyleHelp

	ti := textinput.New()
	ti.Prompt = "search: "
	ti.Placeholder = "title, author, summary or mood"
	ti.SetValue(opts.Pipeline.State().Get().Search)

	return BrowserModel{
		opts:   opts,
		feed:   f,
		list:   l,
		search: ti,
		help:   help.New(),
		keys:   newBrowserKeys(),
	}
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// refresh rebuilds the rows from the latest pushed snapshots.
func (m *BrowserModel) refresh() tea.Cmd {
	return m.list.SetItems(itemsFor(m.feed.books, m.feed.shelf))
}

func (m *BrowserModel) setStatus(format string, a ...any) tea.Cmd {
	m.status = fmt.Sprintf(format, a...)
	return statusTimeout()
}

func (m BrowserModel) selectedBook() (catalog.Book, bool) {
	item, ok := m.list.SelectedItem().(BookItem)
	if !ok {
		return catalog.Book{}, false
	}
	return item.Book, true
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m.quit(ActionNone)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.opts.Pipeline.SetSearch(m.search.Value())
	return m, tea.Batch(cmd, m.refresh())
}

func (m BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		model, cmd := m.quit(ActionNone)
		return model, cmd, true

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus(), true

	case key.Matches(msg, m.keys.Mood):
		i := int(msg.String()[0] - '1')
		if i >= 0 && i < len(catalog.Moods) {
			_ = m.opts.Pipeline.ToggleMood(catalog.Moods[i])
		}
		return m, m.refresh(), true

	case key.Matches(msg, m.keys.Sort):
		_ = m.opts.Pipeline.SetSort(nextSort(m.opts.Pipeline.State().Get().Sort))
		return m, m.refresh(), true

	case key.Matches(msg, m.keys.Format):
		m.cycleFormat()
		return m, m.refresh(), true

	case key.Matches(msg, m.keys.Clear):
		m.opts.Pipeline.ClearFilters()
		m.search.SetValue("")
		return m, m.refresh(), true

	case key.Matches(msg, m.keys.Surprise):
		return m, m.surprise(), true

	case key.Matches(msg, m.keys.Favourite):
		return m, m.toggleShelf(true), true

	case key.Matches(msg, m.keys.Reading):
		return m, m.toggleShelf(false), true

	case key.Matches(msg, m.keys.Details):
		model, cmd := m.quit(ActionShowDetails)
		return model, cmd, true

	case key.Matches(msg, m.keys.Open):
		model, cmd := m.quit(ActionOpen)
		return model, cmd, true
	}
	return m, nil, false
}

func (m BrowserModel) quit(action BrowserAction) (tea.Model, tea.Cmd) {
	if action != ActionNone {
		b, ok := m.selectedBook()
		if !ok {
			return m, nil
		}
		m.selected = &b
	}
	m.action = action
	m.quitting = true
	m.feed.stop()
	return m, tea.Quit
}

// cycleFormat steps through no format, then each format in turn.
func (m *BrowserModel) cycleFormat() {
	selected := m.opts.Pipeline.State().Get().Formats
	next := catalog.Formats[0]
	if len(selected) > 0 {
		cur := selected[len(selected)-1]
		for _, f := range selected {
			_ = m.opts.Pipeline.ToggleFormat(f)
		}
		i := slices.Index(catalog.Formats, cur)
		if i+1 >= len(catalog.Formats) {
			return
		}
		next = catalog.Formats[i+1]
	}
	_ = m.opts.Pipeline.ToggleFormat(next)
}

func nextSort(cur filter.Sort) filter.Sort {
	i := slices.Index(filter.Sorts, cur)
	return filter.Sorts[(i+1)%len(filter.Sorts)]
}

func (m *BrowserModel) surprise() tea.Cmd {
	m.opts.Pipeline.ClearFilters()
	m.search.SetValue("")
	cmd := m.refresh()

	pick := catalog.Random(m.feed.books, m.opts.Rand)
	if pick == nil {
		return cmd
	}
	for i, b := range m.feed.books {
		if b.ID == pick.ID {
			m.list.Select(i)
			break
		}
	}
	return tea.Batch(cmd, m.setStatus("How about %q?", pick.Title))
}

func (m *BrowserModel) toggleShelf(favourite bool) tea.Cmd {
	b, ok := m.selectedBook()
	if !ok {
		return nil
	}
	if m.opts.Shelves == nil || m.opts.StudentID == "" {
		return m.setStatus("Log in with 'readshelf login <name>' to use your shelf")
	}

	s, id, sid := m.feed.shelf, b.ID, m.opts.StudentID
	var status string
	switch {
	case favourite && shelf.IsFavourite(id, s):
		m.opts.Shelves.RemoveFromFavourites(id, sid)
		status = "Removed from favourites"
	case favourite:
		m.opts.Shelves.AddToFavourites(id, sid)
		status = "Added to favourites"
	case shelf.IsReading(id, s):
		m.opts.Shelves.RemoveFromReading(id, sid)
		status = "Removed from reading list"
	default:
		m.opts.Shelves.AddToReading(id, sid)
		status = "Added to reading list"
	}
	return tea.Batch(m.refresh(), m.setStatus("%s: %s", status, b.Title))
}

// RunBrowser launches the interactive catalog browser.
func RunBrowser(opts BrowserOptions) (*BrowserResult, error) {
	p := tea.NewProgram(NewBrowser(opts), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running TUI: %w", err)
	}

	if fm, ok := finalModel.(BrowserModel); ok {
		fm.feed.stop()
		return &BrowserResult{Action: fm.action, Book: fm.selected}, nil
	}
	return &BrowserResult{Action: ActionNone}, nil
}
