package tui

import "github.com/charmbracelet/bubbles/key"

// browserKeys defines the browser's keyboard shortcuts.
type browserKeys struct {
	Quit      key.Binding
	Details   key.Binding
	Open      key.Binding
	Search    key.Binding
	Favourite key.Binding
	Reading   key.Binding
	Sort      key.Binding
	Format    key.Binding
	Mood      key.Binding
	Clear     key.Binding
	Surprise  key.Binding
}

func newBrowserKeys() browserKeys {
	return browserKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Favourite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favourite"),
		),
		Reading: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reading"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Format: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "format"),
		),
		Mood: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "moods"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Surprise: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "surprise me"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Mood, k.Sort, k.Favourite, k.Reading, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k browserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Mood, k.Format, k.Sort, k.Clear},
		{k.Favourite, k.Reading, k.Details, k.Open, k.Surprise, k.Quit},
	}
}
