package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clearStatusMsg clears the status line after a short delay.
type clearStatusMsg struct{}

// statusTimeout returns a command that clears the status line after 2s.
func statusTimeout() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// chip is one entry of the filter bar.
type chip struct {
	Label  string
	Active bool
}

// renderChips renders filter options, highlighting the selected ones.
func renderChips(chips []chip) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	parts := make([]string, len(chips))
	for i, c := range chips {
		if c.Active {
			parts[i] = StyleActive.Render("[" + c.Label + "]")
		} else {
			parts[i] = dimStyle.Render(c.Label)
		}
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}
