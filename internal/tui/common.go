package tui

import "github.com/charmbracelet/lipgloss"

// Color palette matching the fatih/color output of the CLI commands.
var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}
	ColorCyan   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorWhite  = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
	ColorOrange = lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FF8700"}
	ColorPink   = lipgloss.AdaptiveColor{Light: "#D7005F", Dark: "#FF5F87"}
)

// Reusable styles
var (
	StyleNormal = lipgloss.NewStyle().Foreground(ColorWhite)

	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	// StyleFavourite marks books on the favourites list.
	StyleFavourite = lipgloss.NewStyle().Foreground(ColorPink)

	// StyleReading marks books on the reading list.
	StyleReading = lipgloss.NewStyle().Foreground(ColorGreen)

	StyleTag = lipgloss.NewStyle().Foreground(ColorCyan)

	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	// StyleActive is for selected filter chips.
	StyleActive = lipgloss.NewStyle().
			Foreground(ColorOrange).
			Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Foreground(ColorGray).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)
)
