package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aicell-lab/zooreview/internal/artifact"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorSky      lipgloss.Color = "#89dceb"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
)

const (
	colorAccent  = colorMauve
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	tabStyle       = lipgloss.NewStyle().Foreground(colorSubtext0).Padding(0, 1)
	tabActiveStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Padding(0, 1)

	statusLineStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	errorStyle      = lipgloss.NewStyle().Foreground(colorError)
	flashStyle      = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(colorOverlay1)

	connectedBadge    = lipgloss.NewStyle().Foreground(colorSuccess)
	anonymousBadge    = lipgloss.NewStyle().Foreground(colorWarning)
	disconnectedBadge = lipgloss.NewStyle().Foreground(colorError)

	pendingBadgeStyle = lipgloss.NewStyle().
				Foreground(colorBase).
				Background(colorYellow).
				Padding(0, 1).
				Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	cardFocusStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFocus).
			Padding(0, 1)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	cursorMarker = lipgloss.NewStyle().Foreground(colorFocus).Render("▶")
)

// statusColors maps workflow labels to badge colors. Unknown labels render
// in the neutral overlay color since the label set is open.
var statusColors = map[string]lipgloss.Color{
	artifact.StatusRequestReview: colorYellow,
	artifact.StatusInReview:      colorSky,
	artifact.StatusRevision:      colorPeach,
	artifact.StatusAccepted:      colorGreen,
}

func statusBadge(status string) string {
	if status == "" {
		status = "unset"
	}
	color, ok := statusColors[status]
	if !ok {
		color = colorOverlay1
	}
	return lipgloss.NewStyle().Foreground(color).Render(status)
}
