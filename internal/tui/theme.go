package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette
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
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

// Semantic aliases.
const (
	colorAccent  = colorPink
	colorBrand   = colorMauve
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
	colorMuted   = colorOverlay1
)

// modeColor distinguishes the two search modes in the header and portal.
func modeColor(mode string) lipgloss.Color {
	if mode == "CRYPTO" {
		return colorPeach
	}
	return colorSky
}

// sentimentColor maps a [-1, 1] sentiment to red / neutral / green.
func sentimentColor(v float64) lipgloss.Color {
	switch {
	case v > 0.2:
		return colorSuccess
	case v < -0.2:
		return colorError
	default:
		return colorSubtext0
	}
}

// conflictColor grades a [0, 1] intensity.
func conflictColor(v float64) lipgloss.Color {
	switch {
	case v >= 0.7:
		return colorError
	case v >= 0.4:
		return colorWarning
	default:
		return colorSuccess
	}
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)

	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	headerAppStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Background(colorMantle).
			Bold(true)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	activeItemStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorSurface0).
			Bold(true)

	inactiveItemStyle = lipgloss.NewStyle().Foreground(colorOverlay1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle).
			Padding(0, 2)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	labelStyle       = lipgloss.NewStyle().Foreground(colorSubtext0)
	valueStyle       = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle       = lipgloss.NewStyle().Foreground(colorError)
	warnStyle        = lipgloss.NewStyle().Foreground(colorWarning)
	infoStyle        = lipgloss.NewStyle().Foreground(colorInfo)
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorSubtext0).Bold(true)
	logLineStyle     = lipgloss.NewStyle().Foreground(colorGreen)

	chipStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface1).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Background(colorAccent).
			Bold(true).
			Padding(0, 2)

	buttonBusyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface2).
			Padding(0, 2)
)
