package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/jaskcalc/internal/calc"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

// ---------------------------------------------------------------------------
// Semantic color aliases
// ---------------------------------------------------------------------------

const (
	colorAccent   = colorPink
	colorFocus    = colorLavender
	colorSuccess  = colorGreen
	colorError    = colorRed
	colorOperator = colorPeach
	colorControl  = colorMauve
	colorEquals   = colorTeal
	colorInfo     = colorBlue
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	displayStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1)
	previousStyle = lipgloss.NewStyle().Foreground(colorOverlay1).Align(lipgloss.Right)
	currentStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText).Align(lipgloss.Right)
	tapeStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	tapeHeadStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	tapeLineStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	statusStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorFocus)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorOverlay1)
	commandStyle  = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 1)
	matchStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)
	matchSelStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
)

// buttonColor picks the border color for a keypad button by what it does.
func buttonColor(b button) lipgloss.Color {
	switch b.input.Kind {
	case calc.InputOperator:
		return colorOperator
	case calc.InputCompute:
		return colorEquals
	case calc.InputDelete, calc.InputClear:
		return colorControl
	}
	return colorSurface1
}
