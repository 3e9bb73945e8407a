package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/jaskcalc/internal/calc"
)

const (
	// cellWidth and cellHeight are the outer size of a one-column button,
	// borders included.
	cellWidth   = 7
	cellHeight  = 3
	keypadCols  = 4
	keypadWidth = cellWidth * keypadCols
)

type button struct {
	label string
	input calc.Input
	span  int
}

func digitButton(r rune) button {
	return button{label: string(r), input: calc.Digit(r), span: 1}
}

func opButton(op calc.Operator) button {
	return button{label: op.String(), input: calc.Operation(op), span: 1}
}

// keypad mirrors the layout of a desk calculator: clear and equals are two
// columns wide.
var keypad = [][]button{
	{{label: "AC", input: calc.ClearInput(), span: 2}, {label: "DEL", input: calc.DeleteInput(), span: 1}, opButton(calc.OpDivide)},
	{digitButton('1'), digitButton('2'), digitButton('3'), opButton(calc.OpMultiply)},
	{digitButton('4'), digitButton('5'), digitButton('6'), opButton(calc.OpAdd)},
	{digitButton('7'), digitButton('8'), digitButton('9'), opButton(calc.OpSubtract)},
	{digitButton('.'), digitButton('0'), {label: "=", input: calc.ComputeInput(), span: 2}},
}

// keypadHit returns the button under (x, y), relative to the keypad's top
// left corner.
func keypadHit(x, y int) (button, bool) {
	if x < 0 || y < 0 || x >= keypadWidth {
		return button{}, false
	}
	row := y / cellHeight
	if row >= len(keypad) {
		return button{}, false
	}
	col := x / cellWidth
	start := 0
	for _, b := range keypad[row] {
		if col >= start && col < start+b.span {
			return b, true
		}
		start += b.span
	}
	return button{}, false
}

// renderKeypad draws the keypad. The button labelled highlight, if any, is
// drawn with the focus color.
func renderKeypad(highlight string) string {
	rows := make([]string, 0, len(keypad))
	for _, row := range keypad {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			color := buttonColor(b)
			if b.label == highlight {
				color = colorFocus
			}
			labelColor := color
			if b.input.Kind == calc.InputDigit {
				labelColor = colorText
			}
			style := lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(color).
				Foreground(labelColor).
				Width(b.span*cellWidth - 2).
				Align(lipgloss.Center)
			cells = append(cells, style.Render(b.label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}
