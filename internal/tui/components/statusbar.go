package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/FelipeSilva10/longboard-IDE/internal/tui/colors"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/styles"
)

// StatusBar is the single bottom line of the monitor screen
type StatusBar struct {
	portPath string
	board    string
	baudRate int
	state    styles.State
	message  string
	lines    int
	width    int
}

func NewStatusBar(portPath, board string, baudRate int) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		board:    board,
		baudRate: baudRate,
		state:    styles.StateStopped,
		message:  "Starting...",
	}
}

func (sb *StatusBar) SetWidth(width int) { sb.width = width }

func (sb *StatusBar) SetLineCount(n int) { sb.lines = n }

func (sb *StatusBar) State() styles.State { return sb.state }

func (sb *StatusBar) Message() string { return sb.message }

func (sb *StatusBar) Set(state styles.State, message string) {
	sb.state = state
	sb.message = message
}

func (sb *StatusBar) View(clock string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	badge := styles.Badge(sb.state)

	port := lipgloss.NewStyle().
		Foreground(colors.Accent).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	msgColor := colors.Subtext1
	if sb.state == styles.StateError {
		msgColor = colors.Failed
	}
	message := lipgloss.NewStyle().
		Foreground(msgColor).
		Padding(0, 1).
		Render(sb.message)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	details := fmt.Sprintf("⚡ %d baud", sb.baudRate)
	if sb.board != "" {
		details = fmt.Sprintf("%s  %s", sb.board, details)
	}
	info := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("%s  %d lines", details, sb.lines))

	clockView := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(clock)

	left := lipgloss.JoinHorizontal(lipgloss.Left, badge, port, divider, message)
	right := lipgloss.JoinHorizontal(lipgloss.Left, info, divider, clockView)

	spacerWidth := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, left, spacer, right))
}
