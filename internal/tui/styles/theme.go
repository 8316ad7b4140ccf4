package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/FelipeSilva10/longboard-IDE/internal/tui/colors"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Accent).
			Background(colors.Surface0).
			Padding(0, 1)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	LineStyle = lipgloss.NewStyle().
			Foreground(colors.Text)

	ErrorLineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Failed)

	NoticeLineStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(colors.Sky)

	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(1, 2).
			Margin(1, 0)

	// Used by the ports and boards tables
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Accent)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Failed)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Monitoring)
)

// State is what the monitor screen is currently doing
type State int

const (
	StateStopped State = iota
	StateMonitoring
	StateUploading
	StateError
)

func (s State) String() string {
	switch s {
	case StateMonitoring:
		return "MONITOR"
	case StateUploading:
		return "UPLOAD"
	case StateError:
		return "ERROR"
	default:
		return "STOPPED"
	}
}

// StateColor is the badge background for s
func StateColor(s State) lipgloss.Color {
	switch s {
	case StateMonitoring:
		return colors.Monitoring
	case StateUploading:
		return colors.Uploading
	case StateError:
		return colors.Failed
	default:
		return colors.Stopped
	}
}

// Badge renders s as a status bar mode block
func Badge(s State) string {
	return lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(StateColor(s)).
		Bold(true).
		Padding(0, 1).
		Render(s.String())
}
