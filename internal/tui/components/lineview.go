package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultScrollback is how many lines the view keeps before dropping the oldest
const DefaultScrollback = 5000

// LineView is a scrolling viewport over the monitor's lines. It follows the
// newest line until the user scrolls up.
type LineView struct {
	viewport   viewport.Model
	formatter  *LineFormatter
	lines      []Line
	scrollback int
	follow     bool
}

func NewLineView(width, height int) *LineView {
	return &LineView{
		viewport:   viewport.New(width, height),
		formatter:  NewLineFormatter(true),
		scrollback: DefaultScrollback,
		follow:     true,
	}
}

func (v *LineView) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = height
	v.refresh()
}

func (v *LineView) SetScrollback(n int) {
	if n > 0 {
		v.scrollback = n
	}
}

func (v *LineView) Width() int { return v.viewport.Width }

func (v *LineView) Lines() []Line { return v.lines }

func (v *LineView) Following() bool { return v.follow }

func (v *LineView) Append(l Line) {
	v.lines = append(v.lines, l)
	if over := len(v.lines) - v.scrollback; over > 0 {
		v.lines = append([]Line(nil), v.lines[over:]...)
	}
	v.refresh()
}

func (v *LineView) Clear() {
	v.lines = nil
	v.follow = true
	v.viewport.SetContent("")
}

func (v *LineView) ToggleTimestamps() {
	v.formatter.ToggleTimestamps()
	v.refresh()
}

func (v *LineView) ShowTimestamps() bool { return v.formatter.ShowTimestamps }

func (v *LineView) ScrollUp() {
	v.follow = false
	v.viewport.LineUp(1)
}

func (v *LineView) ScrollDown() {
	v.viewport.LineDown(1)
	v.follow = v.viewport.AtBottom()
}

func (v *LineView) GotoTop() {
	v.follow = false
	v.viewport.GotoTop()
}

func (v *LineView) GotoBottom() {
	v.follow = true
	v.viewport.GotoBottom()
}

func (v *LineView) refresh() {
	v.viewport.SetContent(strings.Join(v.formatter.FormatAll(v.lines), "\n"))
	if v.follow {
		v.viewport.GotoBottom()
	}
}

// Update forwards only resize and mouse messages so the viewport does not
// consume the screen's key bindings.
func (v *LineView) Update(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		v.follow = v.viewport.AtBottom()
		return cmd
	default:
		return nil
	}
}

func (v *LineView) View() string {
	return v.viewport.View()
}
