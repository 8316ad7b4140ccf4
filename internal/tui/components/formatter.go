package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/FelipeSilva10/longboard-IDE/internal/tui/styles"
)

// LineKind separates device output from messages the tool itself prints
type LineKind int

const (
	LineData LineKind = iota
	LineError
	LineNotice
)

// Line is one entry of the monitor scrollback
type Line struct {
	Time time.Time
	Kind LineKind
	Text string
}

type LineFormatter struct {
	ShowTimestamps bool
}

func NewLineFormatter(showTimestamps bool) *LineFormatter {
	return &LineFormatter{ShowTimestamps: showTimestamps}
}

func (f *LineFormatter) ToggleTimestamps() {
	f.ShowTimestamps = !f.ShowTimestamps
}

func (f *LineFormatter) Format(l Line) string {
	var text string
	switch l.Kind {
	case LineError:
		text = styles.ErrorLineStyle.Render("✗ " + l.Text)
	case LineNotice:
		text = styles.NoticeLineStyle.Render("» " + l.Text)
	default:
		text = styles.LineStyle.Render(sanitize(l.Text))
	}

	if !f.ShowTimestamps {
		return text
	}
	ts := styles.TimestampStyle.Render(fmt.Sprintf("[%s]", l.Time.Format("15:04:05.000")))
	return ts + " " + text
}

func (f *LineFormatter) FormatAll(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = f.Format(l)
	}
	return out
}

// sanitize keeps device output from driving the terminal. Control
// characters other than tab become middle dots.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return '·'
		}
		return r
	}, s)
}
