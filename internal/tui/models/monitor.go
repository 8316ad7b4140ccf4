package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FelipeSilva10/longboard-IDE/internal/bridge"
	"github.com/FelipeSilva10/longboard-IDE/internal/events"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/components"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/keys"
	"github.com/FelipeSilva10/longboard-IDE/internal/tui/styles"
)

// Controller is the command surface the monitor screen drives
type Controller interface {
	StartSerial(port string) error
	StopSerial() error
	UploadCode(ctx context.Context, source, board, port string) (string, error)
}

// EventMsg carries one event from the monitor's event bus
type EventMsg events.Event

// StartedMsg reports the result of scheduling a monitor
type StartedMsg struct {
	Err error
}

// UploadDoneMsg reports the result of an upload
type UploadDoneMsg struct {
	Message string
	Err     error
}

// MonitorOptions configures a MonitorModel
type MonitorOptions struct {
	Port     string
	Board    string
	BaudRate int
	// Source returns the sketch to upload; nil disables uploading
	Source func() (string, error)
	// Context bounds uploads; defaults to context.Background
	Context    context.Context
	Scrollback int
}

// MonitorModel is the bubbletea model of `longboard monitor`
type MonitorModel struct {
	ctrl Controller
	opts MonitorOptions

	view      *components.LineView
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.MonitorKeys

	ready      bool
	monitoring bool
	uploading  bool
	now        func() time.Time
}

func NewMonitorModel(ctrl Controller, opts MonitorOptions) *MonitorModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	k := keys.NewMonitorKeys()
	if opts.Source == nil {
		k = k.WithoutUpload()
	}

	view := components.NewLineView(80, 20)
	view.SetScrollback(opts.Scrollback)

	return &MonitorModel{
		ctrl:      ctrl,
		opts:      opts,
		view:      view,
		statusBar: components.NewStatusBar(opts.Port, opts.Board, opts.BaudRate),
		help:      help.New(),
		keys:      k,
		now:       time.Now,
	}
}

func (m *MonitorModel) Monitoring() bool { return m.monitoring }

func (m *MonitorModel) Uploading() bool { return m.uploading }

func (m *MonitorModel) State() styles.State { return m.statusBar.State() }

func (m *MonitorModel) Status() string { return m.statusBar.Message() }

func (m *MonitorModel) Lines() []components.Line { return m.view.Lines() }

// Init starts monitoring the port
func (m *MonitorModel) Init() tea.Cmd {
	return m.start()
}

func (m *MonitorModel) start() tea.Cmd {
	m.statusBar.Set(styles.StateStopped, "Opening port...")
	ctrl, port := m.ctrl, m.opts.Port
	return func() tea.Msg {
		return StartedMsg{Err: ctrl.StartSerial(port)}
	}
}

func (m *MonitorModel) upload() tea.Cmd {
	m.uploading = true
	m.monitoring = false
	m.statusBar.Set(styles.StateUploading, "Compiling and uploading...")
	m.notice(fmt.Sprintf("uploading to %s", m.opts.Port))

	ctrl, opts := m.ctrl, m.opts
	return func() tea.Msg {
		source, err := opts.Source()
		if err != nil {
			return UploadDoneMsg{Err: fmt.Errorf("reading sketch: %w", err)}
		}
		msg, err := ctrl.UploadCode(opts.Context, source, opts.Board, opts.Port)
		return UploadDoneMsg{Message: msg, Err: err}
	}
}

func (m *MonitorModel) notice(text string) {
	m.view.Append(components.Line{Time: m.now(), Kind: components.LineNotice, Text: text})
}

func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// one line of status bar plus the content border
		m.view.SetSize(msg.Width, msg.Height-2)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.ready = true

	case StartedMsg:
		if errors.Is(msg.Err, bridge.ErrStartCanceled) {
			m.monitoring = false
			if !m.uploading {
				m.statusBar.Set(styles.StateStopped, "Stopped")
			}
			break
		}
		if msg.Err != nil {
			m.monitoring = false
			m.statusBar.Set(styles.StateError, msg.Err.Error())
			break
		}
		m.monitoring = true
		m.statusBar.Set(styles.StateMonitoring, "Listening")

	case EventMsg:
		switch msg.Kind {
		case events.SerialError:
			m.monitoring = false
			m.view.Append(components.Line{Time: msg.Time, Kind: components.LineError, Text: msg.Text})
			m.statusBar.Set(styles.StateError, msg.Text)
		default:
			m.view.Append(components.Line{Time: msg.Time, Kind: components.LineData, Text: msg.Text})
		}

	case UploadDoneMsg:
		m.uploading = false
		// The board resets after an upload; watch it come back up
		cmd := m.start()
		if msg.Err != nil {
			m.view.Append(components.Line{Time: m.now(), Kind: components.LineError, Text: msg.Err.Error()})
			m.statusBar.Set(styles.StateError, "Upload failed, reopening port...")
		} else {
			m.notice(msg.Message)
		}
		m.statusBar.SetLineCount(len(m.view.Lines()))
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.view.Update(msg)
	}

	m.statusBar.SetLineCount(len(m.view.Lines()))
	return m, nil
}

func (m *MonitorModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.StopSerial()
		m.monitoring = false
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Toggle):
		if m.uploading {
			return nil
		}
		if m.monitoring {
			m.ctrl.StopSerial()
			m.monitoring = false
			m.statusBar.Set(styles.StateStopped, "Stopped")
			return nil
		}
		return m.start()

	case key.Matches(msg, m.keys.Upload):
		if m.uploading || m.opts.Source == nil {
			return nil
		}
		return m.upload()

	case key.Matches(msg, m.keys.Clear):
		m.view.Clear()
		m.statusBar.SetLineCount(0)

	case key.Matches(msg, m.keys.Timestamps):
		m.view.ToggleTimestamps()

	case key.Matches(msg, m.keys.Up):
		m.view.ScrollUp()

	case key.Matches(msg, m.keys.Down):
		m.view.ScrollDown()

	case key.Matches(msg, m.keys.GotoTop):
		m.view.GotoTop()

	case key.Matches(msg, m.keys.GotoBottom):
		m.view.GotoBottom()
	}
	return nil
}

func (m *MonitorModel) View() string {
	content := "Initializing..."
	if m.ready {
		content = m.view.View()
	}

	parts := []string{styles.ContentBorderStyle.Render(content)}
	if m.help.ShowAll {
		parts = append(parts, styles.HelpStyle.Render(m.help.View(m.keys)))
	}
	parts = append(parts, m.statusBar.View(m.now().Format("15:04:05")))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
