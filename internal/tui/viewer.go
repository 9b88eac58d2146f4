package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/vncview/internal/config"
	"github.com/muurk/vncview/internal/logging"
	"github.com/muurk/vncview/internal/rfb"
	"github.com/muurk/vncview/internal/viewer"
)

// maxNotices is how many recent notifications the screen keeps
const maxNotices = 5

// statsInterval is how often the stream counters are refreshed
const statsInterval = time.Second

type statsTickMsg time.Time

// connectMsg asks the viewer to connect to whatever the field holds
type connectMsg struct{}

// savedMsg reports the result of recording a successful connect
type savedMsg struct {
	err error
}

// ViewerModel is the main screen: an endpoint field, the live connection
// state and recent notifications.
type ViewerModel struct {
	manager *viewer.Manager
	bridge  *Bridge
	stream  *StreamCounter
	opts    rfb.Options

	// Registry is updated with the last-used time of saved endpoints (optional)
	Registry *config.Registry
	// SaveRegistry persists Registry; defaults to Registry.Save
	SaveRegistry func(*config.Registry) error

	State   viewer.State
	Notices []viewer.Signal
	touched bool

	Input   textinput.Model
	Spinner spinner.Model
	Help    help.Model
	Keys    viewerKeyMap

	Width  int
	Height int

	Quitting bool
}

// NewViewerModel creates the viewer screen around an existing manager. The
// bridge must be the manager's listener and stream its container.
func NewViewerModel(manager *viewer.Manager, bridge *Bridge, stream *StreamCounter, opts rfb.Options) ViewerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "wss://host:port"
	input.Prompt = "› "
	input.CharLimit = 253
	input.Width = 48
	input.Focus()

	return ViewerModel{
		manager: manager,
		bridge:  bridge,
		stream:  stream,
		opts:    opts,
		State:   manager.State(),
		Input:   input,
		Spinner: s,
		Help:    help.New(),
		Keys:    newViewerKeyMap(),
		SaveRegistry: func(r *config.Registry) error {
			return r.Save()
		},
	}
}

// SetEndpoint replaces the field's content and revalidates it
func (m *ViewerModel) SetEndpoint(value string) {
	m.Input.SetValue(value)
	m.Input.CursorEnd()
	m.manager.SetInput(value)
	m.touched = value != ""
}

// Init starts the spinner, the stats ticker and the listener bridge
func (m ViewerModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.Spinner.Tick,
		m.bridge.Wait(),
		statsTick(),
	)
}

func statsTick() tea.Cmd {
	return tea.Tick(statsInterval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width

	case connectMsg:
		m.connect()

	case updatesMsg:
		var cmds []tea.Cmd
		for _, u := range msg {
			if cmd := m.apply(u); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		cmds = append(cmds, m.bridge.Wait())
		return m, tea.Batch(cmds...)

	case savedMsg:
		if msg.err != nil {
			logging.Warn("Failed to record endpoint use", zap.Error(msg.err))
		}

	case statsTickMsg:
		if m.Quitting {
			return m, nil
		}
		return m, statsTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ViewerModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Connect):
		m.connect()
		return m, nil

	case key.Matches(msg, m.Keys.Disconnect):
		m.manager.Disconnect()
		m.State = m.manager.State()
		return m, nil

	case key.Matches(msg, m.Keys.Clear):
		m.Input.Reset()
		m.manager.ResetInput()
		m.touched = false
		return m, nil
	}

	// The field is locked while a session is held
	if !m.State.CanConnect() {
		return m, nil
	}

	before := m.Input.Value()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	if after := m.Input.Value(); after != before {
		m.manager.SetInput(after)
		m.touched = true
	}
	return m, cmd
}

func (m *ViewerModel) connect() {
	m.touched = true
	m.manager.SetInput(m.Input.Value())
	if m.State.CanConnect() {
		m.stream.Reset()
	}
	// The user sees failures as notices through the bridge
	if err := m.manager.Connect(m.opts); err != nil {
		logging.Debug("Connect rejected", zap.Error(err))
	}
	m.State = m.manager.State()
}

// apply folds one bridged message into the model
func (m *ViewerModel) apply(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case stateMsg:
		prev := m.State
		m.State = msg.state
		if msg.state.Phase == viewer.Connected && prev.Phase != viewer.Connected {
			return m.recordUse(msg.state.Endpoint)
		}

	case signalMsg:
		m.Notices = append(m.Notices, msg.signal)
		if len(m.Notices) > maxNotices {
			m.Notices = m.Notices[len(m.Notices)-maxNotices:]
		}
	}
	return nil
}

// recordUse stamps saved endpoints matching url with the current time
func (m *ViewerModel) recordUse(url string) tea.Cmd {
	reg := m.Registry
	save := m.SaveRegistry
	if reg == nil || save == nil || url == "" {
		return nil
	}
	reg.TouchEndpoint(url)
	return func() tea.Msg {
		return savedMsg{err: save(reg)}
	}
}

// Shutdown tears the session down. Safe to call more than once.
func (m *ViewerModel) Shutdown() {
	m.Quitting = true
	m.manager.Close()
	m.bridge.Stop()
}

// View renders the viewer screen
func (m ViewerModel) View() string {
	if m.Quitting {
		return ""
	}
	return RenderApplicationContainer(m.buildContent(), m.Help.View(m.Keys), m.Width, m.Height)
}

func (m ViewerModel) buildContent() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Remote display"))
	b.WriteString("\n")

	box := InputBoxStyle
	validation := ""
	if msg := m.manager.ValidationMessage(); m.touched && msg != "" {
		box = InvalidInputBoxStyle
		validation = ValidationStyle.Render("Invalid endpoint: " + msg)
	}
	b.WriteString(box.Render(m.Input.View()))
	b.WriteString("\n")
	if validation != "" {
		b.WriteString(validation)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	status := RenderPhaseBadge(m.State.Phase)
	if m.State.Busy() {
		status = m.Spinner.View() + " " + status
	}
	b.WriteString(m.row("Status", status))
	if m.State.Endpoint != "" {
		b.WriteString(m.row("Endpoint", m.State.Endpoint))
	}
	if m.State.Phase == viewer.Failed && m.State.Reason != "" {
		b.WriteString(m.row("Reason", m.State.Reason))
	}
	if m.State.Phase == viewer.Connected {
		b.WriteString(m.row("Stream", StatsStyle.Render(m.stream.String())))
	}
	b.WriteString(m.row("Mode", m.modeSummary()))

	if len(m.Notices) > 0 {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("Recent"))
		b.WriteString("\n")
		for i := len(m.Notices) - 1; i >= 0; i-- {
			b.WriteString(RenderNotice(m.Notices[i]))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m ViewerModel) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), ValueStyle.Render(value)) + "\n"
}

func (m ViewerModel) modeSummary() string {
	var parts []string
	if m.opts.ViewOnly {
		parts = append(parts, "view-only")
	} else {
		parts = append(parts, "interactive")
	}
	if m.opts.ScaleViewport {
		parts = append(parts, "scaled")
	}
	if m.opts.ResizeSession {
		parts = append(parts, "resize")
	}
	if u := m.opts.Credentials.Username; u != "" {
		parts = append(parts, fmt.Sprintf("user %s", u))
	}
	return strings.Join(parts, ", ")
}
