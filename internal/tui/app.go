package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/vncview/internal/config"
	"github.com/muurk/vncview/internal/logging"
	"github.com/muurk/vncview/internal/rfb"
	"github.com/muurk/vncview/internal/viewer"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenViewer Screen = "viewer"
	ScreenPicker Screen = "picker"
)

// Options configures the viewer application
type Options struct {
	// Factory opens remote-display sessions (required)
	Factory rfb.Factory
	// Session is forwarded to every Factory.Open call
	Session rfb.Options
	// Endpoint pre-fills the endpoint field
	Endpoint string
	// AutoConnect connects to Endpoint on start
	AutoConnect bool
	// Registry supplies saved endpoints and records their use (optional)
	Registry *config.Registry
	// ReloadRegistry rereads the registry each time the picker opens, so
	// endpoints saved by other commands show up (optional)
	ReloadRegistry func() (*config.Registry, error)
	// SaveRegistry persists the registry (default Registry.Save)
	SaveRegistry func(*config.Registry) error
	// Scan enables the discovery part of the picker (optional)
	Scan ScanFunc
	// SecureDiscovered builds wss:// endpoints for discovered servers
	SecureDiscovered bool
}

// AppModel is the top-level coordinator that switches between screens
type AppModel struct {
	CurrentScreen Screen

	Viewer ViewerModel
	Picker PickerModel

	opts   Options
	Width  int
	Height int
}

// NewAppModel wires a viewer.Manager to the screens. The returned manager is
// owned by the model; the caller should still Close it once the program exits.
func NewAppModel(opts Options) (AppModel, *viewer.Manager) {
	bridge := NewBridge()
	stream := &StreamCounter{}
	manager := viewer.New(opts.Factory, stream, bridge)

	v := NewViewerModel(manager, bridge, stream, opts.Session)
	v.Registry = opts.Registry
	if opts.SaveRegistry != nil {
		v.SaveRegistry = opts.SaveRegistry
	}
	if opts.Endpoint != "" {
		v.SetEndpoint(opts.Endpoint)
	}

	return AppModel{
		CurrentScreen: ScreenViewer,
		Viewer:        v,
		opts:          opts,
	}, manager
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.Viewer.Init()}
	if m.opts.AutoConnect && m.opts.Endpoint != "" {
		cmds = append(cmds, func() tea.Msg { return connectMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.CurrentScreen == ScreenPicker {
			m.Picker, _ = m.Picker.Update(msg)
		}
		return m.updateViewer(msg)

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			m.Viewer.Shutdown()
			return m, tea.Quit
		}

		if m.CurrentScreen == ScreenPicker {
			var cmd tea.Cmd
			m.Picker, cmd = m.Picker.Update(msg)
			if m.Picker.Done {
				return m.closePicker()
			}
			return m, cmd
		}

		if key.Matches(msg, m.Viewer.Keys.Servers) {
			return m.openPicker()
		}

	case scanCompleteMsg:
		var cmd tea.Cmd
		m.Picker, cmd = m.Picker.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		// Each spinner ignores ticks carrying another spinner's id
		var pickerCmd tea.Cmd
		m.Picker, pickerCmd = m.Picker.Update(msg)
		next, viewerCmd := m.updateViewer(msg)
		return next, tea.Batch(pickerCmd, viewerCmd)
	}

	// Bridge updates and timers always reach the viewer so its state stays current
	return m.updateViewer(msg)
}

func (m AppModel) updateViewer(msg tea.Msg) (AppModel, tea.Cmd) {
	updated, cmd := m.Viewer.Update(msg)
	m.Viewer = updated.(ViewerModel)
	return m, cmd
}

func (m AppModel) openPicker() (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenPicker
	if m.opts.ReloadRegistry != nil {
		reg, err := m.opts.ReloadRegistry()
		if err != nil {
			logging.Warn("Failed to reload saved endpoints", zap.Error(err))
		} else {
			m.opts.Registry = reg
			m.Viewer.Registry = reg
		}
	}
	m.Picker = NewPickerModel(m.opts.Registry, m.opts.Scan, m.opts.SecureDiscovered)
	if m.Width > 0 {
		m.Picker, _ = m.Picker.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
	}
	return m, m.Picker.Init()
}

func (m AppModel) closePicker() (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenViewer
	if chosen := m.Picker.Chosen; chosen != "" && m.Viewer.State.CanConnect() {
		m.Viewer.SetEndpoint(chosen)
	}
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenPicker:
		return m.Picker.View()
	default:
		return m.Viewer.View()
	}
}

// Run starts the viewer application and blocks until the user quits. The
// session is always torn down before Run returns.
func Run(opts Options) error {
	if opts.Factory == nil {
		return fmt.Errorf("no session factory configured")
	}

	model, manager := NewAppModel(opts)
	defer manager.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
