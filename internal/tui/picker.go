package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/vncview/internal/config"
	"github.com/muurk/vncview/internal/discovery"
)

// ScanFunc discovers servers on the local network
type ScanFunc func(ctx context.Context) ([]*discovery.Server, error)

type scanCompleteMsg struct {
	servers []*discovery.Server
	err     error
}

// endpointItem is one row of the picker list
type endpointItem struct {
	name   string
	url    string
	detail string
}

func (i endpointItem) Title() string       { return i.name }
func (i endpointItem) Description() string { return i.url + "  " + i.detail }
func (i endpointItem) FilterValue() string { return i.name + " " + i.url }

// PickerModel lists saved endpoints and servers found by mDNS.
type PickerModel struct {
	List     list.Model
	Scanning bool
	Err      error
	Chosen   string
	Done     bool

	saved  []list.Item
	scan   ScanFunc
	secure bool

	Spinner spinner.Model
	Help    help.Model
	Keys    pickerKeyMap

	Width  int
	Height int
}

// NewPickerModel creates the picker. reg and scan may be nil. secure selects
// wss:// for discovered servers that do not advertise TLS themselves.
func NewPickerModel(reg *config.Registry, scan ScanFunc, secure bool) PickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	var saved []list.Item
	if reg != nil {
		for _, ep := range reg.SortedEndpoints() {
			detail := "saved"
			if !ep.LastUsed.IsZero() {
				detail = "used " + ep.LastUsed.Format("2006-01-02 15:04")
			}
			saved = append(saved, endpointItem{name: ep.Name, url: ep.URL, detail: detail})
		}
	}

	l := list.New(saved, list.NewDefaultDelegate(), MinTerminalWidth-8, 12)
	l.Title = "Endpoints"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = TitleStyle

	return PickerModel{
		List:     l,
		Scanning: scan != nil,
		saved:    saved,
		scan:     scan,
		secure:   secure,
		Spinner:  s,
		Help:     help.New(),
		Keys:     newPickerKeyMap(),
	}
}

// Init starts a scan when discovery is available
func (m PickerModel) Init() tea.Cmd {
	if m.scan == nil {
		return nil
	}
	return tea.Batch(m.Spinner.Tick, m.runScan())
}

func (m PickerModel) runScan() tea.Cmd {
	scan := m.scan
	return func() tea.Msg {
		servers, err := scan(context.Background())
		return scanCompleteMsg{servers: servers, err: err}
	}
}

// Update handles messages and updates the model
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Back):
			m.Done = true
			return m, nil

		case key.Matches(msg, m.Keys.Choose):
			if item, ok := m.List.SelectedItem().(endpointItem); ok {
				m.Chosen = item.url
				m.Done = true
			}
			return m, nil

		case key.Matches(msg, m.Keys.Rescan):
			if m.scan == nil || m.Scanning {
				return m, nil
			}
			m.Scanning = true
			return m, tea.Batch(m.Spinner.Tick, m.runScan())
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.List.SetSize(msg.Width-8, msg.Height-10)
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := append([]list.Item{}, m.saved...)
		for _, s := range msg.servers {
			items = append(items, endpointItem{
				name:   s.Name,
				url:    s.Endpoint(m.secure).String(),
				detail: fmt.Sprintf("discovered %s", s.DiscoveredAt.Format(time.Kitchen)),
			})
		}
		return m, m.List.SetItems(items)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

// View renders the picker screen
func (m PickerModel) View() string {
	content := m.List.View()
	switch {
	case m.Scanning:
		content += "\n" + m.Spinner.View() + " Searching for servers..."
	case m.Err != nil:
		content += "\n" + ValidationStyle.Render("Discovery failed: "+m.Err.Error())
	case len(m.List.Items()) == 0:
		content += "\n" + SubtitleStyle.Render("No saved or discovered endpoints")
	}
	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}
