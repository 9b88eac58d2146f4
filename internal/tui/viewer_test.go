package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/vncview/internal/config"
	"github.com/muurk/vncview/internal/discovery"
	"github.com/muurk/vncview/internal/rfb"
	"github.com/muurk/vncview/internal/viewer"
)

type stubSession struct {
	events chan rfb.Event

	mu          sync.Mutex
	disconnects int
}

func (s *stubSession) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects++
}

func (s *stubSession) Events() <-chan rfb.Event { return s.events }

func (s *stubSession) Disconnects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnects
}

type stubFactory struct {
	mu       sync.Mutex
	sessions []*stubSession
	opts     []rfb.Options
}

func (f *stubFactory) Open(container io.Writer, target string, opts rfb.Options) (rfb.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &stubSession{events: make(chan rfb.Event, 8)}
	f.sessions = append(f.sessions, s)
	f.opts = append(f.opts, opts)
	return s, nil
}

func (f *stubFactory) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *stubFactory) Last() *stubSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[len(f.sessions)-1]
}

func newTestViewer(opts rfb.Options) (ViewerModel, *viewer.Manager, *stubFactory) {
	f := &stubFactory{}
	bridge := NewBridge()
	stream := &StreamCounter{}
	mgr := viewer.New(f, stream, bridge)
	return NewViewerModel(mgr, bridge, stream, opts), mgr, f
}

func update(m ViewerModel, msg tea.Msg) ViewerModel {
	updated, _ := m.Update(msg)
	return updated.(ViewerModel)
}

// pumpUntil feeds bridged updates into m until cond holds
func pumpUntil(t *testing.T, m ViewerModel, cond func(ViewerModel) bool) ViewerModel {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond(m) {
		got := make(chan tea.Msg, 1)
		go func() { got <- m.bridge.Wait()() }()
		select {
		case msg := <-got:
			m = update(m, msg)
		case <-deadline:
			t.Fatalf("condition not reached; state %v, notices %v", m.State, m.Notices)
		}
	}
	return m
}

func hasNotice(kind viewer.SignalKind) func(ViewerModel) bool {
	return func(m ViewerModel) bool {
		for _, n := range m.Notices {
			if n.Kind == kind {
				return true
			}
		}
		return false
	}
}

func TestViewerConnectAndDisconnect(t *testing.T) {
	m, mgr, f := newTestViewer(rfb.Options{ScaleViewport: true})
	m.SetEndpoint("ws://lab:5901")

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.State.Phase != viewer.Connecting {
		t.Fatalf("State after enter = %v, want Connecting", m.State)
	}
	if f.Opened() != 1 {
		t.Fatalf("factory opened %d sessions, want 1", f.Opened())
	}
	if !f.opts[0].ScaleViewport {
		t.Error("session options should be forwarded")
	}

	f.Last().events <- rfb.Event{Type: rfb.EventConnect}
	m = pumpUntil(t, m, func(m ViewerModel) bool { return m.State.Phase == viewer.Connected })
	m = pumpUntil(t, m, hasNotice(viewer.SignalSuccess))

	if !strings.Contains(m.View(), "Connected") {
		t.Error("View() should show the Connected badge")
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.State.Phase != viewer.Idle {
		t.Errorf("State after ctrl+d = %v, want Idle", m.State)
	}
	if got := f.Last().Disconnects(); got != 1 {
		t.Errorf("session Disconnect() calls = %d, want 1", got)
	}
	if mgr.Active() {
		t.Error("manager should not hold a session after disconnect")
	}
}

func TestViewerRejectsInvalidEndpoint(t *testing.T) {
	m, _, f := newTestViewer(rfb.Options{})
	m.SetEndpoint("http://lab:5901")

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if f.Opened() != 0 {
		t.Fatal("factory must not be called for an invalid endpoint")
	}
	if m.State.Phase != viewer.Idle {
		t.Errorf("State = %v, want Idle", m.State)
	}

	m = pumpUntil(t, m, hasNotice(viewer.SignalError))
	if !strings.Contains(m.View(), "Invalid endpoint: malformed") {
		t.Error("View() should show the validation message")
	}
}

func TestViewerEmptyInputIsNotFlaggedUntilTouched(t *testing.T) {
	m, _, _ := newTestViewer(rfb.Options{})
	if strings.Contains(m.View(), "Invalid endpoint") {
		t.Error("untouched empty field should not show a validation error")
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "Invalid endpoint: empty") {
		t.Error("connect on empty field should show the empty message")
	}
}

func TestViewerTypingRevalidates(t *testing.T) {
	m, mgr, _ := newTestViewer(rfb.Options{})

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ws://a")})
	if got := mgr.Input(); got != "ws://a" {
		t.Fatalf("manager input = %q, want ws://a", got)
	}
	if !mgr.Validation().OK() {
		t.Errorf("Validation() = %v, want Valid", mgr.Validation())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/path")})
	if mgr.Validation().OK() {
		t.Error("path suffix should invalidate the endpoint")
	}
}

func TestViewerInputLockedWhileConnected(t *testing.T) {
	m, mgr, _ := newTestViewer(rfb.Options{})
	m.SetEndpoint("ws://lab")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.Input.Value() != "ws://lab" || mgr.Input() != "ws://lab" {
		t.Errorf("input changed while connecting: %q", m.Input.Value())
	}
}

func TestViewerClearResetsInputOnly(t *testing.T) {
	m, mgr, _ := newTestViewer(rfb.Options{})
	m.SetEndpoint("ws://lab")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.Input.Value() != "" || mgr.Input() != "" {
		t.Error("ctrl+l should clear the field")
	}
	if m.State.Phase != viewer.Connecting {
		t.Errorf("clear should not touch the connection, state = %v", m.State)
	}
}

func TestViewerQuitTearsDown(t *testing.T) {
	m, mgr, f := newTestViewer(rfb.Options{})
	m.SetEndpoint("ws://lab")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(ViewerModel)
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if !m.Quitting || m.View() != "" {
		t.Error("model should be quitting with an empty view")
	}
	if !mgr.Closed() {
		t.Error("manager should be closed")
	}
	if got := f.Last().Disconnects(); got != 1 {
		t.Errorf("session Disconnect() calls = %d, want 1", got)
	}
	if msg := m.bridge.Wait()(); msg != nil {
		t.Errorf("Wait() after quit = %v, want nil", msg)
	}
}

func TestViewerSecurityFailure(t *testing.T) {
	m, _, f := newTestViewer(rfb.Options{})
	m.SetEndpoint("wss://lab")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	f.Last().events <- rfb.Event{Type: rfb.EventSecurityFailure, Reason: "bad certificate"}
	m = pumpUntil(t, m, hasNotice(viewer.SignalError))
	m = pumpUntil(t, m, func(m ViewerModel) bool { return m.State.Phase == viewer.Idle })

	var text string
	for _, n := range m.Notices {
		if n.Kind == viewer.SignalError {
			text = n.Text
		}
	}
	if !strings.Contains(text, "bad certificate") {
		t.Errorf("error notice = %q, should carry the reason", text)
	}
}

func TestViewerRecordsEndpointUse(t *testing.T) {
	m, _, f := newTestViewer(rfb.Options{})
	reg := config.NewRegistry()
	if err := reg.SetEndpoint("lab", "ws://lab:5901", ""); err != nil {
		t.Fatal(err)
	}
	saves := 0
	m.Registry = reg
	m.SaveRegistry = func(*config.Registry) error {
		saves++
		return errors.New("read-only")
	}

	m.SetEndpoint("ws://lab:5901")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	f.Last().events <- rfb.Event{Type: rfb.EventConnect}
	m = pumpUntil(t, m, func(m ViewerModel) bool { return m.State.Phase == viewer.Connected })

	if reg.GetEndpoint("lab").LastUsed.IsZero() {
		t.Error("connecting should stamp the saved endpoint")
	}

	cmd := m.recordUse("ws://lab:5901")
	if cmd == nil {
		t.Fatal("recordUse() should return a save command")
	}
	msg, ok := cmd().(savedMsg)
	if !ok || msg.err == nil || saves == 0 {
		t.Errorf("save command result = %v, saves = %d", msg, saves)
	}
	m = update(m, msg)
}

func TestViewerNoticesAreCapped(t *testing.T) {
	m, _, _ := newTestViewer(rfb.Options{})
	for i := 0; i < maxNotices+3; i++ {
		m.apply(signalMsg{signal: viewer.Signal{Kind: viewer.SignalInfo, Text: "n"}})
	}
	if len(m.Notices) != maxNotices {
		t.Errorf("len(Notices) = %d, want %d", len(m.Notices), maxNotices)
	}
}

func TestAppAutoConnectAndPicker(t *testing.T) {
	f := &stubFactory{}
	reg := config.NewRegistry()
	_ = reg.SetEndpoint("lab", "ws://lab:5901", "")

	scan := func(ctx context.Context) ([]*discovery.Server, error) {
		return []*discovery.Server{{Name: "Office", Hostname: "office.local.", IP: "10.0.0.9", Port: 5900}}, nil
	}

	app, mgr := NewAppModel(Options{
		Factory:  f,
		Endpoint: "ws://other:5900",
		Registry: reg,
		Scan:     scan,
	})
	defer mgr.Close()

	if app.Viewer.Input.Value() != "ws://other:5900" {
		t.Fatalf("endpoint not pre-filled: %q", app.Viewer.Input.Value())
	}

	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = next.(AppModel)
	if app.CurrentScreen != ScreenPicker {
		t.Fatalf("tab should open the picker, screen = %s", app.CurrentScreen)
	}
	if !app.Picker.Scanning {
		t.Error("picker should start scanning")
	}

	next, _ = app.Update(app.Picker.runScan()())
	app = next.(AppModel)
	if n := len(app.Picker.List.Items()); n != 2 {
		t.Fatalf("picker items = %d, want saved + discovered = 2", n)
	}

	// First item is the saved endpoint
	next, _ = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = next.(AppModel)
	if app.CurrentScreen != ScreenViewer {
		t.Fatalf("choosing should return to the viewer, screen = %s", app.CurrentScreen)
	}
	if app.Viewer.Input.Value() != "ws://lab:5901" {
		t.Errorf("endpoint field = %q, want ws://lab:5901", app.Viewer.Input.Value())
	}

	next, _ = app.Update(connectMsg{})
	app = next.(AppModel)
	if app.Viewer.State.Phase != viewer.Connecting || f.Opened() != 1 {
		t.Errorf("connectMsg should start a connect, state = %v", app.Viewer.State)
	}

	next, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	app = next.(AppModel)
	if cmd == nil || !mgr.Closed() {
		t.Error("ctrl+c should close the manager and quit")
	}
}

func TestAppPickerReloadsRegistry(t *testing.T) {
	stale := config.NewRegistry()
	fresh := config.NewRegistry()
	_ = fresh.SetEndpoint("kiosk", "ws://kiosk:5900", "")

	reloads := 0
	var saved *config.Registry
	app, mgr := NewAppModel(Options{
		Factory:  &stubFactory{},
		Registry: stale,
		ReloadRegistry: func() (*config.Registry, error) {
			reloads++
			return fresh, nil
		},
		SaveRegistry: func(r *config.Registry) error {
			saved = r
			return nil
		},
	})
	defer mgr.Close()

	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = next.(AppModel)
	if reloads != 1 {
		t.Fatalf("opening the picker reloaded %d times, want 1", reloads)
	}
	if n := len(app.Picker.List.Items()); n != 1 {
		t.Fatalf("picker items = %d, want the reloaded endpoint", n)
	}
	if app.Viewer.Registry != fresh {
		t.Error("viewer should record use against the reloaded registry")
	}

	cmd := app.Viewer.recordUse("ws://kiosk:5900")
	if cmd == nil {
		t.Fatal("recordUse() returned no save command")
	}
	if msg := cmd().(savedMsg); msg.err != nil || saved != fresh {
		t.Errorf("SaveRegistry got %p (err %v), want the reloaded registry", saved, msg.err)
	}
}

func TestAppPickerReloadFailureKeepsRegistry(t *testing.T) {
	reg := config.NewRegistry()
	_ = reg.SetEndpoint("lab", "ws://lab:5901", "")

	app, mgr := NewAppModel(Options{
		Factory:  &stubFactory{},
		Registry: reg,
		ReloadRegistry: func() (*config.Registry, error) {
			return nil, errors.New("permission denied")
		},
	})
	defer mgr.Close()

	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = next.(AppModel)
	if n := len(app.Picker.List.Items()); n != 1 || app.Viewer.Registry != reg {
		t.Errorf("failed reload should keep the loaded registry, items = %d", n)
	}
}

func TestPickerBackWithoutChoice(t *testing.T) {
	p := NewPickerModel(nil, nil, false)
	if p.Scanning {
		t.Error("picker without discovery should not scan")
	}
	if p.Init() != nil {
		t.Error("Init() without discovery should return nil")
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !p.Done || p.Chosen != "" {
		t.Errorf("esc should close without a choice, got Done=%v Chosen=%q", p.Done, p.Chosen)
	}
}

func TestPickerDiscoveredSecure(t *testing.T) {
	p := NewPickerModel(nil, func(context.Context) ([]*discovery.Server, error) { return nil, nil }, true)
	p, _ = p.Update(scanCompleteMsg{servers: []*discovery.Server{{Name: "nas", Hostname: "nas.local.", IP: "10.0.0.2", Port: 6080}}})

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Chosen != "wss://10.0.0.2:6080" {
		t.Errorf("Chosen = %q, want wss://10.0.0.2:6080", p.Chosen)
	}
}

func TestPickerScanError(t *testing.T) {
	p := NewPickerModel(nil, func(context.Context) ([]*discovery.Server, error) { return nil, nil }, false)
	p, _ = p.Update(scanCompleteMsg{err: errors.New("no multicast")})
	if p.Scanning || p.Err == nil {
		t.Error("scan error should stop scanning and be kept")
	}
	if !strings.Contains(p.View(), "no multicast") {
		t.Error("View() should show the discovery error")
	}
}
