package viewer

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/vncview/internal/endpoint"
	"github.com/muurk/vncview/internal/logging"
	"github.com/muurk/vncview/internal/rfb"
)

// handle is the manager's exclusive reference to one live session
type handle struct {
	id       string
	session  rfb.Session
	endpoint string
}

// Manager owns the connection state machine and at most one session.
//
// All operations and session events serialise on mu. State is only written
// through transition. Notifications are queued under mu and delivered in order
// by whichever caller finds no delivery in progress, with mu released.
type Manager struct {
	factory   rfb.Factory
	container io.Writer
	listener  Listener

	mu         sync.Mutex
	state      State
	handle     *handle
	input      string
	validation endpoint.Result
	closed     bool
	pending    []func(Listener)
	delivering bool // a goroutine is draining pending
}

// New creates a Manager that opens sessions with factory and renders them into
// container. listener may be nil.
func New(factory rfb.Factory, container io.Writer, listener Listener) *Manager {
	return &Manager{
		factory:   factory,
		container: container,
		listener:  listener,
		state:     State{Phase: Idle},
	}
}

// State returns the current connection state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Active reports whether the manager currently holds a session
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

// Input returns the current endpoint input
func (m *Manager) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// Validation returns the result for the current input
func (m *Manager) Validation() endpoint.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validation
}

// ValidationMessage returns the inline validation message, or "" when the
// input is valid or has been reset.
func (m *Manager) ValidationMessage() string {
	return m.Validation().Message()
}

// SetInput records new endpoint input and revalidates it
func (m *Manager) SetInput(input string) endpoint.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = input
	m.validation = endpoint.Validate(input)
	return m.validation
}

// ResetInput clears the endpoint input and any validation message.
// The connection itself is left alone.
func (m *Manager) ResetInput() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = ""
	m.validation = endpoint.Result{}
}

// ConnectTo sets the input and connects in one call
func (m *Manager) ConnectTo(input string, opts rfb.Options) error {
	m.SetInput(input)
	return m.Connect(opts)
}

// Connect validates the current input and, when the manager is Idle, opens a
// new session against it. It returns without waiting for the handshake; the
// outcome arrives as state changes and signals.
func (m *Manager) Connect(opts rfb.Options) error {
	m.mu.Lock()
	defer m.unlockAndNotify()

	if m.closed {
		err := &ViewerError{Type: ErrTypeClosed, Message: "viewer closed"}
		m.signal(SignalError, ShortMessage(err), err, false)
		return err
	}

	m.validation = endpoint.Validate(m.input)
	if !m.validation.OK() {
		err := NewValidationError(m.validation.Message(), m.validation.Err())
		m.signal(SignalError, ShortMessage(err), err, false)
		return err
	}

	if m.handle != nil {
		err := &ViewerError{
			Type:     ErrTypeAlreadyActive,
			Message:  fmt.Sprintf("already %s", phaseVerb(m.state.Phase)),
			Endpoint: m.handle.endpoint,
		}
		m.signal(SignalWarning, "Already "+phaseVerb(m.state.Phase), err, false)
		return err
	}

	target := m.input
	sess, err := m.open(target, opts)
	if err != nil {
		if sess != nil {
			// Partially built session: tear it down before reporting
			m.disconnectSession(sess)
		}
		cErr := NewCreationError(target, err)
		logging.Warn("Session creation failed",
			zap.String("endpoint", target),
			zap.Error(err),
		)
		m.signal(SignalError, ShortMessage(cErr)+": "+err.Error(), cErr, false)
		return cErr
	}

	h := &handle{id: uuid.NewString(), session: sess, endpoint: target}
	events := sess.Events()
	m.handle = h
	m.transition(TriggerConnect, h)

	if events != nil {
		go m.pump(h.id, events)
	}
	return nil
}

// Disconnect closes the current session and returns to Idle straight away.
// Late events from the closed session are ignored. No-op when Idle.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.unlockAndNotify()

	h := m.handle
	if h == nil {
		return
	}

	if !m.transition(TriggerDisconnect, h) {
		return
	}
	m.disconnectSession(h.session)
	m.handle = nil
	m.transition(TriggerSettle, nil)
	m.signal(SignalInfo, "Disconnected from "+h.endpoint, nil, false)
}

// Close tears the manager down. A held session is always disconnected and
// released; later Connect calls fail with ErrTypeClosed. Safe to call twice.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.unlockAndNotify()

	if m.closed {
		return
	}
	m.closed = true

	h := m.handle
	if h == nil {
		return
	}
	m.disconnectSession(h.session)
	m.handle = nil
	m.transition(TriggerTeardown, nil)
}

// Closed reports whether Close has been called
func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// open calls the factory, converting a panic into an error
func (m *Manager) open(target string, opts rfb.Options) (sess rfb.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session constructor panicked: %v", r)
		}
	}()

	if m.factory == nil {
		return nil, fmt.Errorf("no remote-display client configured")
	}
	sess, err = m.factory.Open(m.container, target, opts)
	if err == nil && sess == nil {
		err = fmt.Errorf("remote-display client returned no session")
	}
	return sess, err
}

// disconnectSession calls Disconnect, containing any panic so the caller can
// still release its reference.
func (m *Manager) disconnectSession(sess rfb.Session) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Session disconnect panicked", zap.Any("panic", r))
		}
	}()
	sess.Disconnect()
}

// pump feeds one session's events into the state machine, in order
func (m *Manager) pump(id string, events <-chan rfb.Event) {
	for ev := range events {
		m.handleEvent(id, ev)
	}
	logging.Debug("Session event stream closed", zap.String("handle", id))
}

func (m *Manager) handleEvent(id string, ev rfb.Event) {
	m.mu.Lock()
	defer m.unlockAndNotify()

	h := m.handle
	if h == nil || h.id != id {
		logging.Debug("Ignoring event from released session",
			zap.String("handle", id),
			zap.String("event", ev.String()),
		)
		return
	}

	switch ev.Type {
	case rfb.EventConnect:
		if m.transition(TriggerSessionConnect, h) {
			m.signal(SignalSuccess, "Connected to "+h.endpoint, nil, false)
		}

	case rfb.EventDisconnect:
		if _, ok := Next(m.state.Phase, TriggerSessionDisconnect); !ok {
			return
		}
		m.handle = nil
		m.transition(TriggerSessionDisconnect, nil)
		if ev.Clean {
			m.signal(SignalInfo, "Disconnected from "+h.endpoint, nil, false)
		} else {
			err := NewUnexpectedDisconnect(h.endpoint, ev.Err)
			m.signal(SignalInfo, "Disconnected unexpectedly from "+h.endpoint, err, true)
		}

	case rfb.EventSecurityFailure:
		if _, ok := Next(m.state.Phase, TriggerSecurityFailure); !ok {
			return
		}
		m.disconnectSession(h.session)
		m.handle = nil
		m.transitionFailed(ev.Reason, h)
		err := NewSecurityFailure(h.endpoint, ev.Reason)
		m.signal(SignalError, ShortMessage(err), err, false)
		m.transition(TriggerSettle, nil)

	case rfb.EventCredentialsRequired:
		if _, ok := Next(m.state.Phase, TriggerCredentialsRequired); !ok {
			return
		}
		err := NewCredentialsRequired(h.endpoint)
		m.signal(SignalWarning, ShortMessage(err), err, false)

	default:
		logging.Debug("Ignoring unknown session event",
			zap.String("handle", id),
			zap.String("event", string(ev.Type)),
		)
	}
}

// transition is the single writer of m.state. h supplies the endpoint for
// non-idle phases. It returns false when the trigger is not valid.
func (m *Manager) transition(t Trigger, h *handle) bool {
	return m.setState(t, h, "")
}

func (m *Manager) transitionFailed(reason string, h *handle) bool {
	return m.setState(TriggerSecurityFailure, h, reason)
}

func (m *Manager) setState(t Trigger, h *handle, reason string) bool {
	prev := m.state
	to, ok := Next(prev.Phase, t)
	if !ok {
		logging.Debug("Ignoring trigger not valid in current phase",
			zap.String("phase", prev.Phase.String()),
			zap.String("trigger", string(t)),
		)
		return false
	}

	next := State{Phase: to, Reason: reason}
	handleID := ""
	if h != nil {
		handleID = h.id
		if to != Idle {
			next.Endpoint = h.endpoint
		}
	}

	m.state = next
	logging.LogTransition(prev.Phase.String(), to.String(), string(t), handleID)
	if next != prev {
		m.pending = append(m.pending, func(l Listener) { l.OnState(next) })
	}
	return true
}

func (m *Manager) signal(kind SignalKind, text string, err error, unexpected bool) {
	s := Signal{Kind: kind, Text: text, Err: err, Unexpected: unexpected}
	m.pending = append(m.pending, func(l Listener) { l.OnSignal(s) })
}

// unlockAndNotify releases mu and delivers queued notifications. Only one
// goroutine delivers at a time; a caller that finds a delivery in progress
// leaves its notifications to that goroutine, which keeps the order intact.
func (m *Manager) unlockAndNotify() {
	if m.listener == nil {
		m.pending = nil
	}
	if m.delivering || len(m.pending) == 0 {
		m.mu.Unlock()
		return
	}

	m.delivering = true
	for len(m.pending) > 0 {
		batch := m.pending
		m.pending = nil
		m.mu.Unlock()

		for _, fn := range batch {
			m.deliver(fn)
		}

		m.mu.Lock()
	}
	m.delivering = false
	m.mu.Unlock()
}

// deliver runs one listener callback, containing any panic so delivery
// continues
func (m *Manager) deliver(fn func(Listener)) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Listener panicked", zap.Any("panic", r))
		}
	}()
	fn(m.listener)
}

func phaseVerb(p Phase) string {
	if p == Connected {
		return "connected"
	}
	return "connecting"
}
