package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/vncview/internal/viewer"
)

// stateMsg carries a connection state change into the program
type stateMsg struct {
	state viewer.State
}

// signalMsg carries a user-facing notification into the program
type signalMsg struct {
	signal viewer.Signal
}

// updatesMsg is a batch of queued state and signal messages, in order
type updatesMsg []tea.Msg

// Bridge adapts viewer.Listener callbacks to Bubble Tea messages.
//
// Callbacks only append to a queue and never block. The program collects the
// queue through the command returned by Wait.
type Bridge struct {
	mu      sync.Mutex
	pending []tea.Msg
	wake    chan struct{}

	stopOnce sync.Once
	done     chan struct{}
}

// NewBridge creates an empty bridge
func NewBridge() *Bridge {
	return &Bridge{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// OnState implements viewer.Listener
func (b *Bridge) OnState(s viewer.State) {
	b.push(stateMsg{state: s})
}

// OnSignal implements viewer.Listener
func (b *Bridge) OnSignal(s viewer.Signal) {
	b.push(signalMsg{signal: s})
}

func (b *Bridge) push(msg tea.Msg) {
	b.mu.Lock()
	b.pending = append(b.pending, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) drain() updatesMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := updatesMsg(b.pending)
	b.pending = nil
	return out
}

// Wait returns a command that blocks until updates are queued, then delivers
// them all as one message. It yields nil once the bridge is stopped.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.done:
			return nil
		default:
		}
		select {
		case <-b.wake:
			return b.drain()
		case <-b.done:
			return nil
		}
	}
}

// Stop releases any pending Wait command
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() { close(b.done) })
}
