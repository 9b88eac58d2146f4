package viewer

import "fmt"

// SignalKind is the severity of a user-facing notification
type SignalKind int

const (
	SignalSuccess SignalKind = iota
	SignalInfo
	SignalWarning
	SignalError
)

// String returns the kind name
func (k SignalKind) String() string {
	switch k {
	case SignalSuccess:
		return "success"
	case SignalInfo:
		return "info"
	case SignalWarning:
		return "warning"
	case SignalError:
		return "error"
	default:
		return fmt.Sprintf("SignalKind(%d)", k)
	}
}

// Signal is a notification for the presentation layer
type Signal struct {
	Kind SignalKind
	Text string

	// Err is the typed error behind warning and error signals (nil otherwise)
	Err error

	// Unexpected marks an info signal for a disconnect that was not clean
	Unexpected bool
}

// Listener receives state changes and signals from a Manager.
//
// Callbacks run without the manager's lock held, in the order the changes
// happened, possibly on a session goroutine. A callback may read State() and
// the other accessors. It may also call Connect or Disconnect; the
// notifications those produce are delivered after the current one returns.
// Callbacks must not block, since they hold up later notifications.
type Listener interface {
	OnState(State)
	OnSignal(Signal)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	State  func(State)
	Signal func(Signal)
}

// OnState implements Listener
func (l ListenerFuncs) OnState(s State) {
	if l.State != nil {
		l.State(s)
	}
}

// OnSignal implements Listener
func (l ListenerFuncs) OnSignal(s Signal) {
	if l.Signal != nil {
		l.Signal(s)
	}
}
