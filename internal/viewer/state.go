package viewer

import "fmt"

// Phase is the coarse connection state shown to the user
type Phase int

const (
	Idle Phase = iota
	Connecting
	Connected
	Disconnecting
	Failed
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// State is the connection state owned by a Manager.
// UI elements (buttons, spinner) are a pure projection of it.
type State struct {
	Phase    Phase
	Reason   string // set when Phase is Failed
	Endpoint string // endpoint of the current attempt; empty when Idle
}

// String renders the state as e.g. "Connected(ws://host:5900)" or "Failed(reason)"
func (s State) String() string {
	switch {
	case s.Phase == Failed:
		return fmt.Sprintf("Failed(%s)", s.Reason)
	case s.Endpoint != "":
		return fmt.Sprintf("%s(%s)", s.Phase, s.Endpoint)
	default:
		return s.Phase.String()
	}
}

// Busy reports whether a spinner should be shown
func (s State) Busy() bool {
	return s.Phase == Connecting || s.Phase == Disconnecting
}

// CanConnect reports whether the Connect action should be enabled
func (s State) CanConnect() bool {
	return s.Phase == Idle
}

// CanDisconnect reports whether the Disconnect action should be enabled
func (s State) CanDisconnect() bool {
	return s.Phase == Connecting || s.Phase == Connected
}

// Trigger labels a transition in the connection state machine
type Trigger string

const (
	TriggerConnect             Trigger = "user:connect"
	TriggerDisconnect          Trigger = "user:disconnect"
	TriggerTeardown            Trigger = "user:teardown"
	TriggerSessionConnect      Trigger = "session:connect"
	TriggerSessionDisconnect   Trigger = "session:disconnect"
	TriggerSecurityFailure     Trigger = "session:securityfailure"
	TriggerCredentialsRequired Trigger = "session:credentialsrequired"

	// TriggerSettle moves the transient Disconnecting and Failed phases to Idle
	TriggerSettle Trigger = "settle"
)

// transitions is the complete state machine. Pairs not listed are ignored.
var transitions = map[Phase]map[Trigger]Phase{
	Idle: {
		TriggerConnect:  Connecting,
		TriggerTeardown: Idle,
	},
	Connecting: {
		TriggerSessionConnect:      Connected,
		TriggerSessionDisconnect:   Idle,
		TriggerSecurityFailure:     Failed,
		TriggerCredentialsRequired: Connecting,
		TriggerDisconnect:          Disconnecting,
		TriggerTeardown:            Idle,
	},
	Connected: {
		TriggerSessionDisconnect:   Idle,
		TriggerCredentialsRequired: Connected,
		TriggerDisconnect:          Disconnecting,
		TriggerTeardown:            Idle,
	},
	Disconnecting: {
		TriggerSettle:   Idle,
		TriggerTeardown: Idle,
	},
	Failed: {
		TriggerSettle:   Idle,
		TriggerTeardown: Idle,
	},
}

// Next returns the phase reached from "from" on trigger t.
// ok is false when the trigger is not valid in that phase.
func Next(from Phase, t Trigger) (to Phase, ok bool) {
	to, ok = transitions[from][t]
	return to, ok
}
