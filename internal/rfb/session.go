package rfb

import (
	"errors"
	"fmt"
	"io"
)

// EventType identifies a session lifecycle event
type EventType string

const (
	EventConnect             EventType = "connect"
	EventDisconnect          EventType = "disconnect"
	EventSecurityFailure     EventType = "securityfailure"
	EventCredentialsRequired EventType = "credentialsrequired"
)

// Event is a single lifecycle notification from a Session
type Event struct {
	Type EventType

	// Clean is set on EventDisconnect when the session closed without error
	Clean bool

	// Reason describes an EventSecurityFailure
	Reason string

	// Err is the transport error behind an unclean disconnect, if any
	Err error
}

// String returns a short description for logs
func (e Event) String() string {
	switch e.Type {
	case EventDisconnect:
		return fmt.Sprintf("disconnect(clean=%t)", e.Clean)
	case EventSecurityFailure:
		return fmt.Sprintf("securityfailure(%s)", e.Reason)
	default:
		return string(e.Type)
	}
}

// Credentials is the authentication material forwarded to the server.
// It is passed through untouched and must never be logged.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether no credentials were supplied
func (c Credentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

// Options is the configuration bag handed to Factory.Open
type Options struct {
	Credentials   Credentials
	ViewOnly      bool // never send input to the server
	ScaleViewport bool // scale the remote display to fit the container
	ResizeSession bool // ask the server to resize to the container
}

// Session is one remote-display connection.
type Session interface {
	// Disconnect closes the session. It must not block on the network and
	// may be called more than once.
	Disconnect()

	// Events returns the session's event channel. The same channel is
	// returned on every call; it is closed when the session stops.
	Events() <-chan Event
}

// Factory creates sessions. container receives the display stream.
type Factory interface {
	Open(container io.Writer, target string, opts Options) (Session, error)
}

// FactoryFunc adapts a function to the Factory interface
type FactoryFunc func(container io.Writer, target string, opts Options) (Session, error)

// Open calls f
func (f FactoryFunc) Open(container io.Writer, target string, opts Options) (Session, error) {
	return f(container, target, opts)
}

var (
	// ErrNoContainer is returned by Open when no display container is given
	ErrNoContainer = errors.New("display container unavailable")

	// ErrViewOnly is returned when input is sent on a view-only session
	ErrViewOnly = errors.New("session is view-only")

	// ErrNotConnected is returned when input is sent before the handshake completes
	ErrNotConnected = errors.New("session not connected")
)
