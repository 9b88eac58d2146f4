package viewer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeValidation indicates the endpoint failed validation
	ErrTypeValidation ErrorType = iota
	// ErrTypeCreation indicates the session handle could not be created
	ErrTypeCreation
	// ErrTypeSecurityFailure indicates the server or TLS layer rejected the handshake
	ErrTypeSecurityFailure
	// ErrTypeUnexpectedDisconnect indicates the session dropped without a clean close
	ErrTypeUnexpectedDisconnect
	// ErrTypeAlreadyActive indicates connect was called during an attempt or live session
	ErrTypeAlreadyActive
	// ErrTypeClosed indicates the manager has been torn down
	ErrTypeClosed
	// ErrTypeCredentialsRequired indicates the server asked for credentials; the session is kept
	ErrTypeCredentialsRequired
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeCreation:
		return "Creation Error"
	case ErrTypeSecurityFailure:
		return "Security Failure"
	case ErrTypeUnexpectedDisconnect:
		return "Unexpected Disconnect"
	case ErrTypeAlreadyActive:
		return "Already Active"
	case ErrTypeClosed:
		return "Viewer Closed"
	case ErrTypeCredentialsRequired:
		return "Credentials Required"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ViewerError represents an error surfaced by the lifecycle manager.
// Every ViewerError leaves the manager in a state from which the user can retry.
type ViewerError struct {
	Type     ErrorType // Category of error
	Message  string    // Human-readable error message
	Endpoint string    // Endpoint of the attempt (if any)
	Err      error     // Underlying error (if any)
}

// Error implements the error interface
func (e *ViewerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ViewerError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error for a rejected endpoint
func NewValidationError(message string, err error) *ViewerError {
	return &ViewerError{Type: ErrTypeValidation, Message: message, Err: err}
}

// NewCreationError creates a session creation error
func NewCreationError(endpoint string, err error) *ViewerError {
	return &ViewerError{
		Type:     ErrTypeCreation,
		Message:  "could not create session",
		Endpoint: endpoint,
		Err:      err,
	}
}

// NewSecurityFailure creates a security failure error carrying the server's reason
func NewSecurityFailure(endpoint, reason string) *ViewerError {
	return &ViewerError{Type: ErrTypeSecurityFailure, Message: reason, Endpoint: endpoint}
}

// NewUnexpectedDisconnect creates an error for a session that dropped
func NewUnexpectedDisconnect(endpoint string, err error) *ViewerError {
	return &ViewerError{
		Type:     ErrTypeUnexpectedDisconnect,
		Message:  "connection closed unexpectedly",
		Endpoint: endpoint,
		Err:      err,
	}
}

func typeOf(err error) (ErrorType, bool) {
	var vErr *ViewerError
	if errors.As(err, &vErr) {
		return vErr.Type, true
	}
	return 0, false
}

func isType(err error, want ErrorType) bool {
	et, ok := typeOf(err)
	return ok && et == want
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrTypeValidation)
}

// IsCreationError checks if an error is a session creation error
func IsCreationError(err error) bool {
	return isType(err, ErrTypeCreation)
}

// IsSecurityFailure checks if an error is a security failure
func IsSecurityFailure(err error) bool {
	return isType(err, ErrTypeSecurityFailure)
}

// IsUnexpectedDisconnect checks if an error is an unexpected disconnect
func IsUnexpectedDisconnect(err error) bool {
	return isType(err, ErrTypeUnexpectedDisconnect)
}

// IsAlreadyActive checks if an error is a rejected duplicate connect
func IsAlreadyActive(err error) bool {
	return isType(err, ErrTypeAlreadyActive)
}

// IsClosed checks if an error came from a torn-down manager
func IsClosed(err error) bool {
	return isType(err, ErrTypeClosed)
}

// NewCredentialsRequired creates the warning error for a server asking for credentials
func NewCredentialsRequired(endpoint string) *ViewerError {
	return &ViewerError{
		Type:     ErrTypeCredentialsRequired,
		Message:  "credentials required",
		Endpoint: endpoint,
	}
}

// IsCredentialsRequired checks if an error is a credentials-required warning
func IsCredentialsRequired(err error) bool {
	return isType(err, ErrTypeCredentialsRequired)
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var vErr *ViewerError
	if !errors.As(err, &vErr) {
		return err.Error()
	}

	switch vErr.Type {
	case ErrTypeValidation:
		return fmt.Sprintf("Invalid endpoint (%s)", vErr.Message)
	case ErrTypeCreation:
		return "Could not start the session"
	case ErrTypeSecurityFailure:
		return "Security failure: " + vErr.Message
	case ErrTypeUnexpectedDisconnect:
		return "Connection lost"
	case ErrTypeCredentialsRequired:
		return "Server requires credentials"
	default:
		return vErr.Message
	}
}

// TroubleshootingHint returns user-facing advice for an error
func TroubleshootingHint(err error) string {
	et, ok := typeOf(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch et {
	case ErrTypeValidation:
		return strings.Join([]string{
			"The endpoint must look like ws://host[:port] or wss://host[:port].",
			"Troubleshooting:",
			"  • Use the websockify address, not the raw VNC port",
			"  • Drop any path such as /websockify",
			"  • Use wss:// when the bridge terminates TLS",
		}, "\n")

	case ErrTypeCreation:
		return strings.Join([]string{
			"The session could not be created.",
			"Troubleshooting:",
			"  • Check the endpoint scheme and host",
			"  • Make sure the display is available before connecting",
		}, "\n")

	case ErrTypeSecurityFailure:
		return strings.Join([]string{
			"The server rejected the session.",
			"Troubleshooting:",
			"  • Check the username and VNCVIEW_PASSWORD",
			"  • For wss://, verify the server certificate or use --insecure for testing",
			"  • Confirm the bridge allows connections from this host",
		}, "\n")

	case ErrTypeUnexpectedDisconnect:
		return strings.Join([]string{
			"The connection dropped.",
			"Troubleshooting:",
			"  • Check that the VNC server and websockify bridge are running",
			"  • Verify network connectivity to the host",
			"  • Reconnect; nothing is retried automatically",
		}, "\n")

	case ErrTypeAlreadyActive:
		return "Disconnect the current session before starting another one."

	case ErrTypeClosed:
		return "The viewer has been closed. Start a new one to connect again."

	case ErrTypeCredentialsRequired:
		return strings.Join([]string{
			"The server wants credentials before it will continue.",
			"Troubleshooting:",
			"  • Disconnect, then reconnect with --username",
			"  • Set the password in VNCVIEW_PASSWORD",
		}, "\n")

	default:
		return "An error occurred. Please check the error message for details."
	}
}
