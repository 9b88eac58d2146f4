package endpoint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// SchemePlain is the unencrypted WebSocket scheme
	SchemePlain = "ws"

	// SchemeSecure is the TLS WebSocket scheme
	SchemeSecure = "wss"

	// MessageEmpty is the validation message for blank input
	MessageEmpty = "empty"

	// MessageMalformed is the validation message for input outside the grammar
	MessageMalformed = "malformed"
)

// endpointPattern matches scheme://host[:port]
var endpointPattern = regexp.MustCompile(`^(wss?)://([\w.-]+)(?::(\d+))?$`)

// Result is the outcome of validating an endpoint string.
// The zero value is not meaningful; use Valid or Invalid.
type Result struct {
	ok      bool
	message string
}

// Valid returns a passing Result
func Valid() Result {
	return Result{ok: true}
}

// Invalid returns a failing Result carrying message
func Invalid(message string) Result {
	return Result{message: message}
}

// OK reports whether the input was accepted
func (r Result) OK() bool {
	return r.ok
}

// Message returns the failure message, or "" for a valid result
func (r Result) Message() string {
	return r.message
}

// String returns "Valid" or "Invalid(<message>)"
func (r Result) String() string {
	if r.ok {
		return "Valid"
	}
	return fmt.Sprintf("Invalid(%s)", r.message)
}

// Err converts a failing result into a *ValidationError.
// Returns nil for a valid result.
func (r Result) Err() error {
	if r.ok {
		return nil
	}
	return &ValidationError{Message: r.message}
}

// ValidationError is returned by Parse when the input is rejected
type ValidationError struct {
	Message string // "empty" or "malformed"
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid endpoint: %s", e.Message)
}

// Validate checks input against the endpoint grammar.
func Validate(input string) Result {
	if strings.TrimSpace(input) == "" {
		return Invalid(MessageEmpty)
	}
	if !endpointPattern.MatchString(input) {
		return Invalid(MessageMalformed)
	}
	return Valid()
}

// Endpoint is a parsed remote-display address
type Endpoint struct {
	Scheme string // "ws" or "wss"
	Host   string
	Port   int // 0 when the address carries no port
}

// Parse validates input and splits it into its parts.
func Parse(input string) (Endpoint, error) {
	if res := Validate(input); !res.OK() {
		return Endpoint{}, res.Err()
	}

	m := endpointPattern.FindStringSubmatch(input)
	ep := Endpoint{Scheme: m[1], Host: m[2]}
	if m[3] != "" {
		port, err := strconv.Atoi(m[3])
		if err != nil {
			// Digits too long for an int
			return Endpoint{}, &ValidationError{Message: MessageMalformed}
		}
		ep.Port = port
	}
	return ep, nil
}

// FromHostPort builds an endpoint for a discovered server
func FromHostPort(host string, port int, secure bool) Endpoint {
	scheme := SchemePlain
	if secure {
		scheme = SchemeSecure
	}
	return Endpoint{Scheme: scheme, Host: host, Port: port}
}

// Secure reports whether the endpoint uses TLS
func (e Endpoint) Secure() bool {
	return e.Scheme == SchemeSecure
}

// EffectivePort returns the explicit port or the scheme default (80/443)
func (e Endpoint) EffectivePort() int {
	if e.Port != 0 {
		return e.Port
	}
	if e.Secure() {
		return 443
	}
	return 80
}

// HostPort returns "host:port" using the effective port
func (e Endpoint) HostPort() string {
	return fmt.Sprintf("%s:%d", e.Host, e.EffectivePort())
}

// String renders the endpoint back into the accepted grammar
func (e Endpoint) String() string {
	if e.Port == 0 {
		return fmt.Sprintf("%s://%s", e.Scheme, e.Host)
	}
	return fmt.Sprintf("%s://%s:%d", e.Scheme, e.Host, e.Port)
}
