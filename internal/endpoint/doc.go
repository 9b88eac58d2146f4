// Package endpoint validates and parses remote-display server addresses.
//
// An endpoint is the WebSocket address of a VNC server (usually a websockify
// bridge in front of the real RFB port). The accepted grammar is
//
//	scheme "://" host [":" port]
//
// where scheme is "ws" or "wss", host is one or more word, hyphen or dot
// characters and port is all digits. Paths, query strings and user info are
// rejected.
//
// # Validation
//
// Validate is pure and total. It never panics and always returns one of:
//
//	endpoint.Validate("")               // Invalid("empty")
//	endpoint.Validate("ftp://host")     // Invalid("malformed")
//	endpoint.Validate("ws://host:5900") // Valid
//
// Parse applies the same grammar and returns a structured Endpoint for callers
// that need the scheme, host or port separately.
package endpoint
