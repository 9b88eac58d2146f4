package discovery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/vncview/internal/endpoint"
)

// Server represents a remote-display server advertised on the local network
type Server struct {
	// Name is the advertised instance name (e.g., "Office iMac")
	Name string

	// Hostname is the mDNS hostname (e.g., "office-imac.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the advertised service port
	Port int

	// Metadata contains mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	return fmt.Sprintf("%s (%s) at %s:%d", s.Name, s.Hostname, s.IP, s.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

// Endpoint builds the WebSocket endpoint for the server.
// A "wsport" TXT record overrides the advertised port, and "tls=1" forces a
// secure endpoint.
func (s *Server) Endpoint(secure bool) endpoint.Endpoint {
	host := s.IP
	if host == "" || strings.Contains(host, ":") {
		// IPv6 literals are not accepted as endpoint hosts
		host = strings.TrimSuffix(s.Hostname, ".")
	}

	port := s.Port
	if p, err := strconv.Atoi(s.GetMetadata("wsport")); err == nil && p > 0 {
		port = p
	}

	if s.GetMetadata("tls") == "1" {
		secure = true
	}

	return endpoint.FromHostPort(host, port, secure)
}
