package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/muurk/vncview/internal/endpoint"
)

// Registry represents the entire user configuration file.
// It stores saved endpoints and viewer preferences.
type Registry struct {
	Version     int                       `yaml:"version"`
	Endpoints   map[string]*SavedEndpoint `yaml:"endpoints,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences              `yaml:"preferences,omitempty"`
}

// SavedEndpoint is a named remote-display address.
type SavedEndpoint struct {
	URL      string    `yaml:"url"`                 // ws:// or wss:// address
	Username string    `yaml:"username,omitempty"`  // Optional username forwarded on connect
	ViewOnly *bool     `yaml:"view_only,omitempty"` // Overrides the global preference when set
	LastUsed time.Time `yaml:"last_used,omitempty"` // Last successful connect
	// Passwords are NEVER stored in the config file
}

// NamedEndpoint pairs a saved endpoint with its registry key.
type NamedEndpoint struct {
	Name string
	*SavedEndpoint
}

// Preferences represents application-wide viewer preferences.
// Command-line flags override these values.
type Preferences struct {
	ViewOnly        bool   `yaml:"view_only"`                  // Never send input to the server
	ScaleViewport   bool   `yaml:"scale_viewport"`             // Scale the remote display to fit
	ResizeSession   bool   `yaml:"resize_session"`             // Ask the server to match our size
	DiscoverTimeout int    `yaml:"discover_timeout"`           // mDNS discovery timeout in seconds
	DefaultUsername string `yaml:"default_username,omitempty"` // Username used when none is given
}

// DefaultPreferences returns the preferences used for a fresh config file.
func DefaultPreferences() *Preferences {
	return &Preferences{
		ViewOnly:        false,
		ScaleViewport:   true,
		ResizeSession:   true,
		DiscoverTimeout: 5,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Endpoints:   make(map[string]*SavedEndpoint),
		Preferences: DefaultPreferences(),
	}
}

// GetEndpoint retrieves a saved endpoint by name.
// Returns nil if no endpoint is saved under that name.
func (r *Registry) GetEndpoint(name string) *SavedEndpoint {
	return r.Endpoints[name]
}

// SetEndpoint saves url under name, replacing any previous entry.
// The url must pass endpoint validation.
func (r *Registry) SetEndpoint(name, url, username string) error {
	if name == "" {
		return fmt.Errorf("endpoint name cannot be empty")
	}
	if res := endpoint.Validate(url); !res.OK() {
		return fmt.Errorf("endpoint %q: %w", name, res.Err())
	}

	if r.Endpoints == nil {
		r.Endpoints = make(map[string]*SavedEndpoint)
	}

	saved := &SavedEndpoint{URL: url, Username: username}
	if prev, ok := r.Endpoints[name]; ok {
		saved.ViewOnly = prev.ViewOnly
		saved.LastUsed = prev.LastUsed
	}
	r.Endpoints[name] = saved
	return nil
}

// RemoveEndpoint deletes a saved endpoint. Returns false if it did not exist.
func (r *Registry) RemoveEndpoint(name string) bool {
	if _, ok := r.Endpoints[name]; !ok {
		return false
	}
	delete(r.Endpoints, name)
	return true
}

// TouchEndpoint records a successful connect to every saved entry with url.
func (r *Registry) TouchEndpoint(url string) {
	now := time.Now()
	for _, ep := range r.Endpoints {
		if ep.URL == url {
			ep.LastUsed = now
		}
	}
}

// Resolve returns the URL saved under nameOrURL, or nameOrURL itself when no
// endpoint has that name.
func (r *Registry) Resolve(nameOrURL string) (string, *SavedEndpoint) {
	if ep := r.GetEndpoint(nameOrURL); ep != nil {
		return ep.URL, ep
	}
	return nameOrURL, nil
}

// SortedEndpoints returns saved endpoints ordered by most recent use, then name.
func (r *Registry) SortedEndpoints() []NamedEndpoint {
	list := make([]NamedEndpoint, 0, len(r.Endpoints))
	for name, ep := range r.Endpoints {
		list = append(list, NamedEndpoint{Name: name, SavedEndpoint: ep})
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].LastUsed.Equal(list[j].LastUsed) {
			return list[i].LastUsed.After(list[j].LastUsed)
		}
		return list[i].Name < list[j].Name
	})
	return list
}
