// Package config provides user configuration management for vncview.
//
// This package manages a YAML-based configuration file that stores named
// remote-display endpoints and viewer preferences. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/vncview/config.yaml or $HOME/.config/vncview/config.yaml
//   - macOS: $HOME/.config/vncview/config.yaml
//   - Windows: %LOCALAPPDATA%\vncview\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores passwords. The viewer reads them from
// the VNCVIEW_PASSWORD environment variable at connect time.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.SetEndpoint("lab", "wss://lab.example.com:6080", "alice"); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # File Format
//
//	version: 1
//	endpoints:
//	  lab:
//	    url: wss://lab.example.com:6080
//	    username: alice
//	    last_used: 2026-10-15T09:30:00Z
//	preferences:
//	  view_only: false
//	  scale_viewport: true
//	  resize_session: true
//	  discover_timeout: 5
//
// # Thread Safety
//
// LoadRegistry loads the file once per process. File writes are serialised
// and atomic (temporary file plus rename).
package config
