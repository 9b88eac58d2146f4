package main

import (
	"github.com/muurk/vncview/internal/config"
)

// store is the registry plus where it was loaded from
type store struct {
	path string // empty means the default location
	reg  *config.Registry
}

// openStore loads the registry from path, or from the default location
func openStore(path string) (*store, error) {
	if path == "" {
		reg, err := config.LoadRegistry()
		if err != nil {
			return nil, err
		}
		return &store{reg: reg}, nil
	}

	reg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	return &store{path: path, reg: reg}, nil
}

// Save writes the registry back to where it came from
func (s *store) Save() error {
	return s.SaveRegistry(s.reg)
}

// Reload rereads the registry, picking up changes made by other commands
func (s *store) Reload() (*config.Registry, error) {
	var (
		reg *config.Registry
		err error
	)
	if s.path == "" {
		reg, err = config.ReloadRegistry()
	} else {
		reg, err = config.LoadFrom(s.path)
	}
	if err != nil {
		return nil, err
	}
	s.reg = reg
	return reg, nil
}

// SaveRegistry writes reg to the store's location
func (s *store) SaveRegistry(reg *config.Registry) error {
	if s.path == "" {
		return reg.Save()
	}
	return reg.SaveTo(s.path)
}
