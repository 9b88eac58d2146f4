package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "vncview") {
		t.Errorf("GetConfigDir() = %v, should contain 'vncview'", configDir)
	}

	switch runtime.GOOS {
	case "linux":
		if configDir != filepath.Join("/tmp/xdg-test", "vncview") {
			t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME based path", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Endpoints == nil {
		t.Error("NewRegistry().Endpoints should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if !reg.Preferences.ScaleViewport || !reg.Preferences.ResizeSession {
		t.Error("scale and resize should be enabled by default")
	}
	if reg.Preferences.ViewOnly {
		t.Error("view-only should be disabled by default")
	}
	if reg.Preferences.DiscoverTimeout != 5 {
		t.Errorf("NewRegistry().Preferences.DiscoverTimeout = %v, want 5", reg.Preferences.DiscoverTimeout)
	}
}

func TestRegistrySetEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		url     string
		wantErr bool
	}{
		{"plain", "lab", "ws://lab.local:5901", false},
		{"secure without port", "office", "wss://vnc.example.com", false},
		{"empty name", "", "ws://host", true},
		{"empty url", "x", "", true},
		{"http scheme", "x", "http://host", true},
		{"path not allowed", "x", "ws://host/websockify", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.SetEndpoint(tt.key, tt.url, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetEndpoint(%q, %q) error = %v, wantErr %v", tt.key, tt.url, err, tt.wantErr)
			}
			if tt.wantErr {
				if len(reg.Endpoints) != 0 {
					t.Error("rejected endpoint should not be stored")
				}
				return
			}
			if got := reg.GetEndpoint(tt.key); got == nil || got.URL != tt.url {
				t.Errorf("GetEndpoint(%q) = %+v, want URL %q", tt.key, got, tt.url)
			}
		})
	}
}

func TestRegistrySetEndpointKeepsHistory(t *testing.T) {
	reg := NewRegistry()
	if err := reg.SetEndpoint("lab", "ws://lab:5901", ""); err != nil {
		t.Fatal(err)
	}
	reg.TouchEndpoint("ws://lab:5901")
	used := reg.GetEndpoint("lab").LastUsed
	if used.IsZero() {
		t.Fatal("TouchEndpoint() should set LastUsed")
	}

	if err := reg.SetEndpoint("lab", "ws://lab:5902", "alice"); err != nil {
		t.Fatal(err)
	}
	ep := reg.GetEndpoint("lab")
	if ep.URL != "ws://lab:5902" || ep.Username != "alice" {
		t.Errorf("endpoint not updated: %+v", ep)
	}
	if !ep.LastUsed.Equal(used) {
		t.Error("overwriting an endpoint should keep LastUsed")
	}
}

func TestRegistryRemoveEndpoint(t *testing.T) {
	reg := NewRegistry()
	_ = reg.SetEndpoint("lab", "ws://lab", "")

	if !reg.RemoveEndpoint("lab") {
		t.Error("RemoveEndpoint() = false for saved endpoint")
	}
	if reg.RemoveEndpoint("lab") {
		t.Error("RemoveEndpoint() = true for already removed endpoint")
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	_ = reg.SetEndpoint("lab", "ws://lab:5901", "")

	if url, ep := reg.Resolve("lab"); url != "ws://lab:5901" || ep == nil {
		t.Errorf("Resolve(lab) = %q, %v", url, ep)
	}
	if url, ep := reg.Resolve("ws://other"); url != "ws://other" || ep != nil {
		t.Errorf("Resolve(ws://other) = %q, %v", url, ep)
	}
}

func TestRegistrySortedEndpoints(t *testing.T) {
	reg := NewRegistry()
	_ = reg.SetEndpoint("b", "ws://b", "")
	_ = reg.SetEndpoint("a", "ws://a", "")
	_ = reg.SetEndpoint("c", "ws://c", "")
	reg.GetEndpoint("c").LastUsed = time.Now()

	var names []string
	for _, ep := range reg.SortedEndpoints() {
		names = append(names, ep.Name)
	}
	if got := strings.Join(names, ","); got != "c,a,b" {
		t.Errorf("SortedEndpoints() order = %s, want c,a,b", got)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	reg := NewRegistry()
	reg.Preferences.ViewOnly = true
	reg.Preferences.DefaultUsername = "operator"
	if err := reg.SetEndpoint("lab", "wss://lab.example.com:6080", "alice"); err != nil {
		t.Fatal(err)
	}
	reg.TouchEndpoint("wss://lab.example.com:6080")

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# vncview configuration file") {
		t.Error("saved file should start with the header comment")
	}
	if strings.Contains(strings.ToLower(string(data)), "password:") {
		t.Error("saved file must not contain a password field")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
		}
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !loaded.Preferences.ViewOnly || loaded.Preferences.DefaultUsername != "operator" {
		t.Errorf("preferences not round-tripped: %+v", loaded.Preferences)
	}
	ep := loaded.GetEndpoint("lab")
	if ep == nil {
		t.Fatal("endpoint lab missing after load")
	}
	if ep.URL != "wss://lab.example.com:6080" || ep.Username != "alice" || ep.LastUsed.IsZero() {
		t.Errorf("endpoint not round-tripped: %+v", ep)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	reg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if reg.Version != 1 || reg.Preferences == nil {
		t.Errorf("LoadFrom() on missing file should return defaults, got %+v", reg)
	}
}

func TestLoadFromRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"not yaml", "version: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom() error = nil, want error")
			}
		})
	}
}

func TestLoadFromFillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Endpoints == nil || reg.Preferences == nil {
		t.Error("missing sections should be initialised")
	}
}

func TestSaveUsesConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg := NewRegistry()
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	path, _ := GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written to %s: %v", path, err)
	}
}

func TestReloadRegistryPicksUpOtherWriters(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	first, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if len(first.Endpoints) != 0 {
		t.Fatalf("fresh registry has %d endpoints", len(first.Endpoints))
	}

	// Another process saves an endpoint
	other := NewRegistry()
	if err := other.SetEndpoint("lab", "ws://lab:5901", ""); err != nil {
		t.Fatal(err)
	}
	if err := other.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if cached, _ := LoadRegistry(); cached.GetEndpoint("lab") != nil {
		t.Error("LoadRegistry() should keep returning the cached instance")
	}

	reloaded, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if reloaded.GetEndpoint("lab") == nil {
		t.Error("ReloadRegistry() should see the saved endpoint")
	}
	if cached, _ := LoadRegistry(); cached != reloaded {
		t.Error("LoadRegistry() should return the reloaded instance")
	}
}

func BenchmarkSortedEndpoints(b *testing.B) {
	reg := NewRegistry()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_ = reg.SetEndpoint(name, "ws://"+name, "")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.SortedEndpoints()
	}
}
