package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/vncview/internal/discovery"
	"github.com/muurk/vncview/internal/ui"
)

var (
	discoverTimeout int
	discoverSave    bool
)

// discoverCmd lists servers advertised over mDNS
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find remote-display servers on the local network",
	Long: `Find VNC servers that advertise the _rfb._tcp service over mDNS.

Each server is shown with the WebSocket endpoint vncview would use for it.
Servers behind a websockify bridge can advertise the bridge port with a
"wsport" TXT record and TLS with "tls=1".`,
	Example: `  # Scan with the configured timeout
  vncview discover

  # Longer scan, save results as endpoints
  vncview discover --timeout 15 --save`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 0, "Scan timeout in seconds (default from preferences)")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Save discovered servers as named endpoints")
	bindSecureFlag(discoverCmd)
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	st, err := openStore(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	timeout := discoverTimeout
	if timeout <= 0 {
		timeout = st.reg.Preferences.DiscoverTimeout
	}
	if timeout <= 0 {
		timeout = int(discovery.DefaultScanTimeout / time.Second)
	}

	out := cmd.OutOrStdout()
	p := ui.NewPrinter(out)
	p.PrintHeader("Discover", "vncview discover",
		ui.D("Service", discovery.ServiceType),
		ui.D("Timeout", fmt.Sprintf("%ds", timeout)),
	)

	servers, err := discovery.Scan(cmd.Context(), time.Duration(timeout)*time.Second)
	if err != nil {
		p.PrintError("Discovery failed", err,
			"Multicast DNS must be allowed on this network",
			"Check that no firewall blocks UDP port 5353",
		)
		return fmt.Errorf("scan failed: %w", err)
	}

	printServers(out, p, servers, session.secure)
	if len(servers) == 0 || !discoverSave {
		return nil
	}

	saved, err := saveServers(st, servers, session.secure)
	if err != nil {
		return fmt.Errorf("failed to save endpoints: %w", err)
	}
	p.PrintSuccess("Endpoints saved", ui.D("Saved", fmt.Sprintf("%d", saved)))
	return nil
}

func printServers(out io.Writer, p *ui.Printer, servers []*discovery.Server, secure bool) {
	if len(servers) == 0 {
		p.PrintWarning("No servers found",
			ui.D("Tip", "Make sure the server advertises _rfb._tcp"),
			ui.D("Tip", "Try a longer --timeout"),
			ui.D("Tip", "Enter the endpoint manually with 'vncview connect'"),
		)
		return
	}

	t := ui.NewTable("NAME", "ENDPOINT", "ADDRESS")
	for _, s := range servers {
		t.AddRow(s.Name, s.Endpoint(secure).String(), fmt.Sprintf("%s (%s)", s.IP, s.Hostname))
	}
	p.PrintTable(t)
	p.Newline()
	p.PrintHint(fmt.Sprintf("Found %d server(s). Use 'vncview connect <endpoint>' to connect.", len(servers)))
}

// saveServers stores each server under its advertised name
func saveServers(st *store, servers []*discovery.Server, secure bool) (int, error) {
	saved := 0
	for _, s := range servers {
		if err := st.reg.SetEndpoint(s.Name, s.Endpoint(secure).String(), ""); err != nil {
			continue
		}
		saved++
	}
	if saved == 0 {
		return 0, nil
	}
	return saved, st.Save()
}
