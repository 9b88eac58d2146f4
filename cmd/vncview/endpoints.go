package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/muurk/vncview/internal/config"
	"github.com/muurk/vncview/internal/ui"
)

var (
	endpointUsername string
	endpointViewOnly bool
	removeYes        bool
)

// endpointsCmd manages saved endpoints
var endpointsCmd = &cobra.Command{
	Use:     "endpoints",
	Aliases: []string{"ep"},
	Short:   "Manage saved endpoints",
	Long: `List, add and remove named endpoints in the config file.

Saved names can be used wherever an endpoint is expected. Passwords are
never stored; supply them through VNCVIEW_PASSWORD when connecting.`,
}

var endpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		listEndpoints(cmd.OutOrStdout(), st.reg)
		return nil
	},
}

var endpointsAddCmd = &cobra.Command{
	Use:   "add <name> <endpoint>",
	Short: "Save an endpoint under a name",
	Example: `  vncview endpoints add lab wss://lab.example.com:6080 --username alice
  vncview endpoints add kiosk ws://10.0.0.5:5901 --view-only`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		var viewOnly *bool
		if cmd.Flags().Changed("view-only") {
			viewOnly = &endpointViewOnly
		}
		return addEndpoint(cmd.OutOrStdout(), st, args[0], args[1], endpointUsername, viewOnly)
	},
}

var endpointsRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Forget a saved endpoint",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return removeEndpoint(cmd.OutOrStdout(), cmd.InOrStdin(), st, args[0], removeYes)
	},
}

func init() {
	endpointsAddCmd.Flags().StringVar(&endpointUsername, "username", "", "Username sent when connecting")
	endpointsAddCmd.Flags().BoolVar(&endpointViewOnly, "view-only", false, "Always connect in view-only mode")
	endpointsRemoveCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Do not ask for confirmation")

	endpointsCmd.AddCommand(endpointsListCmd, endpointsAddCmd, endpointsRemoveCmd)
	rootCmd.AddCommand(endpointsCmd)
}

func listEndpoints(out io.Writer, reg *config.Registry) {
	p := ui.NewPrinter(out)
	list := reg.SortedEndpoints()
	if len(list) == 0 {
		p.PrintHint("No saved endpoints. Add one with 'vncview endpoints add <name> <endpoint>'.")
		return
	}

	t := ui.NewTable("NAME", "ENDPOINT", "USER", "LAST USED")
	for _, ep := range list {
		used := "never"
		if !ep.LastUsed.IsZero() {
			used = ep.LastUsed.Local().Format("2006-01-02 15:04")
		}
		user := ep.Username
		if user == "" {
			user = "-"
		}
		t.AddRow(ep.Name, ep.URL, user, used)
	}
	p.PrintTable(t)
}

func addEndpoint(out io.Writer, st *store, name, url, username string, viewOnly *bool) error {
	p := ui.NewPrinter(out)
	if err := st.reg.SetEndpoint(name, url, username); err != nil {
		p.PrintError("Endpoint not saved", err, "Use ws://host[:port] or wss://host[:port]")
		return err
	}
	if viewOnly != nil {
		v := *viewOnly
		st.reg.GetEndpoint(name).ViewOnly = &v
	}
	if err := st.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	details := []ui.Detail{ui.D("Name", name), ui.D("Endpoint", url)}
	if username != "" {
		details = append(details, ui.D("Username", username))
	}
	p.PrintSuccess("Endpoint saved", details...)
	return nil
}

func removeEndpoint(out io.Writer, in io.Reader, st *store, name string, yes bool) error {
	p := ui.NewPrinter(out)
	ep := st.reg.GetEndpoint(name)
	if ep == nil {
		return fmt.Errorf("no saved endpoint named %q", name)
	}

	if !yes && !p.Confirm(in, "Remove endpoint", []string{fmt.Sprintf("%s (%s) will be forgotten", name, ep.URL)}, name) {
		return nil
	}

	st.reg.RemoveEndpoint(name)
	if err := st.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	p.PrintSuccess("Endpoint removed", ui.D("Name", name))
	return nil
}
