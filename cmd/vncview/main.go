// Vncview is a terminal front end for remote-display (VNC over WebSocket)
// sessions.
//
// It validates a ws:// or wss:// endpoint, connects to it through a
// websockify-style bridge and shows the live connection state until the user
// disconnects. Saved endpoints and viewer preferences live in a YAML file in
// the user's config directory; passwords are never stored.
//
// Usage:
//
//	vncview [endpoint|name] [flags]
//
// Running without a command opens the interactive viewer.
// See 'vncview --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/vncview/internal/logging"
	"github.com/muurk/vncview/internal/version"
)

// Global flags
var (
	logLevel   string
	logFile    string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vncview [endpoint|name]",
	Short: "Remote display viewer",
	Long: `A terminal viewer for remote-display sessions over WebSocket.

Type a ws:// or wss:// endpoint (or pick a saved or discovered one), connect,
watch the session state and disconnect again.

If no command is specified, the interactive viewer opens. An endpoint or
saved endpoint name pre-fills the address field.`,
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args, false)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentPreRunE = initLogging
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		logging.Sync()
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")

	bindSessionFlags(rootCmd)
	bindSecureFlag(rootCmd)

	rootCmd.AddCommand(versionCmd)
}

// initLogging routes logs away from the terminal for interactive commands
func initLogging(cmd *cobra.Command, args []string) error {
	if interactive(cmd) || logFile != "" {
		return logging.InitializeToFile(logLevel, logFile)
	}
	return logging.Initialize(logLevel)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vncview %s\n", version.Full())
	},
}
