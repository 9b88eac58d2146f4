package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/vncview/internal/endpoint"
	"github.com/muurk/vncview/internal/ui"
	"github.com/muurk/vncview/internal/viewer"
)

// validateCmd checks endpoints without connecting
var validateCmd = &cobra.Command{
	Use:   "validate <endpoint>...",
	Short: "Check endpoint syntax without connecting",
	Long: `Check that each argument is a well-formed remote-display endpoint.

An endpoint is ws:// or wss:// followed by a host and an optional port.
Paths, queries and user information are not accepted.`,
	Example: `  vncview validate ws://10.0.0.5:5901
  vncview validate wss://lab.example.com ws://bad/path`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, inputs []string) error {
	p := ui.NewPrinter(out)
	invalid := 0

	for _, input := range inputs {
		ep, err := endpoint.Parse(input)
		if err != nil {
			invalid++
			vErr := viewer.NewValidationError(err.Error(), err)
			p.PrintError(fmt.Sprintf("%q is not a valid endpoint", input), vErr, hintLines(vErr)...)
			continue
		}

		port := strconv.Itoa(ep.EffectivePort())
		if ep.Port == 0 {
			port += " (default)"
		}
		p.PrintSuccess("Endpoint is valid",
			ui.D("Endpoint", ep.String()),
			ui.D("Scheme", ep.Scheme),
			ui.D("Host", ep.Host),
			ui.D("Port", port),
			ui.D("TLS", strconv.FormatBool(ep.Secure())),
		)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d endpoint(s) invalid", invalid, len(inputs))
	}
	return nil
}

// hintLines turns a troubleshooting hint into bullet items for a result box
func hintLines(err error) []string {
	var lines []string
	for _, line := range strings.Split(viewer.TroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
