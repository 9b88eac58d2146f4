// Package ui provides styled terminal output for the vncview CLI.
//
// These components follow a "render once and exit" pattern: they render
// output with Lipgloss and return, without user interaction. The interactive
// viewer screen lives in the tui package and reuses the palette defined here.
//
// # Components
//
//   - Header: command banner showing operation name and parameters
//   - Result: success, failure and warning boxes with ordered details
//   - Table: aligned columns for endpoint and server listings
//   - Printer: writes the above to an io.Writer at the terminal width
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Validate", "vncview validate", ui.D("Endpoint", input))
//	p.PrintSuccess("Endpoint is valid", ui.D("Scheme", ep.Scheme))
//
// # Logging Integration
//
// Logging is controlled by the VNCVIEW_LOG_LEVEL environment variable. When
// unset, zap logging is silent so the styled output is displayed cleanly.
package ui
