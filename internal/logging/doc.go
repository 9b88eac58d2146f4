// Package logging provides structured logging for vncview.
//
// This package wraps a zap logger with package-level helpers so that library
// code can log without threading a logger through every constructor. Logging
// is silent unless a level is configured.
//
// # Log Levels
//
//   - Debug: session events, stale events dropped by the lifecycle manager
//   - Info: connection state changes
//   - Warn: dial failures, container write errors
//   - Error: failures the user cannot recover from in-process
//
// # Configuration
//
// Command-line tools log to stderr:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// The interactive viewer draws over the whole terminal, so it logs to a file
// named by --log-file or VNCVIEW_LOG_FILE:
//
//	logging.InitializeToFile(level, "/tmp/vncview.log")
//
// With no level (flag or VNCVIEW_LOG_LEVEL) the logger is a no-op.
//
// # Domain Helpers
//
//	logging.LogTransition("Connecting", "Connected", "session:connect", handleID)
//	logging.LogSessionEvent("ws://vnc.local:6080", "disconnect", true)
//
// Credentials are never passed to any logging helper.
package logging
