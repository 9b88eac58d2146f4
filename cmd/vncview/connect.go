package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/vncview/internal/discovery"
	"github.com/muurk/vncview/internal/logging"
	"github.com/muurk/vncview/internal/rfb"
	"github.com/muurk/vncview/internal/tui"
	"github.com/muurk/vncview/internal/ui"
	"github.com/muurk/vncview/internal/viewer"
)

var plainOutput bool

// connectCmd connects straight away
var connectCmd = &cobra.Command{
	Use:   "connect <endpoint|name>",
	Short: "Connect to a remote display",
	Long: `Connect to a remote display and show the session state.

The argument is either a ws:// or wss:// endpoint or the name of a saved
endpoint. The password, if the server needs one, is read from
VNCVIEW_PASSWORD and never stored.

With --plain the session runs without the interactive screen: state changes
are printed line by line until the session ends or Ctrl+C is pressed.`,
	Example: `  # Open the viewer and connect
  vncview connect wss://lab.example.com:6080

  # Connect to a saved endpoint in view-only mode
  vncview connect lab --view-only

  # Authenticate and log to a file
  VNCVIEW_PASSWORD=secret vncview connect lab --username alice --log-level debug --log-file vncview.log

  # Scriptable output
  vncview connect ws://10.0.0.5:5901 --plain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args, true)
	},
}

func init() {
	connectCmd.Flags().BoolVar(&plainOutput, "plain", false, "Print state changes instead of opening the interactive screen")
	bindSessionFlags(connectCmd)
	bindSecureFlag(connectCmd)
	rootCmd.AddCommand(connectCmd)
}

// interactive reports whether cmd takes over the terminal
func interactive(cmd *cobra.Command) bool {
	switch cmd {
	case rootCmd:
		return true
	case connectCmd:
		return !plainOutput
	}
	return false
}

func runViewer(cmd *cobra.Command, args []string, autoConnect bool) error {
	st, err := openStore(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	url, saved := st.reg.Resolve(target)

	opts := sessionOptions(session, cmd.Flags().Changed, st.reg.Preferences, saved)
	factory := newFactory(session)

	logging.Info("Starting viewer",
		zap.String("endpoint", url),
		zap.Bool("auto_connect", autoConnect),
		zap.Bool("view_only", opts.ViewOnly),
		zap.Bool("credentials", !opts.Credentials.Empty()),
	)

	if autoConnect && plainOutput {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPlain(ctx, cmd.OutOrStdout(), factory, url, opts, func() {
			st.reg.TouchEndpoint(url)
			if err := st.Save(); err != nil {
				logging.Warn("Failed to record endpoint use", zap.Error(err))
			}
		})
	}

	timeout := time.Duration(st.reg.Preferences.DiscoverTimeout) * time.Second
	return tui.Run(tui.Options{
		Factory:        factory,
		Session:        opts,
		Endpoint:       url,
		AutoConnect:    autoConnect,
		Registry:       st.reg,
		ReloadRegistry: st.Reload,
		SaveRegistry:   st.SaveRegistry,
		Scan: func(ctx context.Context) ([]*discovery.Server, error) {
			return discovery.Scan(ctx, timeout)
		},
		SecureDiscovered: session.secure,
	})
}

// consoleListener forwards manager notifications, in order, to runPlain
type consoleListener struct {
	notes chan any
}

func (l *consoleListener) OnState(s viewer.State) {
	l.push(s)
}

func (l *consoleListener) OnSignal(s viewer.Signal) {
	l.push(s)
}

// push never blocks; the manager forbids blocking listeners
func (l *consoleListener) push(n any) {
	select {
	case l.notes <- n:
	default:
		logging.Debug("Dropping console notification", zap.Any("note", n))
	}
}

// runPlain connects without the interactive screen and returns when the
// session ends or ctx is cancelled. The session is always torn down.
func runPlain(ctx context.Context, out io.Writer, factory rfb.Factory, target string, opts rfb.Options, onConnected func()) error {
	l := &consoleListener{notes: make(chan any, 64)}
	mgr := viewer.New(factory, io.Discard, l)
	defer mgr.Close()

	var (
		lastErr   error
		sawIdle   bool
		sawEnding bool
	)

	// report prints one notification and tracks whether the session is over
	report := func(n any) {
		switch n := n.(type) {
		case viewer.State:
			fmt.Fprintf(out, "  %s %s\n", ui.InfoMarker, n)
			switch n.Phase {
			case viewer.Connected:
				if onConnected != nil {
					onConnected()
				}
			case viewer.Idle:
				sawIdle = true
			}
		case viewer.Signal:
			printSignal(out, n)
			switch {
			case n.Kind == viewer.SignalError:
				lastErr = n.Err
				sawEnding = true
			case n.Kind == viewer.SignalInfo:
				if n.Unexpected {
					lastErr = n.Err
				}
				sawEnding = true
			}
		}
	}

	// drain prints whatever is already queued
	drain := func() {
		for {
			select {
			case n := <-l.notes:
				report(n)
			default:
				return
			}
		}
	}

	if err := mgr.ConnectTo(target, opts); err != nil {
		drain()
		return err
	}

	for {
		select {
		case <-ctx.Done():
			mgr.Disconnect()
			drain()
			fmt.Fprintln(out, ui.HelpStyle.Render("  interrupted"))
			return nil

		case n := <-l.notes:
			report(n)
			if sawIdle && sawEnding {
				return lastErr
			}
		}
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func printSignal(out io.Writer, s viewer.Signal) {
	marker := ui.InfoMarker
	style := ui.ResultValueStyle
	switch s.Kind {
	case viewer.SignalSuccess:
		marker, style = ui.SuccessMarker, ui.SuccessTitleStyle
	case viewer.SignalWarning:
		marker, style = ui.WarningMarker, ui.WarningTitleStyle
	case viewer.SignalError:
		marker, style = ui.FailureMarker, ui.ErrorTitleStyle
	}
	fmt.Fprintln(out, style.Render(fmt.Sprintf("  %s %s", marker, s.Text)))
	if s.Err != nil && s.Kind == viewer.SignalError {
		fmt.Fprintln(out, ui.HelpStyle.Render(indent(viewer.TroubleshootingHint(s.Err), "    ")))
	}
}
