// Package viewer implements the connection lifecycle manager for vncview.
//
// A Manager validates the endpoint the user typed, owns the single
// remote-display session, turns session events into state changes and
// user-facing signals, and makes sure the session is torn down on every exit
// path.
//
// # State Machine
//
//	          connect (valid)            session connect
//	  Idle ─────────────────► Connecting ───────────────► Connected
//	   ▲                          │  │                        │
//	   │   session disconnect     │  │ security failure       │ user disconnect
//	   ├──────────────────────────┘  ▼                        ▼
//	   ├────────────────────────── Failed            Disconnecting
//	   └──────────────────────────────────────────────────────┘
//
// The full table lives in transitions and can be queried with Next. Failed and
// Disconnecting are transient: the manager always settles back to Idle within
// the same operation, so every error leaves the viewer ready for a fresh,
// user-initiated Connect. Nothing is retried automatically.
//
// # Ownership
//
// The manager holds at most one session at a time. Each session gets a
// handle id; events that arrive from a session after its handle has been
// released (user disconnect, security failure, teardown) are dropped, so a
// late "connect" from an abandoned attempt cannot resurrect it.
//
// # Usage
//
//	mgr := viewer.New(rfb.NewWSFactory(), display, listener)
//	defer mgr.Close()
//
//	if err := mgr.ConnectTo("ws://vnc.local:6080", rfb.Options{ViewOnly: true}); err != nil {
//	    fmt.Println(viewer.ShortMessage(err))
//	}
//
// Listener.OnState receives every state change and Listener.OnSignal receives
// success, info, warning and error notifications. Credentials in rfb.Options
// are forwarded to the factory untouched and never logged.
package viewer
