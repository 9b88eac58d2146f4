// Package rfb defines the remote-display client capability used by the viewer.
//
// The viewer never touches the RFB wire protocol. It only needs to open a
// session against an endpoint, listen to a handful of lifecycle events and ask
// the session to disconnect. Those operations are captured by the Factory and
// Session interfaces so the lifecycle manager can be tested with fakes.
//
// # Events
//
// A Session reports its lifecycle on the channel returned by Events:
//
//	EventConnect             handshake finished, display is live
//	EventDisconnect          session ended (Clean reports an orderly close)
//	EventSecurityFailure     server or TLS layer rejected the session (Reason)
//	EventCredentialsRequired server wants credentials that were not supplied
//
// Events for one session are delivered in the order they happened. The
// channel is buffered and is closed once the session has fully stopped, so a
// consumer can simply range over it.
//
// # WebSocket Transport
//
// WSFactory opens sessions over gorilla/websocket, the transport used by
// websockify and noVNC:
//
//	factory := rfb.NewWSFactory()
//	sess, err := factory.Open(sink, "ws://vnc.local:6080", rfb.Options{ViewOnly: true})
//	if err != nil {
//	    return err
//	}
//	for ev := range sess.Events() {
//	    fmt.Println(ev)
//	}
//
// Binary frames received from the server are written, unmodified, to the
// container passed to Open.
package rfb
