// Package discovery provides mDNS-based discovery of remote-display servers.
//
// VNC servers advertise themselves with the "_rfb._tcp" service type. The
// scanner browses for that type until its timeout expires and returns every
// server with a usable address. A server's WebSocket endpoint is derived from
// its address and port; the optional TXT records "wsport" and "tls=1" point
// at a websockify proxy in front of it.
//
// # Usage Example
//
//	servers, err := discovery.Scan(ctx, 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	for _, s := range servers {
//	    fmt.Println(s.Name, s.Endpoint(false))
//	}
package discovery
