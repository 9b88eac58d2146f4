package rfb

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/vncview/internal/logging"
	"github.com/muurk/vncview/internal/version"
)

const (
	// DefaultHandshakeTimeout bounds the WebSocket upgrade
	DefaultHandshakeTimeout = 15 * time.Second

	// Subprotocol is the WebSocket subprotocol spoken by websockify
	Subprotocol = "binary"

	// Time allowed to write the close frame on disconnect
	closeWait = time.Second

	// Time allowed to write an input message
	writeWait = 10 * time.Second

	// Buffer for session events; a session emits at most a few
	eventBuffer = 8
)

// WSFactory opens sessions over WebSocket
type WSFactory struct {
	// HandshakeTimeout bounds the HTTP upgrade (0 = DefaultHandshakeTimeout)
	HandshakeTimeout time.Duration

	// TLSClientConfig is used for wss endpoints (nil = system defaults)
	TLSClientConfig *tls.Config
}

// NewWSFactory creates a factory with default settings
func NewWSFactory() *WSFactory {
	return &WSFactory{
		HandshakeTimeout: DefaultHandshakeTimeout,
	}
}

// Open starts a session against target and returns immediately.
// The handshake runs in the background and reports through Events.
func (f *WSFactory) Open(container io.Writer, target string, opts Options) (Session, error) {
	if container == nil {
		return nil, ErrNoContainer
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported scheme %q (want ws or wss)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid target %q: missing host", target)
	}

	timeout := f.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &WSSession{
		target:    target,
		container: container,
		opts:      opts,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
			Subprotocols:     []string{Subprotocol},
			TLSClientConfig:  f.TLSClientConfig,
		},
		events: make(chan Event, eventBuffer),
		ctx:    ctx,
		cancel: cancel,
	}

	go s.run()
	return s, nil
}

// WSSession is a Session backed by a gorilla/websocket connection
type WSSession struct {
	target    string
	container io.Writer
	opts      Options
	dialer    *websocket.Dialer

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex // guards conn
	conn    *websocket.Conn
	writeMu sync.Mutex // serialises input writes

	closeOnce sync.Once
}

// Events implements Session
func (s *WSSession) Events() <-chan Event {
	return s.events
}

// Disconnect implements Session
func (s *WSSession) Disconnect() {
	s.cancel()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		s.closeConn(conn)
	}
}

// Options returns the configuration the session was opened with
func (s *WSSession) Options() Options {
	return s.opts
}

// SendInput writes an already-encoded input message to the server.
// View-only sessions reject all input.
func (s *WSSession) SendInput(data []byte) error {
	if s.opts.ViewOnly {
		return ErrViewOnly
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

func (s *WSSession) closeConn(conn *websocket.Conn) {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
		_ = conn.Close()
	})
}

func (s *WSSession) emit(ev Event) {
	logging.LogSessionEvent(s.target, string(ev.Type), ev.Clean)
	s.events <- ev
}

// run drives one session from dial to close. It is the only sender on events.
func (s *WSSession) run() {
	defer close(s.events)

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	if !s.opts.Credentials.Empty() {
		header.Set("Authorization", basicAuth(s.opts.Credentials))
	}

	conn, resp, err := s.dialer.DialContext(s.ctx, s.target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		s.handleDialError(err, resp)
		return
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		// Disconnect raced the handshake
		s.mu.Unlock()
		s.closeConn(conn)
		s.emit(Event{Type: EventDisconnect, Clean: true})
		return
	}
	s.conn = conn
	s.mu.Unlock()

	logging.Debug("WebSocket session established",
		zap.String("target", s.target),
		zap.String("subprotocol", conn.Subprotocol()),
	)
	s.emit(Event{Type: EventConnect})

	s.readLoop(conn)
}

func (s *WSSession) handleDialError(err error, resp *http.Response) {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	switch {
	case s.ctx.Err() != nil:
		s.emit(Event{Type: EventDisconnect, Clean: true})

	case status == http.StatusUnauthorized && s.opts.Credentials.Empty():
		// No credentials to offer; the attempt stays parked until disconnected
		s.emit(Event{Type: EventCredentialsRequired})
		<-s.ctx.Done()
		s.emit(Event{Type: EventDisconnect, Clean: true})

	case status == http.StatusUnauthorized:
		s.emit(Event{Type: EventSecurityFailure, Reason: "authentication failed"})
		s.emit(Event{Type: EventDisconnect, Err: err})

	case status == http.StatusForbidden:
		s.emit(Event{Type: EventSecurityFailure, Reason: fmt.Sprintf("server refused session: %s", resp.Status)})
		s.emit(Event{Type: EventDisconnect, Err: err})

	case isTLSFailure(err):
		s.emit(Event{Type: EventSecurityFailure, Reason: err.Error()})
		s.emit(Event{Type: EventDisconnect, Err: err})

	default:
		logging.Warn("WebSocket dial failed",
			zap.String("target", s.target),
			zap.Int("status", status),
			zap.Error(err),
		)
		s.emit(Event{Type: EventDisconnect, Err: err})
	}
}

func (s *WSSession) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			clean := s.ctx.Err() != nil ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			ev := Event{Type: EventDisconnect, Clean: clean}
			if !clean {
				ev.Err = err
			}
			s.closeConn(conn)
			s.emit(ev)
			return
		}

		if msgType != websocket.BinaryMessage {
			continue
		}
		if _, err := s.container.Write(data); err != nil {
			logging.Warn("Display container rejected data",
				zap.String("target", s.target),
				zap.Int("length", len(data)),
				zap.Error(err),
			)
		}
	}
}

func basicAuth(c Credentials) string {
	raw := c.Username + ":" + c.Password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

func isTLSFailure(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	return errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr)
}
