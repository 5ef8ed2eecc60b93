package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/linewire-protocol/linewire-go/pkg/log"
)

// Transport constants.
const (
	// DefaultDialTimeout bounds connection attempts. Dialing is always
	// blocking, regardless of the handle's configured mode.
	DefaultDialTimeout = 5 * time.Second

	// DefaultTimeout is the default blocking operation timeout.
	DefaultTimeout = 5 * time.Second

	// nonBlockingPollDelay is the deadline applied to reads and writes in
	// non-blocking mode. Long enough to drain data already buffered by the
	// kernel, short enough that callers perceive an immediate return.
	nonBlockingPollDelay = time.Millisecond
)

// Config configures a transport handle.
type Config struct {
	// ID identifies the owning channel in log events.
	ID string

	// Interface is the named local interface to bind outbound sockets to.
	// Empty means the default route. Lookup and bind failures are ignored
	// (best-effort collaborator).
	Interface string

	// UseTLS wraps dialed connections in a TLS client session.
	UseTLS bool

	// TLSConfig is the TLS client configuration. Nil with UseTLS set uses
	// a default config with the dial address as ServerName.
	TLSConfig *tls.Config

	// KeepAlive is the OS-level keep-alive configuration.
	KeepAlive KeepAliveConfig

	// DialTimeout bounds connection attempts (default: 5s).
	DialTimeout time.Duration

	// Logger receives structured error and state events. Nil disables.
	Logger log.Logger
}

// Conn is a transport handle owning one stream socket.
//
// A Conn is not safe for concurrent use; it belongs to the single
// goroutine driving the channel's polling loop.
type Conn struct {
	cfg Config

	conn      net.Conn
	addr      string
	port      int
	connected bool

	blocking bool
	timeout  time.Duration
}

// New creates a disconnected transport handle. The handle starts in
// non-blocking mode with the default timeout.
func New(cfg Config) *Conn {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.KeepAlive == (KeepAliveConfig{}) {
		cfg.KeepAlive = DefaultKeepAliveConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	return &Conn{
		cfg:     cfg,
		timeout: DefaultTimeout,
	}
}

// Dial connects to addr:port. It blocks regardless of the handle's
// configured mode; callers that need a non-blocking connect must dial
// externally and use Attach. The address and port are retained for Redial
// even when the attempt fails.
func (c *Conn) Dial(ctx context.Context, addr string, port int) error {
	c.addr = addr
	c.port = port

	target := net.JoinHostPort(addr, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: c.cfg.DialTimeout}
	if c.cfg.Interface != "" {
		if ip, err := LookupInterfaceAddr(c.cfg.Interface); err == nil {
			dialer.LocalAddr = &net.TCPAddr{IP: ip}
		} else {
			c.record("bind interface", err)
		}
	}

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		c.record("dial "+target, err)
		c.Close()
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	if c.cfg.UseTLS {
		tlsConf := c.cfg.TLSConfig
		if tlsConf == nil {
			tlsConf = &tls.Config{ServerName: addr}
		}
		tlsConn := tls.Client(conn, tlsConf)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			c.record("tls handshake "+target, err)
			conn.Close()
			c.Close()
			return fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
		conn = tlsConn
	}

	c.conn = conn
	c.connected = true

	if err := configureKeepAlive(conn, c.cfg.KeepAlive); err != nil {
		c.record("configure keep-alive", err)
	}

	c.cfg.Logger.Log(log.StateEvent(c.cfg.ID, target, "DISCONNECTED", "CONNECTED", ""))
	return nil
}

// Redial retries the last Dial. It is a no-op when already connected or
// when no prior address is known. Failures are swallowed; the handle is
// simply left disconnected. Returns the resulting connected state.
func (c *Conn) Redial(ctx context.Context) bool {
	if c.connected || c.addr == "" {
		return c.connected
	}
	_ = c.Dial(ctx, c.addr, c.port)
	return c.connected
}

// Attach adopts an already-established connection, e.g. from an accept
// loop or a pre-negotiated TLS session. Any prior socket is closed first;
// keep-alive is re-applied and the peer address recovered so the handle
// can redial later. A connection with no readable peer address is left
// attached but marked disconnected.
func (c *Conn) Attach(conn net.Conn) {
	c.Close()

	c.conn = conn
	c.connected = true

	if err := configureKeepAlive(conn, c.cfg.KeepAlive); err != nil {
		c.record("configure keep-alive", err)
	}

	ra := conn.RemoteAddr()
	if ra == nil {
		c.connected = false
		return
	}
	if host, portStr, err := net.SplitHostPort(ra.String()); err == nil {
		if port, err := strconv.Atoi(portStr); err == nil {
			c.addr = host
			c.port = port
		}
	}
	// Synthetic addresses (net.Pipe) don't parse; the prior addr/port
	// stays in place for Redial.
}

// SetBlocking toggles the emulated blocking mode. In blocking mode a
// positive timeout replaces the operation timeout; non-blocking mode
// carries no timeout and relies on external polling.
func (c *Conn) SetBlocking(blocking bool, timeout time.Duration) {
	c.blocking = blocking
	if blocking && timeout > 0 {
		c.timeout = timeout
	}
}

// Blocking reports the current emulated mode.
func (c *Conn) Blocking() bool {
	return c.blocking
}

// Timeout returns the blocking operation timeout.
func (c *Conn) Timeout() time.Duration {
	return c.timeout
}

// Connected reports whether the handle considers itself connected.
// Connection loss is sticky: once the handle closes, Connected stays
// false until a Dial or Redial succeeds.
func (c *Conn) Connected() bool {
	return c.connected
}

// Addr returns the stored peer address and port.
func (c *Conn) Addr() (string, int) {
	return c.addr, c.port
}

// RemoteAddr returns the remote network address, or nil when disconnected.
func (c *Conn) RemoteAddr() net.Addr {
	if c.conn == nil {
		return nil
	}
	return c.conn.RemoteAddr()
}

// LocalAddr returns the local network address, or nil when disconnected.
func (c *Conn) LocalAddr() net.Addr {
	if c.conn == nil {
		return nil
	}
	return c.conn.LocalAddr()
}

// Close shuts the socket down. Idempotent: a best-effort graceful
// write-side shutdown followed by an unconditional release. The stored
// address and port survive so Redial can re-establish the connection.
func (c *Conn) Close() {
	wasConnected := c.connected
	c.connected = false

	if c.conn == nil {
		return
	}

	if cw, ok := c.conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	_ = c.conn.Close()
	c.conn = nil

	if wasConnected {
		c.cfg.Logger.Log(log.StateEvent(c.cfg.ID, net.JoinHostPort(c.addr, strconv.Itoa(c.port)),
			"CONNECTED", "DISCONNECTED", ""))
	}
}

// Recv reads at most len(p) bytes. The deadline follows the current mode:
// the configured timeout when blocking, the poll delay when not. Errors
// come back classified (ErrWouldBlock, ErrTimeout, io.EOF for orderly
// close, anything else fatal). Data may accompany an error; callers must
// consume n bytes before acting on err.
func (c *Conn) Recv(p []byte) (int, error) {
	if !c.connected || c.conn == nil {
		return 0, ErrNotConnected
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.ioDeadline()))
	n, err := c.conn.Read(p)
	return n, classifyIOError(err, c.blocking)
}

// Send writes p, returning the number of bytes written and a classified
// error. A short write with ErrWouldBlock is normal in non-blocking mode.
func (c *Conn) Send(p []byte) (int, error) {
	if !c.connected || c.conn == nil {
		return 0, ErrNotConnected
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.ioDeadline()))
	n, err := c.conn.Write(p)
	return n, classifyIOError(err, c.blocking)
}

func (c *Conn) ioDeadline() time.Duration {
	if c.blocking {
		return c.timeout
	}
	return nonBlockingPollDelay
}

func (c *Conn) record(context string, err error) {
	c.cfg.Logger.Log(log.ErrorEvent(c.cfg.ID, context, err))
}
