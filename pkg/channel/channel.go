package channel

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/linewire-protocol/linewire-go/pkg/log"
	"github.com/linewire-protocol/linewire-go/pkg/transport"
)

// Channel constants. Values follow the linewire wire protocol.
const (
	// Delimiter terminates every message on the wire.
	Delimiter = "\r\n"

	// DefaultMaxBuf is the accumulation buffer ceiling (1 MiB).
	DefaultMaxBuf = 1024 * 1024

	// DefaultMaxChunks caps chunk reads per non-blocking poll cycle.
	// Prevents spamming of multiple short messages.
	DefaultMaxChunks = 1024

	// DefaultChunkSize is the maximum bytes pulled per transport read.
	DefaultChunkSize = 100 * 1024

	// DefaultTimeout is the default blocking operation timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultRecvTimeout is the default Recv timeout.
	DefaultRecvTimeout = 10 * time.Second

	// DefaultRecvLineTimeout is the default RecvLine timeout.
	DefaultRecvLineTimeout = 2 * time.Second

	// DefaultHeartbeatInterval is how long a connection may sit idle
	// before an application-level probe line is sent.
	DefaultHeartbeatInterval = 5 * time.Minute

	// HeartbeatProbe is the liveness probe line.
	HeartbeatProbe = "PING"

	// blockingRetryWait is the fixed re-poll interval for blocking
	// callers waiting on an incomplete line.
	blockingRetryWait = 200 * time.Millisecond
)

// Mode selects how received chunks are treated.
type Mode uint8

const (
	// ModeText requires chunks to be valid UTF-8; invalid chunks are
	// dropped and recorded, polling continues.
	ModeText Mode = iota

	// ModeRaw appends chunks verbatim.
	ModeRaw
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "TEXT"
	case ModeRaw:
		return "RAW"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Channel.
type Config struct {
	// Addr and Port are the peer to dial. Both may be left empty when
	// the channel will adopt an external connection via Attach.
	Addr string
	Port int

	// Blocking selects the channel's default mode.
	Blocking bool

	// Timeout is the blocking operation timeout (default: 5s).
	Timeout time.Duration

	// Interface names a local interface to bind outbound sockets to.
	Interface string

	// UseTLS wraps the connection in a TLS client session.
	UseTLS bool

	// TLSConfig is the TLS client configuration (optional).
	TLSConfig *tls.Config

	// Mode selects text or raw buffering (default: ModeText).
	Mode Mode

	// Delimiter overrides the message delimiter (default: "\r\n").
	// Must stay constant for the lifetime of the connection.
	Delimiter string

	// MaxBuf caps the accumulation buffer (default: 1 MiB).
	MaxBuf int

	// MaxChunks caps chunk reads per non-blocking poll (default: 1024).
	MaxChunks int

	// ChunkSize caps bytes per transport read (default: 100 KiB).
	ChunkSize int

	// KeepAlive is the OS-level keep-alive configuration.
	KeepAlive transport.KeepAliveConfig

	// HeartbeatInterval is the idle time before an application PING
	// (default: 5 minutes).
	HeartbeatInterval time.Duration

	// Logger receives structured channel events. Nil disables.
	Logger log.Logger
}

// Channel is one buffered-socket instance wrapping exactly one TCP (or
// TLS) connection.
//
// A Channel is single-threaded by design: all state is touched only by
// the calling goroutine and no locks are taken. Cross-goroutine sharing
// is not supported.
type Channel struct {
	cfg    Config
	id     string
	conn   *transport.Conn
	logger log.Logger

	// Default mode, restored after scoped overrides.
	blocking bool
	timeout  time.Duration

	buf     []byte
	replies []string
	filter  func(string) bool

	delim         []byte
	lastHeartbeat time.Time
}

// New creates a disconnected channel. Use Connect or Attach to bring it
// up, or Dial to do both in one step.
func New(cfg Config) *Channel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = Delimiter
	}
	if cfg.MaxBuf <= 0 {
		cfg.MaxBuf = DefaultMaxBuf
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = DefaultMaxChunks
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}

	id := uuid.New().String()

	conn := transport.New(transport.Config{
		ID:        id,
		Interface: cfg.Interface,
		UseTLS:    cfg.UseTLS,
		TLSConfig: cfg.TLSConfig,
		KeepAlive: cfg.KeepAlive,
		Logger:    cfg.Logger,
	})
	conn.SetBlocking(cfg.Blocking, cfg.Timeout)

	return &Channel{
		cfg:           cfg,
		id:            id,
		conn:          conn,
		logger:        cfg.Logger,
		blocking:      cfg.Blocking,
		timeout:       cfg.Timeout,
		delim:         []byte(cfg.Delimiter),
		lastHeartbeat: time.Now(),
	}
}

// Dial creates a channel and connects it to cfg.Addr:cfg.Port.
func Dial(ctx context.Context, cfg Config) (*Channel, error) {
	ch := New(cfg)
	if err := ch.Connect(ctx, cfg.Addr, cfg.Port); err != nil {
		return nil, err
	}
	return ch, nil
}

// ID returns the channel's unique identifier, as used in log events.
func (ch *Channel) ID() string {
	return ch.id
}

// Connect dials addr:port. Connecting blocks regardless of the channel's
// mode; the configured mode is re-applied once connected. Returns an
// error wrapping transport.ErrConnectFailed on failure; the caller may
// retry.
func (ch *Channel) Connect(ctx context.Context, addr string, port int) error {
	if err := ch.conn.Dial(ctx, addr, port); err != nil {
		return err
	}
	ch.conn.SetBlocking(ch.blocking, ch.timeout)
	ch.lastHeartbeat = time.Now()
	return nil
}

// Reconnect retries the last successful or attempted Connect. No-op when
// connected or when no prior address is known; failures are swallowed.
// Returns the resulting connected state.
func (ch *Channel) Reconnect(ctx context.Context) bool {
	if ch.conn.Redial(ctx) {
		ch.conn.SetBlocking(ch.blocking, ch.timeout)
		ch.lastHeartbeat = time.Now()
	}
	return ch.conn.Connected()
}

// Attach adopts an already-established connection, closing any prior
// socket. The buffer and reply queue survive; only the transport is
// swapped.
func (ch *Channel) Attach(conn net.Conn) {
	ch.conn.Attach(conn)
	ch.conn.SetBlocking(ch.blocking, ch.timeout)
	ch.lastHeartbeat = time.Now()
}

// Close shuts the connection down. Idempotent. Buffered data and queued
// replies remain readable.
func (ch *Channel) Close() {
	ch.conn.Close()
}

// Connected reports the sticky connection state.
func (ch *Channel) Connected() bool {
	return ch.conn.Connected()
}

// Blocking reports the channel's default mode.
func (ch *Channel) Blocking() bool {
	return ch.blocking
}

// SetBlocking changes the channel's default mode. In blocking mode a
// positive timeout replaces the operation timeout.
func (ch *Channel) SetBlocking(blocking bool, timeout time.Duration) {
	ch.blocking = blocking
	if blocking && timeout > 0 {
		ch.timeout = timeout
	}
	ch.conn.SetBlocking(ch.blocking, ch.timeout)
}

// RemoteAddr returns the peer address, or nil when disconnected.
func (ch *Channel) RemoteAddr() net.Addr {
	return ch.conn.RemoteAddr()
}

// BufferedLen returns the current accumulation buffer length. The value
// never exceeds the configured MaxBuf.
func (ch *Channel) BufferedLen() int {
	return len(ch.buf)
}

// Update runs one chunk-reader pass followed by one frame-parser pass,
// appending newly completed messages to the reply queue. This is the
// single operation that advances the pipeline; queue accessors never
// poll on their own.
func (ch *Channel) Update() {
	ch.fetch(0)
	msgs, rest := ExtractMessages(ch.buf, ch.delim)
	ch.buf = rest
	ch.replies = append(ch.replies, msgs...)
}

// pushTimeout temporarily forces blocking mode with the given timeout
// when the channel's default mode is blocking, returning a restore
// function. Non-blocking channels are left untouched.
func (ch *Channel) pushTimeout(timeout time.Duration) func() {
	if !ch.blocking || timeout <= 0 {
		return func() {}
	}
	ch.conn.SetBlocking(true, timeout)
	return func() {
		ch.conn.SetBlocking(ch.blocking, ch.timeout)
	}
}

func (ch *Channel) record(context string, err error) {
	ch.logger.Log(log.ErrorEvent(ch.id, context, err))
}
