package transport

import (
	"net"
	"time"
)

// Keep-alive constants.
const (
	// DefaultKeepAliveIdle is the idle time before the first probe.
	DefaultKeepAliveIdle = 1 * time.Second

	// DefaultKeepAliveInterval is the interval between probes.
	DefaultKeepAliveInterval = 3 * time.Second

	// DefaultKeepAliveCount is the number of unanswered probes before
	// the connection is reset.
	DefaultKeepAliveCount = 5
)

// KeepAliveConfig configures OS-level TCP keep-alive.
type KeepAliveConfig struct {
	// Idle is the idle time before the first probe.
	Idle time.Duration

	// Interval is the interval between probes.
	Interval time.Duration

	// Count is the number of unanswered probes before reset.
	Count int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		Idle:     DefaultKeepAliveIdle,
		Interval: DefaultKeepAliveInterval,
		Count:    DefaultKeepAliveCount,
	}
}

// DetectionDelay returns the worst-case time to detect a dead peer.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.Idle + c.Interval*time.Duration(c.Count)
}

// netConnUnwrapper is implemented by wrappers (tls.Conn) that expose the
// underlying connection.
type netConnUnwrapper interface {
	NetConn() net.Conn
}

// configureKeepAlive enables TCP keep-alive on conn. Best-effort: non-TCP
// connections (net.Pipe, unix sockets) and platforms missing individual
// knobs are silently skipped; the stdlib applies whatever subset the
// platform supports.
func configureKeepAlive(conn net.Conn, cfg KeepAliveConfig) error {
	for {
		if u, ok := conn.(netConnUnwrapper); ok {
			conn = u.NetConn()
			continue
		}
		break
	}

	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	return tcp.SetKeepAliveConfig(net.KeepAliveConfig{
		Enable:   true,
		Idle:     cfg.Idle,
		Interval: cfg.Interval,
		Count:    cfg.Count,
	})
}
