package transport

import (
	"errors"
	"net"
)

// Transport errors.
var (
	// ErrConnectFailed indicates a failed connection attempt. Fatal to the
	// attempted dial, not to the handle; the caller may retry.
	ErrConnectFailed = errors.New("connect failed")

	// ErrNotConnected indicates an operation on a disconnected handle.
	ErrNotConnected = errors.New("not connected")

	// ErrWouldBlock indicates a non-blocking operation found no data or
	// buffer space. Expected in non-blocking mode, never fatal.
	ErrWouldBlock = errors.New("operation would block")

	// ErrTimeout indicates a blocking operation exceeded its timeout.
	// Ends the current operation without data, never fatal.
	ErrTimeout = errors.New("operation timed out")
)

// classifyIOError maps an error returned by a net.Conn read or write to
// the transport taxonomy. An expired deadline means would-block for a
// non-blocking handle and timeout for a blocking one; io.EOF passes
// through as the orderly-close signal; everything else is fatal and is
// returned unchanged.
func classifyIOError(err error, blocking bool) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if blocking {
			return ErrTimeout
		}
		return ErrWouldBlock
	}

	return err
}
