// Package transport provides the linewire transport handle.
//
// The transport handle owns one stream socket (TCP, optionally TLS-wrapped)
// and its lifecycle:
//
//   - Dial/redial/attach/close
//   - Emulated blocking and non-blocking modes via read/write deadlines
//   - OS-level TCP keep-alive configuration
//   - Binding outbound sockets to a named local interface
//   - Classification of transport errors into would-block, timeout,
//     orderly close and fatal conditions
//
// # Blocking Emulation
//
// Go's net.Conn has no non-blocking mode, so the handle emulates one with
// deadlines. A non-blocking handle performs each read/write with a ~1 ms
// deadline and reports an expired deadline as ErrWouldBlock; a blocking
// handle uses its configured timeout and reports the same condition as
// ErrTimeout. Callers never see a raw deadline error.
//
// A handle is owned by a single goroutine. It takes no locks; the channel
// layered on top is a cooperative polling design with no cross-goroutine
// sharing.
//
// # Keep-Alive
//
// Dead peers are detected by OS-level TCP keep-alive, configured well
// inside the application heartbeat window:
//   - Idle before first probe: 1 second
//   - Probe interval: 3 seconds
//   - Probes before reset: 5
//
// Platforms that do not expose all three knobs get a best-effort subset.
package transport
