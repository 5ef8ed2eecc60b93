// Package channel implements a buffered, line-delimited message channel
// over a single TCP (or TLS) connection.
//
// A Channel turns a raw byte stream into discrete \r\n-terminated
// messages without threads or locks: callers drive the whole pipeline by
// polling. One Update call pulls bounded chunks off the transport,
// splits the accumulated buffer on the delimiter and appends every
// completed message to the reply queue. Reading the queue is a separate,
// I/O-free step:
//
//	ch.Update()
//	for _, reply := range ch.EachReply() {
//		handle(reply)
//	}
//
// The design assumes an adversarial network. Peers that flood small
// packets are capped at MaxChunks reads per poll; peers that never send
// a delimiter are capped at MaxBuf buffered bytes; peers that go silent
// are caught by OS-level TCP keep-alive plus an application PING line
// after a prolonged quiet period. No failure escapes a read or send
// operation: the channel degrades to empty results, records the error at
// the injected log sink and marks itself disconnected until an explicit
// reconnect.
//
// Blocking channels emulate classic blocking-socket semantics with an
// operation timeout; non-blocking channels return immediately with
// whatever is available. Both modes are safe to poll in a loop forever.
//
// Messages must not contain the delimiter: the wire format has no
// escaping, and a payload with an embedded \r\n is split at that point.
package channel
