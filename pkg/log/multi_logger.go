package log

// MultiLogger fans each channel event out to several sinks. The typical
// wiring is a FileLogger for the durable CBOR stream plus a SlogAdapter
// for live console output while probing a peer.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger over the given sinks. A nil or
// empty list is valid and behaves like NoopLogger.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards the event to every sink in registration order. Sinks run
// on the channel's polling goroutine; a slow sink slows the poll.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
