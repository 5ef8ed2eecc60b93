package log

import "sync"

// Logger is the interface applications implement to receive channel events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records a channel event. Implementations must be thread-safe.
	// The event should be processed quickly or queued; blocking affects
	// the polling loop of the channel that emitted it.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// CaptureLogger collects events in memory. Intended for tests.
type CaptureLogger struct {
	mu     sync.Mutex
	events []Event
}

// NewCaptureLogger creates an empty CaptureLogger.
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{}
}

// Log appends the event to the in-memory collection.
func (c *CaptureLogger) Log(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of all collected events.
func (c *CaptureLogger) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Errors returns only the collected error events.
func (c *CaptureLogger) Errors() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if e.Category == CategoryError {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of collected events.
func (c *CaptureLogger) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Reset discards all collected events.
func (c *CaptureLogger) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = (*CaptureLogger)(nil)
)
