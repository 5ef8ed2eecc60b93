package log

import (
	"time"
)

// Event represents a channel log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ChannelID uniquely identifies the channel (UUID).
	ChannelID string `cbor:"2,keyasint"`

	// Direction indicates data flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"6,keyasint,omitempty"` // Sent/received data
	StateChange *StateChangeEvent `cbor:"7,keyasint,omitempty"` // Connection lifecycle
	Heartbeat   *HeartbeatEvent   `cbor:"8,keyasint,omitempty"` // Liveness probes
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"` // Errors
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates incoming data.
	DirectionIn Direction = 0
	// DirectionOut indicates outgoing data.
	DirectionOut Direction = 1
	// DirectionNone indicates an event with no associated data flow.
	DirectionNone Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a data frame (a sent or received chunk/line).
	CategoryFrame Category = 0
	// CategoryState indicates a connection state change.
	CategoryState Category = 1
	// CategoryHeartbeat indicates a liveness probe.
	CategoryHeartbeat Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryState:
		return "STATE"
	case CategoryHeartbeat:
		return "HEARTBEAT"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxFrameDataSize is the maximum frame data size to include in events (4 KB).
// Larger frames are truncated to avoid excessive memory usage.
const MaxFrameDataSize = 4096

// FrameEvent captures sent or received data.
type FrameEvent struct {
	// Size is the full data size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent builds a FrameEvent, truncating data to MaxFrameDataSize.
func NewFrameEvent(data []byte) *FrameEvent {
	fe := &FrameEvent{Size: len(data), Data: data}
	if len(data) > MaxFrameDataSize {
		fe.Data = data[:MaxFrameDataSize]
		fe.Truncated = true
	}
	return fe
}

// StateChangeEvent captures connection lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// HeartbeatEvent captures an application-level liveness probe.
type HeartbeatEvent struct {
	// Probe is the probe line sent (without delimiter).
	Probe string `cbor:"1,keyasint"`

	// Idle is how long the channel had seen no data when the probe fired.
	Idle time.Duration `cbor:"2,keyasint"`
}

// ErrorEventData captures errors from any channel component.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}

// ErrorEvent builds a complete error event ready for Logger.Log.
// It is the standard way channel components record failures.
func ErrorEvent(channelID, context string, err error) Event {
	return Event{
		Timestamp: time.Now(),
		ChannelID: channelID,
		Direction: DirectionNone,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Message: err.Error(),
			Context: context,
		},
	}
}

// StateEvent builds a connection state change event.
func StateEvent(channelID, remoteAddr, oldState, newState, reason string) Event {
	return Event{
		Timestamp:  time.Now(),
		ChannelID:  channelID,
		Direction:  DirectionNone,
		Category:   CategoryState,
		RemoteAddr: remoteAddr,
		StateChange: &StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}
