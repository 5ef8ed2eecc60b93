package connection

import (
	"context"
	"time"
)

// State represents the retrier's view of the link.
type State uint8

const (
	// StateConnected indicates the link is up.
	StateConnected State = iota

	// StateWaiting indicates the link is down and the next attempt is
	// scheduled but not yet due.
	StateWaiting

	// StateRetrying indicates the next attempt is due on the next Tick.
	StateRetrying
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "CONNECTED"
	case StateWaiting:
		return "WAITING"
	case StateRetrying:
		return "RETRYING"
	default:
		return "UNKNOWN"
	}
}

// Link is the subset of a channel the retrier drives. Reconnect must be
// a no-op returning true when the link is already up.
type Link interface {
	Connected() bool
	Reconnect(ctx context.Context) bool
}

// Retrier restores a dropped link with exponential backoff.
//
// A Retrier owns no goroutine: the caller folds Tick into its existing
// poll loop, next to Update. Each Tick observes the link, fires at most
// one reconnection attempt when one is due, and returns the resulting
// connected state. Attempts that fail push the next one further out;
// a successful attempt resets the schedule.
type Retrier struct {
	link    Link
	backoff *Backoff

	next time.Time
	up   bool

	onConnected      func()
	onConnectionLost func()
	onReconnecting   func(attempt int, delay time.Duration)
}

// NewRetrier creates a retrier with the default backoff schedule.
func NewRetrier(link Link) *Retrier {
	return NewRetrierWithBackoff(link, NewBackoff())
}

// NewRetrierWithBackoff creates a retrier with a custom backoff.
func NewRetrierWithBackoff(link Link, backoff *Backoff) *Retrier {
	return &Retrier{
		link:    link,
		backoff: backoff,
		up:      link.Connected(),
	}
}

// Tick advances the retrier by one step and reports whether the link is
// up afterwards. Call it from the same goroutine that drives the
// channel, once per poll cycle.
func (r *Retrier) Tick(ctx context.Context) bool {
	if r.link.Connected() {
		if !r.up {
			r.up = true
			r.backoff.Reset()
			if r.onConnected != nil {
				r.onConnected()
			}
		}
		return true
	}

	now := time.Now()

	if r.up {
		// Loss just observed. The first attempt happens on a later
		// Tick, after the initial backoff delay.
		r.up = false
		if r.onConnectionLost != nil {
			r.onConnectionLost()
		}
		r.schedule(now)
		return false
	}

	if now.Before(r.next) {
		return false
	}

	if r.link.Reconnect(ctx) {
		r.up = true
		r.backoff.Reset()
		if r.onConnected != nil {
			r.onConnected()
		}
		return true
	}

	r.schedule(now)
	return false
}

func (r *Retrier) schedule(now time.Time) {
	delay := r.backoff.Next()
	r.next = now.Add(delay)
	if r.onReconnecting != nil {
		r.onReconnecting(r.backoff.Attempts(), delay)
	}
}

// State returns the retrier's current state.
func (r *Retrier) State() State {
	switch {
	case r.link.Connected():
		return StateConnected
	case time.Now().Before(r.next):
		return StateWaiting
	default:
		return StateRetrying
	}
}

// Attempts returns the number of attempts since the link was last up.
func (r *Retrier) Attempts() int {
	return r.backoff.Attempts()
}

// NextAttempt returns when the next reconnection attempt is due.
func (r *Retrier) NextAttempt() time.Time {
	return r.next
}

// OnConnected sets a callback fired when the link comes up.
func (r *Retrier) OnConnected(fn func()) {
	r.onConnected = fn
}

// OnConnectionLost sets a callback fired when loss is first observed.
func (r *Retrier) OnConnectionLost(fn func()) {
	r.onConnectionLost = fn
}

// OnReconnecting sets a callback fired when an attempt is scheduled.
func (r *Retrier) OnReconnecting(fn func(attempt int, delay time.Duration)) {
	r.onReconnecting = fn
}
