// Package connection restores dropped channels with exponential backoff.
//
// This package handles:
//   - Exponential backoff for reconnection attempts
//   - Jitter to prevent thundering herd
//   - Poll-driven retry scheduling (no background goroutine)
//
// # Reconnection Strategy
//
// When a connection is lost, the retrier uses exponential backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Continue at 60s until successful
//  5. Reset to 1s on successful reconnection
//
// # Jitter
//
// To prevent thundering herd when multiple clients reconnect:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// # Poll-driven operation
//
// The channel stack is single-threaded: one goroutine drives Update,
// Send and the reply queue. The retrier fits that model by exposing a
// Tick method instead of running its own loop. A caller that already
// polls its channel adds one line:
//
//	for {
//		retrier.Tick(ctx)
//		ch.Update()
//		// drain ch replies
//	}
package connection
