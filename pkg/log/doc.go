// Package log provides structured event logging for linewire channels.
//
// This package defines the Logger interface and Event types for capturing
// channel-level events: connection state changes, sent/received frames,
// liveness probes, and errors. It is separate from operational logging
// (slog) - event capture provides a complete machine-readable trace of a
// channel's lifetime for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/linewire/channel.lwlog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/linewire/channel.lwlog"),
//	)
//
// Tests inject a CaptureLogger and assert on the collected events.
//
// # File Format
//
// Log files use CBOR encoding with .lwlog extension. The Reader type
// provides streaming access with filtering.
package log
