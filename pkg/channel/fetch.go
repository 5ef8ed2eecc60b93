package channel

import (
	"bytes"
	"errors"
	"io"
	"time"
	"unicode/utf8"

	"github.com/linewire-protocol/linewire-go/pkg/log"
	"github.com/linewire-protocol/linewire-go/pkg/transport"
)

// fetch pulls bounded chunks off the transport into the accumulation
// buffer. fixedLimit > 0 replaces both the buffer ceiling and the chunk
// cap for fixed-size reads; 0 means the channel defaults.
//
// The loop never exceeds the buffer ceiling, never reads more than the
// chunk cap per non-blocking cycle, and classifies every transport
// condition: would-block ends the cycle cleanly, a timeout ends the
// whole fetch, an orderly close or any other error closes the transport.
// Blocking callers waiting on an incomplete line re-poll every 200 ms;
// the overall deadline is the caller's job (see Recv and RecvLine).
func (ch *Channel) fetch(fixedLimit int) {
	if !ch.conn.Connected() {
		return
	}

	maxBuf := ch.cfg.MaxBuf
	maxChunks := ch.cfg.MaxChunks
	if fixedLimit > 0 {
		maxBuf = fixedLimit
		maxChunks = fixedLimit
	}

	for {
		chunkNo := 0

	inner:
		for {
			bufLen := len(ch.buf)
			if bufLen >= maxBuf {
				break
			}
			chunkSize := ch.cfg.ChunkSize
			if remaining := maxBuf - bufLen; remaining < chunkSize {
				chunkSize = remaining
			}

			// Don't allow non-blocking channels to be flooded by
			// multiple small replies.
			if chunkNo >= maxChunks && !ch.blocking {
				break
			}

			chunk := make([]byte, chunkSize)
			n, err := ch.conn.Recv(chunk)

			if n > 0 {
				ch.appendChunk(chunk[:n])
			}

			if err != nil {
				switch {
				case errors.Is(err, transport.ErrTimeout):
					// Blocking read timed out; ends the whole fetch.
					return

				case errors.Is(err, transport.ErrWouldBlock):
					ch.maybeHeartbeat()
					break inner

				case errors.Is(err, io.EOF):
					// Peer closed orderly.
					ch.conn.Close()
					return

				case errors.Is(err, transport.ErrNotConnected):
					return

				default:
					ch.record("fetch", err)
					ch.conn.Close()
					return
				}
			}

			if ch.blocking {
				break
			}
			chunkNo++
		}

		// Blocking callers without a fixed limit wait for a complete
		// line, bounded by the caller's deadline one layer up. A full
		// buffer can't complete a line, so stop instead of spinning.
		if !ch.blocking || fixedLimit > 0 {
			return
		}
		if len(ch.buf) >= maxBuf || bytes.Contains(ch.buf, ch.delim) || !ch.conn.Connected() {
			return
		}
		time.Sleep(blockingRetryWait)
	}
}

// appendChunk validates and appends one received chunk. Text channels
// drop chunks that are not valid UTF-8; the drop is recorded and polling
// continues.
func (ch *Channel) appendChunk(chunk []byte) {
	if ch.cfg.Mode == ModeText && !utf8.Valid(chunk) {
		ch.record("decode chunk", errInvalidUTF8)
		return
	}

	ch.buf = append(ch.buf, chunk...)

	ch.logger.Log(log.Event{
		Timestamp: time.Now(),
		ChannelID: ch.id,
		Direction: log.DirectionIn,
		Category:  log.CategoryFrame,
		Frame:     log.NewFrameEvent(chunk),
	})
}

var errInvalidUTF8 = errors.New("chunk is not valid UTF-8")

// maybeHeartbeat sends the application-level probe line when the
// connection has been quiet past the heartbeat interval. Detects
// half-dead connections the OS-level keep-alive has not yet caught.
func (ch *Channel) maybeHeartbeat() {
	idle := time.Since(ch.lastHeartbeat)
	if idle < ch.cfg.HeartbeatInterval {
		return
	}
	ch.lastHeartbeat = time.Now()

	ch.logger.Log(log.Event{
		Timestamp: time.Now(),
		ChannelID: ch.id,
		Direction: log.DirectionOut,
		Category:  log.CategoryHeartbeat,
		Heartbeat: &log.HeartbeatEvent{Probe: HeartbeatProbe, Idle: idle},
	})

	ch.SendLine(HeartbeatProbe, ch.timeout)
}
