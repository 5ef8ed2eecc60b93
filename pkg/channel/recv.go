package channel

import (
	"time"
)

// Recv reads exactly n bytes if it can, fewer if it cannot.
//
// The live accumulation buffer is swapped out for the duration of the
// call so steady-state line buffering is undisturbed, then restored. A
// blocking channel re-polls until n bytes have accumulated, the
// connection drops or the deadline elapses; a non-blocking channel makes
// a single attempt. A disconnected channel returns an empty result, not
// an error. A zero timeout means the default receive timeout.
func (ch *Channel) Recv(n int, timeout time.Duration) []byte {
	if n <= 0 || !ch.conn.Connected() {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultRecvTimeout
	}

	restore := ch.pushTimeout(timeout)
	defer restore()

	saved := ch.buf
	ch.buf = nil
	defer func() { ch.buf = saved }()

	deadline := time.Now().Add(timeout)
	for {
		ch.fetch(n)
		if len(ch.buf) >= n || !ch.conn.Connected() || !ch.blocking {
			break
		}
		if !time.Now().Before(deadline) {
			break
		}
	}

	return ch.buf
}

// RecvLine receives a single complete line, without its delimiter.
//
// Both the accumulation buffer and the reply queue are swapped out so
// this acts as a self-contained read: a blocking channel polls until a
// complete message arrives, the buffer hits its ceiling, the connection
// drops or the deadline (entry time + timeout) elapses, then returns and
// removes the oldest message received during the call. A non-blocking
// channel makes one pass and returns empty; anything it parsed stays
// queued. Leftover messages are appended to the main reply queue and the
// prior buffer content is restored, so ongoing accumulation is never
// disturbed. A zero timeout means the default line timeout.
func (ch *Channel) RecvLine(timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultRecvLineTimeout
	}

	restore := ch.pushTimeout(timeout)
	defer restore()

	savedBuf := ch.buf
	savedReplies := ch.replies
	ch.buf = nil
	ch.replies = nil

	defer func() {
		ch.replies = append(savedReplies, ch.replies...)
		ch.buf = savedBuf
	}()

	deadline := time.Now().Add(timeout)
	for {
		ch.Update()

		if !ch.conn.Connected() {
			break
		}
		if !ch.blocking {
			return ""
		}
		if len(ch.replies) > 0 || len(ch.buf) >= ch.cfg.MaxBuf {
			break
		}
		if !time.Now().Before(deadline) {
			break
		}
	}

	if ch.blocking && len(ch.replies) > 0 {
		line := ch.replies[0]
		ch.replies = ch.replies[1:]
		return line
	}
	return ""
}
