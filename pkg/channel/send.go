package channel

import (
	"errors"
	"time"

	"github.com/linewire-protocol/linewire-go/pkg/log"
	"github.com/linewire-protocol/linewire-go/pkg/transport"
)

// Send writes data to the peer and returns the number of bytes sent.
//
// When the channel is blocking or sendAll is set, Send loops until the
// whole payload is on the wire or the transport fails; failure tears the
// connection down, records the error and returns 0. Otherwise a single
// send attempt is made and its result returned verbatim; the caller must
// track remaining bytes itself, mirroring conventional non-blocking send
// semantics.
//
// A positive timeout temporarily replaces the blocking timeout for the
// duration of the call; the default mode is always restored afterwards.
// A zero timeout means the default send timeout.
func (ch *Channel) Send(data []byte, sendAll bool, timeout time.Duration) int {
	if !ch.conn.Connected() {
		return 0
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	restore := ch.pushTimeout(timeout)
	defer restore()

	fullSend := ch.blocking || sendAll

	total := 0
	for total < len(data) {
		n, err := ch.conn.Send(data[total:])
		total += n

		if err != nil {
			if !fullSend && errors.Is(err, transport.ErrWouldBlock) {
				// Network buffer full; partial result is the contract.
				return total
			}
			ch.record("send", err)
			ch.conn.Close()
			return 0
		}

		if !fullSend {
			break
		}
	}

	if total > 0 {
		ch.logger.Log(log.Event{
			Timestamp: time.Now(),
			ChannelID: ch.id,
			Direction: log.DirectionOut,
			Category:  log.CategoryFrame,
			Frame:     log.NewFrameEvent(data[:total]),
		})
	}
	return total
}

// SendLine appends the delimiter to msg and sends the whole line,
// looping until complete regardless of the channel's mode. Partial line
// delivery would stall the protocol, so a failed send tears the
// connection down and returns 0.
func (ch *Channel) SendLine(msg string, timeout time.Duration) int {
	payload := make([]byte, 0, len(msg)+len(ch.delim))
	payload = append(payload, msg...)
	payload = append(payload, ch.delim...)
	return ch.Send(payload, true, timeout)
}
