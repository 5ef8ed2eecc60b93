package channel

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linewire-protocol/linewire-go/pkg/log"
)

// dialChannel connects a channel to a fresh loopback listener and hands
// back the server side of the accepted connection.
func dialChannel(t *testing.T, cfg Config) (*Channel, net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	ch := New(cfg)
	require.NoError(t, ch.Connect(context.Background(), host, port))
	t.Cleanup(ch.Close)

	select {
	case server := <-accepted:
		t.Cleanup(func() { server.Close() })
		return ch, server
	case <-time.After(2 * time.Second):
		t.Fatal("accept timed out")
		return nil, nil
	}
}

// pollUntil drives Update until cond holds or the deadline passes.
func pollUntil(t *testing.T, ch *Channel, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ch.Update()
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestUpdateQueuesMessagesInOrder(t *testing.T) {
	ch, server := dialChannel(t, Config{})

	_, err := server.Write([]byte("one\r\ntwo\r\nthree\r\ntail"))
	require.NoError(t, err)

	pollUntil(t, ch, func() bool { return ch.Pending() == 3 })

	assert.Equal(t, []string{"one", "two", "three"}, ch.EachReply())

	// The unterminated tail stays buffered until its delimiter arrives.
	assert.Equal(t, 0, ch.Pending())

	_, err = server.Write([]byte("\r\n"))
	require.NoError(t, err)

	pollUntil(t, ch, func() bool { return ch.Pending() == 1 })
	got, _ := ch.PopReply()
	assert.Equal(t, "tail", got)
}

func TestMessageSplitAcrossChunks(t *testing.T) {
	ch, server := dialChannel(t, Config{})

	// The delimiter itself is split across two writes.
	for _, part := range []string{"hel", "lo\r", "\nworld", "\r\n"} {
		_, err := server.Write([]byte(part))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
		ch.Update()
	}

	pollUntil(t, ch, func() bool { return ch.Pending() == 2 })
	assert.Equal(t, []string{"hello", "world"}, ch.EachReply())
}

func TestBufferCeiling(t *testing.T) {
	ch, server := dialChannel(t, Config{
		MaxBuf:    64,
		ChunkSize: 16,
	})

	// 4x the ceiling, no delimiter anywhere.
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = 'x'
	}
	_, err := server.Write(payload)
	require.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		ch.Update()
		require.LessOrEqual(t, ch.BufferedLen(), 64)
		if ch.BufferedLen() == 64 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 64, ch.BufferedLen())

	// Further polls withhold the surplus rather than overflowing.
	ch.Update()
	assert.Equal(t, 64, ch.BufferedLen())
	assert.Equal(t, 0, ch.Pending())
}

func TestMaxChunksCapsPollCycle(t *testing.T) {
	ch, server := dialChannel(t, Config{
		MaxChunks: 2,
		ChunkSize: 4,
	})

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = 'y'
	}
	_, err := server.Write(payload)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond) // let the kernel buffer it all

	// One non-blocking poll reads at most MaxChunks * ChunkSize bytes
	// even though far more is immediately available.
	ch.Update()
	assert.LessOrEqual(t, ch.BufferedLen(), 8)
	assert.Greater(t, ch.BufferedLen(), 0)
}

func TestSendLineAppendsDelimiter(t *testing.T) {
	ch, server := dialChannel(t, Config{Blocking: true, Timeout: time.Second})

	n := ch.SendLine("PING", time.Second)
	assert.Equal(t, len("PING")+2, n)

	buf := make([]byte, 16)
	server.SetReadDeadline(time.Now().Add(time.Second))
	got, err := server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "PING\r\n", string(buf[:got]))
}

func TestSendOnDisconnectedChannel(t *testing.T) {
	ch := New(Config{})
	assert.Equal(t, 0, ch.Send([]byte("data"), true, time.Second))
	assert.Equal(t, 0, ch.SendLine("data", time.Second))
}

func TestRecvExact(t *testing.T) {
	ch, server := dialChannel(t, Config{Blocking: true, Timeout: time.Second})

	// Seed the steady-state buffer with a partial line first.
	_, err := server.Write([]byte("partial"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	ch.Update()
	require.Equal(t, 7, ch.BufferedLen())

	go func() {
		time.Sleep(10 * time.Millisecond)
		server.Write([]byte("0123456789"))
	}()

	got := ch.Recv(4, time.Second)
	assert.Equal(t, "0123", string(got))

	// The swapped-out line buffer came back untouched.
	assert.Equal(t, 7, ch.BufferedLen())
}

func TestRecvDisconnected(t *testing.T) {
	ch := New(Config{Blocking: true})
	assert.Empty(t, ch.Recv(8, 100*time.Millisecond))
}

func TestRecvLineDelivers(t *testing.T) {
	ch, server := dialChannel(t, Config{Blocking: true, Timeout: time.Second})

	go func() {
		time.Sleep(50 * time.Millisecond)
		server.Write([]byte("hello there\r\n"))
	}()

	got := ch.RecvLine(time.Second)
	assert.Equal(t, "hello there", got)
}

func TestRecvLineTimeout(t *testing.T) {
	ch, _ := dialChannel(t, Config{Blocking: true, Timeout: 100 * time.Millisecond})

	start := time.Now()
	got := ch.RecvLine(300 * time.Millisecond)
	elapsed := time.Since(start)

	assert.Empty(t, got)
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond, "returned before the deadline")
	assert.Less(t, elapsed, 2*time.Second, "did not return near the deadline")
}

func TestRecvLinePreservesBuffer(t *testing.T) {
	ch, server := dialChannel(t, Config{Blocking: true, Timeout: 100 * time.Millisecond})

	// A partial line accumulates in the steady-state buffer.
	_, err := server.Write([]byte("accumulating"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	ch.Update()
	require.Equal(t, len("accumulating"), ch.BufferedLen())

	got := ch.RecvLine(150 * time.Millisecond)
	assert.Empty(t, got)
	assert.Equal(t, len("accumulating"), ch.BufferedLen())
}

func TestRecvLineNonBlockingSinglePass(t *testing.T) {
	ch, server := dialChannel(t, Config{})

	_, err := server.Write([]byte("queued-line\r\n"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	// A non-blocking channel returns immediately and keeps anything it
	// parsed in the queue.
	start := time.Now()
	got := ch.RecvLine(time.Second)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	if ch.Pending() == 0 {
		// Data may not have been readable on the single pass; one more
		// poll settles it.
		pollUntil(t, ch, func() bool { return ch.Pending() == 1 })
	}
	reply, _ := ch.PopReply()
	assert.Equal(t, "queued-line", reply)
}

func TestPeerCloseMarksDisconnected(t *testing.T) {
	ch, server := dialChannel(t, Config{})

	_, err := server.Write([]byte("last\r\n"))
	require.NoError(t, err)
	server.Close()

	pollUntil(t, ch, func() bool { return !ch.Connected() })

	// Data received before the close is still delivered.
	assert.Equal(t, []string{"last"}, ch.EachReply())

	// Disconnection is sticky and operations degrade quietly.
	assert.Equal(t, 0, ch.SendLine("anyone", time.Second))
	ch.Update()
	assert.False(t, ch.Connected())
}

func TestCloseThenReconnect(t *testing.T) {
	ch, _ := dialChannel(t, Config{})

	ch.Close()
	require.False(t, ch.Connected())

	assert.True(t, ch.Reconnect(context.Background()))
	assert.True(t, ch.Connected())

	// Reconnect while connected is a no-op.
	assert.True(t, ch.Reconnect(context.Background()))
}

func TestReconnectWithoutAddress(t *testing.T) {
	ch := New(Config{})
	assert.False(t, ch.Reconnect(context.Background()))
}

func TestTextModeDropsInvalidChunk(t *testing.T) {
	capture := log.NewCaptureLogger()
	ch, server := dialChannel(t, Config{Mode: ModeText, Logger: capture})

	// An invalid chunk arrives alone and is dropped.
	_, err := server.Write([]byte{0xff, 0xfe, 0xfd})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	ch.Update()
	assert.Equal(t, 0, ch.BufferedLen())
	assert.NotEmpty(t, capture.Errors(), "decode failure should reach the error sink")

	// Polling continues: a valid line afterwards still parses.
	_, err = server.Write([]byte("still alive\r\n"))
	require.NoError(t, err)
	pollUntil(t, ch, func() bool { return ch.Pending() == 1 })
	got, _ := ch.PopReply()
	assert.Equal(t, "still alive", got)
	assert.True(t, ch.Connected())
}

func TestRawModeKeepsInvalidBytes(t *testing.T) {
	ch, server := dialChannel(t, Config{Mode: ModeRaw})

	_, err := server.Write([]byte{0xff, 0xfe, '\r', '\n'})
	require.NoError(t, err)

	pollUntil(t, ch, func() bool { return ch.Pending() == 1 })
	got, _ := ch.PopReply()
	assert.Equal(t, "\xff\xfe", got)
}

func TestHeartbeatProbeAfterIdle(t *testing.T) {
	capture := log.NewCaptureLogger()
	ch, server := dialChannel(t, Config{
		HeartbeatInterval: 30 * time.Millisecond,
		Logger:            capture,
	})

	time.Sleep(50 * time.Millisecond)
	ch.Update() // would-block past the heartbeat interval fires the probe

	buf := make([]byte, 16)
	server.SetReadDeadline(time.Now().Add(time.Second))
	n, err := server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, HeartbeatProbe+"\r\n", string(buf[:n]))

	var sawHeartbeat bool
	for _, e := range capture.Events() {
		if e.Category == log.CategoryHeartbeat {
			sawHeartbeat = true
		}
	}
	assert.True(t, sawHeartbeat, "heartbeat event should be logged")

	// The probe timer resets: an immediate second poll stays quiet.
	ch.Update()
	server.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	_, err = server.Read(buf)
	assert.Error(t, err, "no second probe expected")
}

func TestCustomDelimiter(t *testing.T) {
	ch, server := dialChannel(t, Config{Delimiter: "\n"})

	_, err := server.Write([]byte("a\nb\nc"))
	require.NoError(t, err)

	pollUntil(t, ch, func() bool { return ch.Pending() == 2 })
	assert.Equal(t, []string{"a", "b"}, ch.EachReply())
}

func TestSetBlockingSwitchesMode(t *testing.T) {
	ch, _ := dialChannel(t, Config{})

	require.False(t, ch.Blocking())

	ch.SetBlocking(true, 50*time.Millisecond)
	assert.True(t, ch.Blocking())

	// A blocking update with a silent peer returns after roughly the
	// operation timeout rather than spinning or hanging.
	start := time.Now()
	ch.Update()
	elapsed := time.Since(start)
	assert.Less(t, elapsed, 2*time.Second)

	ch.SetBlocking(false, 0)
	start = time.Now()
	ch.Update()
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestDialHelper(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	ch, err := Dial(context.Background(), Config{Addr: host, Port: port})
	require.NoError(t, err)
	defer ch.Close()
	assert.True(t, ch.Connected())
	assert.NotEmpty(t, ch.ID())
}

func TestDialHelperFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	ln.Close()

	_, err = Dial(context.Background(), Config{Addr: host, Port: port})
	assert.Error(t, err)
}

func TestAttachExternalConn(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	raw, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	ch := New(Config{})
	ch.Attach(raw)
	defer ch.Close()
	require.True(t, ch.Connected())

	server := <-accepted
	defer server.Close()
	_, err = server.Write([]byte("adopted\r\n"))
	require.NoError(t, err)

	pollUntil(t, ch, func() bool { return ch.Pending() == 1 })
	got, _ := ch.PopReply()
	assert.Equal(t, "adopted", got)
}
