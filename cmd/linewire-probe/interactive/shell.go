// Package interactive provides the interactive command-line interface
// for linewire-probe.
package interactive

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/linewire-protocol/linewire-go/pkg/channel"
	"github.com/linewire-protocol/linewire-go/pkg/connection"
)

// Shell handles interactive mode for linewire-probe.
type Shell struct {
	ch      *channel.Channel
	retrier *connection.Retrier
	rl      *readline.Instance
}

// New creates a new interactive shell around a connected channel.
func New(ch *channel.Channel) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "probe> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := &Shell{
		ch:      ch,
		retrier: connection.NewRetrier(ch),
		rl:      rl,
	}

	s.retrier.OnConnectionLost(func() {
		fmt.Fprintln(rl.Stdout(), "connection lost, retrying in background polls")
	})
	s.retrier.OnConnected(func() {
		fmt.Fprintf(rl.Stdout(), "connected to %v\n", ch.RemoteAddr())
	})

	return s, nil
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "send", "s":
			s.cmdSend(strings.TrimSpace(strings.TrimPrefix(input, parts[0])))

		case "recv", "r":
			s.cmdRecv(args)

		case "line", "l":
			s.cmdLine(args)

		case "poll", "p":
			s.cmdPoll(ctx)

		case "status", "st":
			s.cmdStatus()

		case "reconnect":
			s.cmdReconnect(ctx)

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return nil

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) cmdSend(text string) {
	if text == "" {
		fmt.Fprintln(s.rl.Stdout(), "usage: send <text>")
		return
	}
	n := s.ch.SendLine(text, 0)
	if n == 0 {
		fmt.Fprintln(s.rl.Stdout(), "send failed: not connected")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "sent %d bytes\n", n)
}

func (s *Shell) cmdRecv(args []string) {
	n := 1024
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			fmt.Fprintln(s.rl.Stdout(), "usage: recv [bytes]")
			return
		}
		n = v
	}

	data := s.ch.Recv(n, 0)
	if len(data) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "(no data)")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%d bytes: %q\n", len(data), data)
}

func (s *Shell) cmdLine(args []string) {
	timeout := channel.DefaultRecvLineTimeout
	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			fmt.Fprintln(s.rl.Stdout(), "usage: line [timeout]")
			return
		}
		timeout = d
	}

	// The shell channel is non-blocking; wait for a whole line here.
	s.ch.SetBlocking(true, timeout)
	reply := s.ch.RecvLine(timeout)
	s.ch.SetBlocking(false, 0)

	if reply == "" {
		fmt.Fprintln(s.rl.Stdout(), "(no line)")
		return
	}
	fmt.Fprintln(s.rl.Stdout(), reply)
}

func (s *Shell) cmdPoll(ctx context.Context) {
	s.retrier.Tick(ctx)
	s.ch.Update()

	replies := s.ch.EachReply()
	if len(replies) == 0 {
		fmt.Fprintf(s.rl.Stdout(), "(no messages, %d bytes buffered)\n", s.ch.BufferedLen())
		return
	}
	for _, reply := range replies {
		fmt.Fprintln(s.rl.Stdout(), reply)
	}
}

func (s *Shell) cmdStatus() {
	out := s.rl.Stdout()
	fmt.Fprintf(out, "channel:   %s\n", s.ch.ID())
	if s.ch.Connected() {
		fmt.Fprintf(out, "peer:      %v\n", s.ch.RemoteAddr())
	} else {
		fmt.Fprintln(out, "peer:      (disconnected)")
	}
	fmt.Fprintf(out, "state:     %v\n", s.retrier.State())
	fmt.Fprintf(out, "buffered:  %d bytes\n", s.ch.BufferedLen())
	fmt.Fprintf(out, "pending:   %d messages\n", s.ch.Pending())
}

func (s *Shell) cmdReconnect(ctx context.Context) {
	if s.ch.Reconnect(ctx) {
		fmt.Fprintf(s.rl.Stdout(), "connected to %v\n", s.ch.RemoteAddr())
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "reconnect failed")
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
linewire-probe commands:
  send <text>      - Send one delimited line
  recv [bytes]     - Read up to N raw bytes (default 1024)
  line [timeout]   - Wait for one complete line (default 2s)
  poll             - Run one poll cycle and print queued messages
  status           - Show channel state
  reconnect        - Redial the last peer
  quit             - Exit`)
}
