// Command linewire-probe is a diagnostic client for linewire peers.
//
// It dials a line-delimited channel to a peer and either performs a
// one-shot exchange or drops into an interactive shell for manual
// probing.
//
// Usage:
//
//	linewire-probe [flags]
//
// Flags:
//
//	-addr string     Peer address (default "127.0.0.1")
//	-port int        Peer port (default 8540)
//	-config string   YAML channel configuration file
//	-tls             Dial with TLS
//	-raw             Raw mode: skip UTF-8 chunk validation
//	-timeout dur     Blocking operation timeout (default 5s)
//	-log string      Write CBOR protocol events to this file
//	-send string     One-shot: send this line, print one reply, exit
//
// Examples:
//
//	# Interactive shell against a local peer
//	linewire-probe -addr 127.0.0.1 -port 8540
//
//	# One-shot exchange with event capture
//	linewire-probe -addr 10.0.0.7 -port 8540 -send "STATUS" -log events.cbor
//
//	# Everything from a config file
//	linewire-probe -config channel.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/linewire-protocol/linewire-go/cmd/linewire-probe/interactive"
	"github.com/linewire-protocol/linewire-go/pkg/channel"
	"github.com/linewire-protocol/linewire-go/pkg/config"
	"github.com/linewire-protocol/linewire-go/pkg/log"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1", "peer address")
		port     = flag.Int("port", 8540, "peer port")
		cfgPath  = flag.String("config", "", "YAML channel configuration file")
		useTLS   = flag.Bool("tls", false, "dial with TLS")
		raw      = flag.Bool("raw", false, "raw mode: skip UTF-8 chunk validation")
		timeout  = flag.Duration("timeout", channel.DefaultTimeout, "blocking operation timeout")
		logPath  = flag.String("log", "", "write CBOR protocol events to this file")
		sendLine = flag.String("send", "", "one-shot: send this line, print one reply, exit")
	)
	flag.Parse()

	if err := run(*addr, *port, *cfgPath, *useTLS, *raw, *timeout, *logPath, *sendLine); err != nil {
		fmt.Fprintf(os.Stderr, "linewire-probe: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, port int, cfgPath string, useTLS, raw bool, timeout time.Duration, logPath, sendLine string) error {
	chCfg := channel.Config{
		Addr:    addr,
		Port:    port,
		UseTLS:  useTLS,
		Timeout: timeout,
	}
	if raw {
		chCfg.Mode = channel.ModeRaw
	}

	if cfgPath != "" {
		fileCfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		chCfg = fileCfg.Channel()
		if chCfg.Addr == "" {
			chCfg.Addr = addr
		}
		if chCfg.Port == 0 {
			chCfg.Port = port
		}
		if logPath == "" {
			logPath = fileCfg.LogFile
		}
	}

	if logPath != "" {
		fileLogger, err := log.NewFileLogger(logPath)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer fileLogger.Close()
		chCfg.Logger = fileLogger
	}

	// One-shot exchanges block; the shell polls.
	chCfg.Blocking = sendLine != ""

	ch, err := channel.Dial(context.Background(), chCfg)
	if err != nil {
		return err
	}
	defer ch.Close()

	if sendLine != "" {
		return oneShot(ch, sendLine, timeout)
	}

	shell, err := interactive.New(ch)
	if err != nil {
		return err
	}
	return shell.Run(context.Background())
}

func oneShot(ch *channel.Channel, line string, timeout time.Duration) error {
	if n := ch.SendLine(line, timeout); n == 0 {
		return fmt.Errorf("send failed: connection lost")
	}
	reply := ch.RecvLine(timeout)
	if reply == "" {
		return fmt.Errorf("no reply within %v", timeout)
	}
	fmt.Println(reply)
	return nil
}
