package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linewire-protocol/linewire-go/pkg/channel"
)

func TestParse(t *testing.T) {
	data := []byte(`
addr: 10.0.0.7
port: 8540
blocking: true
timeout: 3s
interface: eth0
tls: true
mode: raw
max_buf: 65536
max_chunks: 64
chunk_size: 4096
heartbeat_interval: 2m
keepalive:
  idle: 1s
  interval: 3s
  count: 5
log_file: /var/log/linewire/events.cbor
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7", cfg.Addr)
	assert.Equal(t, 8540, cfg.Port)
	assert.True(t, cfg.Blocking)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "eth0", cfg.Interface)
	assert.True(t, cfg.TLS)
	assert.Equal(t, "raw", cfg.Mode)
	assert.Equal(t, 65536, cfg.MaxBuf)
	assert.Equal(t, 64, cfg.MaxChunks)
	assert.Equal(t, 4096, cfg.ChunkSize)
	assert.Equal(t, 2*time.Minute, cfg.HeartbeatInterval)
	assert.Equal(t, time.Second, cfg.KeepAlive.Idle)
	assert.Equal(t, 3*time.Second, cfg.KeepAlive.Interval)
	assert.Equal(t, 5, cfg.KeepAlive.Count)
	assert.Equal(t, "/var/log/linewire/events.cbor", cfg.LogFile)
}

func TestParseMinimal(t *testing.T) {
	cfg, err := Parse([]byte("addr: localhost\nport: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Addr)
	assert.False(t, cfg.Blocking)
	assert.Zero(t, cfg.Timeout)
	assert.Empty(t, cfg.Mode)
}

func TestParseInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"malformed", "addr: [unclosed"},
		{"port negative", "port: -1"},
		{"port too large", "port: 70000"},
		{"bad mode", "mode: binary"},
		{"negative timeout", "timeout: -5s"},
		{"chunk exceeds buf", "max_buf: 16\nchunk_size: 32"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: peer\nport: 4242\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "peer", cfg.Addr)
	assert.Equal(t, 4242, cfg.Port)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestChannelConversion(t *testing.T) {
	cfg := &ChannelConfig{
		Addr:     "peer",
		Port:     4242,
		Blocking: true,
		Timeout:  7 * time.Second,
		Mode:     "raw",
		MaxBuf:   1024,
	}

	chCfg := cfg.Channel()
	assert.Equal(t, "peer", chCfg.Addr)
	assert.Equal(t, 4242, chCfg.Port)
	assert.True(t, chCfg.Blocking)
	assert.Equal(t, 7*time.Second, chCfg.Timeout)
	assert.Equal(t, channel.ModeRaw, chCfg.Mode)
	assert.Equal(t, 1024, chCfg.MaxBuf)

	// Unset mode converts to text.
	assert.Equal(t, channel.ModeText, (&ChannelConfig{}).Channel().Mode)
}
