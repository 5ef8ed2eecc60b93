// Package config loads channel configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linewire-protocol/linewire-go/pkg/channel"
	"github.com/linewire-protocol/linewire-go/pkg/transport"
)

// ChannelConfig is the YAML form of a channel configuration. Zero fields
// fall back to the channel defaults.
type ChannelConfig struct {
	// Peer endpoint.
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`

	// Blocking selects the channel's default mode.
	Blocking bool `yaml:"blocking"`

	// Timeout is the blocking operation timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Interface names a local interface to bind outbound sockets to.
	Interface string `yaml:"interface"`

	// TLS enables a TLS client session.
	TLS bool `yaml:"tls"`

	// Mode is "text" or "raw".
	Mode string `yaml:"mode"`

	// Buffering limits.
	MaxBuf    int `yaml:"max_buf"`
	MaxChunks int `yaml:"max_chunks"`
	ChunkSize int `yaml:"chunk_size"`

	// HeartbeatInterval is the idle time before an application probe.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// KeepAlive tunes the OS-level keep-alive probes.
	KeepAlive KeepAliveConfig `yaml:"keepalive"`

	// LogFile receives CBOR protocol events when set.
	LogFile string `yaml:"log_file"`
}

// KeepAliveConfig is the YAML form of the OS keep-alive settings.
type KeepAliveConfig struct {
	Idle     time.Duration `yaml:"idle"`
	Interval time.Duration `yaml:"interval"`
	Count    int           `yaml:"count"`
}

// Load reads and parses a YAML channel configuration file.
func Load(path string) (*ChannelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML channel configuration data.
func Parse(data []byte) (*ChannelConfig, error) {
	var cfg ChannelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges. Zero values are valid and mean defaults.
func (c *ChannelConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Mode {
	case "", "text", "raw":
	default:
		return fmt.Errorf("mode %q: want \"text\" or \"raw\"", c.Mode)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %v is negative", c.Timeout)
	}
	if c.HeartbeatInterval < 0 {
		return fmt.Errorf("heartbeat_interval %v is negative", c.HeartbeatInterval)
	}
	if c.MaxBuf < 0 || c.MaxChunks < 0 || c.ChunkSize < 0 {
		return fmt.Errorf("buffer limits must not be negative")
	}
	if c.ChunkSize > 0 && c.MaxBuf > 0 && c.ChunkSize > c.MaxBuf {
		return fmt.Errorf("chunk_size %d exceeds max_buf %d", c.ChunkSize, c.MaxBuf)
	}
	return nil
}

// Channel converts the loaded configuration into a channel.Config.
// Logging is wired separately by the caller.
func (c *ChannelConfig) Channel() channel.Config {
	mode := channel.ModeText
	if c.Mode == "raw" {
		mode = channel.ModeRaw
	}

	return channel.Config{
		Addr:              c.Addr,
		Port:              c.Port,
		Blocking:          c.Blocking,
		Timeout:           c.Timeout,
		Interface:         c.Interface,
		UseTLS:            c.TLS,
		Mode:              mode,
		MaxBuf:            c.MaxBuf,
		MaxChunks:         c.MaxChunks,
		ChunkSize:         c.ChunkSize,
		HeartbeatInterval: c.HeartbeatInterval,
		KeepAlive: transport.KeepAliveConfig{
			Idle:     c.KeepAlive.Idle,
			Interval: c.KeepAlive.Interval,
			Count:    c.KeepAlive.Count,
		},
	}
}
