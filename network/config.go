package network

import "time"

// Config holds the broadcast mirror configuration
type Config struct {
	// Address to bind; empty disables the mirror
	Address string

	// Path the websocket endpoint is served on
	Path string

	// Connection limits
	MaxPeers int

	// Timing
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadTimeout  time.Duration // Must exceed PingInterval

	// SendQueueSize is the per-peer buffered message count; overflow drops
	SendQueueSize int
}

// DefaultConfig returns the mirror defaults, disabled until Address is set
func DefaultConfig() *Config {
	return &Config{
		Path:          "/ws",
		MaxPeers:      16,
		WriteTimeout:  2 * time.Second,
		PingInterval:  10 * time.Second,
		ReadTimeout:   30 * time.Second,
		SendQueueSize: 32,
	}
}
