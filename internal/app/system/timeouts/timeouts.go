// Package timeouts provides centralized timeout values for database operations.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 5 * time.Second
	DefaultConnect = 10 * time.Second
	DefaultCommand = 30 * time.Second // a normal run takes WAFFLE's index_boot_timeout instead
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping    = DefaultPing
	connect = DefaultConnect
	command = DefaultCommand
)

// Ping returns the timeout for a server round-trip check, including the
// connection handshake and authentication of a fresh client.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Connect returns the timeout for establishing a client, including server
// selection and authentication.
func Connect() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return connect
}

// Command returns the timeout for administrative commands.
func Command() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return command
}

// Config holds timeout configuration values.
type Config struct {
	Ping    time.Duration
	Connect time.Duration
	Command time.Duration
}

// Configure sets custom timeout values. Zero or negative values leave the
// current setting unchanged.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Connect > 0 {
		connect = cfg.Connect
	}
	if cfg.Command > 0 {
		command = cfg.Command
	}
}

// Reset restores all timeouts to defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	connect = DefaultConnect
	command = DefaultCommand
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:    ping,
		Connect: connect,
		Command: command,
	}
}

// WithTimeout creates a context with timeout and logs if the deadline was
// hit by the time the cancel func runs.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
