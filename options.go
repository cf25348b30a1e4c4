package livefeed

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jpalmerr/livefeed/internal/accounts"
)

// feedConfig holds mutable state during Feed construction.
type feedConfig struct {
	title            string
	port             int
	dataDir          string
	sessionBuffer    int
	writeTimeout     time.Duration
	allowedOrigins   []string
	logger           *slog.Logger
	publishCallbacks []func(Post)
	hasher           accounts.Hasher
}

// Option is a function that configures a [Feed] during construction.
//
// Options return an error if validation fails.
type Option func(*feedConfig) error

// WithPort sets the HTTP port for the API and push channels.
//
// Defaults to 3200. Returns an error if the port is outside 1-65535.
func WithPort(port int) Option {
	return func(cfg *feedConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithDataDir sets the directory holding the snapshot files.
//
// The directory is created on first write. Defaults to "./data".
func WithDataDir(dir string) Option {
	return func(cfg *feedConfig) error {
		if strings.TrimSpace(dir) == "" {
			return errors.New("data dir cannot be empty")
		}
		cfg.dataDir = dir
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *feedConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSessionBuffer sets how many pushes are buffered per viewer. A viewer
// that falls further behind is disconnected. Defaults to 64.
func WithSessionBuffer(n int) Option {
	return func(cfg *feedConfig) error {
		if n <= 0 {
			return errors.New("session buffer must be positive")
		}
		cfg.sessionBuffer = n
		return nil
	}
}

// WithWriteTimeout bounds every push write to a viewer. Defaults to 5s.
func WithWriteTimeout(d time.Duration) Option {
	return func(cfg *feedConfig) error {
		if d <= 0 {
			return errors.New("write timeout must be positive")
		}
		cfg.writeTimeout = d
		return nil
	}
}

// WithAllowedOrigins replaces the browser origins accepted by the API and
// push channels. "*" allows any origin. Defaults to http://localhost:5173.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *feedConfig) error {
		cfg.allowedOrigins = append([]string(nil), origins...)
		return nil
	}
}

// WithTitle sets the title reported by /api/info. Defaults to "Live Feed".
func WithTitle(title string) Option {
	return func(cfg *feedConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPublishCallback registers a function called after every successful
// publish.
//
// Callbacks run synchronously in registration order, in the order posts were
// created, and must not block: a slow callback delays every publish. Panics
// are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithPublishCallback(cb func(Post)) Option {
	return func(cfg *feedConfig) error {
		if cb == nil {
			return nil
		}
		cfg.publishCallbacks = append(cfg.publishCallbacks, cb)
		return nil
	}
}

// withHasher overrides the secret hasher.
func withHasher(h accounts.Hasher) Option {
	return func(cfg *feedConfig) error {
		cfg.hasher = h
		return nil
	}
}
