package config

import (
	"log/slog"

	"github.com/jpalmerr/livefeed"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The logger is passed through as-is; the caller builds it from
// [Config.Level] so that config and flags agree on verbosity.
func BuildOptions(cfg *Config, logger *slog.Logger) []livefeed.Option {
	opts := []livefeed.Option{
		livefeed.WithPort(cfg.Port),
		livefeed.WithDataDir(cfg.DataDir),
		livefeed.WithSessionBuffer(cfg.SessionBuffer),
		livefeed.WithWriteTimeout(cfg.WriteTimeout.Duration()),
		livefeed.WithAllowedOrigins(cfg.AllowedOrigins...),
	}
	if cfg.Title != "" {
		opts = append(opts, livefeed.WithTitle(cfg.Title))
	}
	if logger != nil {
		opts = append(opts, livefeed.WithLogger(logger))
	}
	return opts
}
