package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/livefeed"
	"github.com/jpalmerr/livefeed/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig reads the file named by the --config flag, or returns the
// defaults when the flag is empty.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the feed server",
	Long: `Start the livefeed server.

The server will:
  - Load configuration from the given YAML file, or use defaults
  - Restore accounts and posts from the data directory
  - Serve the JSON API and push channels on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  livefeed serve
  livefeed serve -c /etc/livefeed/livefeed.yaml
  livefeed serve --port 8080 --data-dir /var/lib/livefeed`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file")
	serveCmd.Flags().Int("port", 0, "override the configured port")
	serveCmd.Flags().String("data-dir", "", "override the configured data directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}

	logger := newLogger(os.Stderr, cfg.Level())
	logger.Info("starting server",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"session_buffer", cfg.SessionBuffer,
		"write_timeout", cfg.WriteTimeout.Duration().String(),
	)

	feed, err := livefeed.New(config.BuildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create feed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- feed.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
