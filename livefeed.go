package livefeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/livefeed/internal/accounts"
	"github.com/jpalmerr/livefeed/internal/fanout"
	"github.com/jpalmerr/livefeed/internal/posts"
	"github.com/jpalmerr/livefeed/internal/server"
	"github.com/jpalmerr/livefeed/internal/snapshot"
)

const (
	defaultPort          = 3200
	defaultDataDir       = "./data"
	defaultSessionBuffer = fanout.DefaultBufferSize
	defaultWriteTimeout  = server.DefaultWriteTimeout
)

var defaultAllowedOrigins = []string{"http://localhost:5173"}

// Feed wires the account directory, publication service, push hub and HTTP
// server together. It is created with [New] and run with [Feed.Start].
type Feed struct {
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

// New creates a [Feed] with the given options.
//
// Defaults:
//   - Port: 3200
//   - Data dir: ./data
//   - Session buffer: 64
//   - Write timeout: 5s
//   - Allowed origins: http://localhost:5173
func New(opts ...Option) (*Feed, error) {
	cfg := &feedConfig{
		port:           defaultPort,
		dataDir:        defaultDataDir,
		sessionBuffer:  defaultSessionBuffer,
		writeTimeout:   defaultWriteTimeout,
		allowedOrigins: append([]string(nil), defaultAllowedOrigins...),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Feed{
		title:            cfg.title,
		port:             cfg.port,
		dataDir:          cfg.dataDir,
		sessionBuffer:    cfg.sessionBuffer,
		writeTimeout:     cfg.writeTimeout,
		allowedOrigins:   cfg.allowedOrigins,
		logger:           logger,
		publishCallbacks: cfg.publishCallbacks,
		hasher:           cfg.hasher,
	}, nil
}

// Start loads the snapshots and serves the API until ctx is cancelled.
//
// Start blocks. Cancel ctx to shut down gracefully:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	feed.Start(ctx)
//
// Returns nil on graceful shutdown, or an error if the data dir is unusable
// or the HTTP server fails to start.
func (f *Feed) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	f.logger.Info("livefeed starting", "data_dir", f.dataDir)

	snaps, err := snapshot.NewFileStore(f.dataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}

	directory := accounts.NewDirectory(accounts.NewRepository(snaps, f.logger), f.hasher, f.logger)
	hub := fanout.NewHub[posts.Event](f.sessionBuffer, f.logger)
	defer hub.Close()

	var hooks []posts.Option
	for _, cb := range f.publishCallbacks {
		cb := cb
		hooks = append(hooks, posts.WithHook(func(p posts.Post) {
			invokeCallbackSafe(cb, publicPost(p), f.logger)
		}))
	}
	service := posts.NewService(posts.NewRepository(snaps, f.logger), directory, hub, f.logger, hooks...)

	srv := server.NewServer(server.Config{
		Port:           f.port,
		Title:          f.title,
		WriteTimeout:   f.writeTimeout,
		AllowedOrigins: f.allowedOrigins,
		Accounts:       directory,
		Posts:          service,
		Hub:            hub,
	}, f.logger)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	f.logger.Info("api available",
		"url", fmt.Sprintf("http://localhost:%d/api", f.port),
		"accounts", directory.Len(),
		"posts", len(service.List()),
	)

	<-ctx.Done()
	f.logger.Info("livefeed stopped")
	return nil
}

// Port returns the configured HTTP port.
func (f *Feed) Port() int {
	return f.port
}

// DataDir returns the configured snapshot directory.
func (f *Feed) DataDir() string {
	return f.dataDir
}

// SessionBuffer returns the per-viewer push buffer size.
func (f *Feed) SessionBuffer() int {
	return f.sessionBuffer
}

// WriteTimeout returns the per-push write deadline.
func (f *Feed) WriteTimeout() time.Duration {
	return f.writeTimeout
}

// AllowedOrigins returns a copy of the accepted browser origins.
func (f *Feed) AllowedOrigins() []string {
	return append([]string(nil), f.allowedOrigins...)
}

// invokeCallbackSafe calls a publish callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Post), p Post, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("publish callback panicked",
				"panic", r,
				"post_id", p.ID,
			)
		}
	}()
	cb(p)
}
