package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/jpalmerr/livefeed/internal/accounts"
	"github.com/jpalmerr/livefeed/internal/fanout"
	"github.com/jpalmerr/livefeed/internal/posts"
)

const (
	// DefaultWriteTimeout bounds a single push write when none is configured.
	DefaultWriteTimeout = 5 * time.Second

	// defaultTitle is reported by /api/info when no title is configured.
	defaultTitle = "Live Feed"

	// shutdownTimeout must be >= the push write timeout for a clean shutdown.
	shutdownTimeout = 5 * time.Second
)

// Accounts is the account surface the API needs.
//
// [accounts.Directory] satisfies Accounts.
type Accounts interface {
	CreateAccount(name, email, secret string) (accounts.Public, error)
	Authenticate(email, secret string) (accounts.Public, error)
	List() []accounts.Public
}

// Publisher is the post surface the API needs.
//
// [posts.Service] satisfies Publisher.
type Publisher interface {
	Publish(title, content, authorID string) (posts.Post, error)
	List() []posts.Post
}

// Config wires a [Server] to its collaborators.
type Config struct {
	Port           int
	Title          string
	WriteTimeout   time.Duration
	AllowedOrigins []string

	Accounts Accounts
	Posts    Publisher
	Hub      *fanout.Hub[posts.Event]
}

// Server handles HTTP requests for the feed API and push transports.
//
// Routes:
//   - POST /api/accounts, POST /api/login
//   - GET /api/users
//   - GET /api/posts, POST /api/posts
//   - GET /api/info
//   - GET /api/sse, GET /api/ws
type Server struct {
	cfg     Config
	origins originPolicy
	logger  *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr
}

// NewServer creates a new HTTP [Server]. It does not listen until
// [Server.Start] is called.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		origins: newOriginPolicy(cfg.AllowedOrigins),
		logger:  logger.With("component", "server"),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.cors)

	api := r.PathPrefix("/api").Subrouter()
	api.Methods(http.MethodPost).Path("/accounts").HandlerFunc(s.handleCreateAccount)
	api.Methods(http.MethodPost).Path("/login").HandlerFunc(s.handleLogin)
	api.Methods(http.MethodGet).Path("/users").HandlerFunc(s.handleListUsers)
	api.Methods(http.MethodGet).Path("/posts").HandlerFunc(s.handleListPosts)
	api.Methods(http.MethodPost).Path("/posts").HandlerFunc(s.handleCreatePost)
	api.Methods(http.MethodGet).Path("/info").HandlerFunc(s.handleInfo)
	api.Methods(http.MethodGet).Path("/sse").HandlerFunc(s.handleSSE)
	api.Methods(http.MethodGet).Path("/ws").HandlerFunc(s.handleWebSocket)

	// preflight requests are answered by the cors middleware
	api.Methods(http.MethodOptions).PathPrefix("/").HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns once the listener is bound. The server
// runs until ctx is cancelled, then shuts down gracefully.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so long-lived push handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Info("listening", "addr", ln.Addr().String())

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
