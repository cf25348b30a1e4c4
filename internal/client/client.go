package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/livefeed/internal/accounts"
	"github.com/jpalmerr/livefeed/internal/posts"
	"github.com/jpalmerr/livefeed/internal/reconcile"
)

const (
	// DefaultRetryDelay is the pause between push channel connection attempts.
	DefaultRetryDelay = time.Second

	// DefaultMaxAttempts bounds consecutive failed connection attempts.
	DefaultMaxAttempts = 5

	defaultHTTPTimeout = 10 * time.Second
)

var (
	// ErrNotLoggedIn is returned by operations that need a logged-in viewer.
	ErrNotLoggedIn = errors.New("client: not logged in")

	// ErrGaveUp is returned by [Client.Watch] once every reconnection attempt failed.
	ErrGaveUp = errors.New("client: push channel unreachable")
)

// APIError is a non-success reply from the feed API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// authResponse mirrors the server's account and login replies.
type authResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *accounts.Public `json:"user"`
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetry sets the reconnection delay and the number of consecutive
// attempts before [Client.Watch] gives up.
func WithRetry(delay time.Duration, attempts int) Option {
	return func(c *Client) {
		if delay > 0 {
			c.retryDelay = delay
		}
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithNotify sets the callback run for every notification the reconciler
// raises. The notification is acknowledged after the callback returns.
func WithNotify(fn func(reconcile.Notification)) Option {
	return func(c *Client) {
		c.onNotify = fn
	}
}

// Client is a feed viewer.
type Client struct {
	base        *url.URL
	http        *http.Client
	logger      *slog.Logger
	retryDelay  time.Duration
	maxAttempts int
	onNotify    func(reconcile.Notification)

	rec *reconcile.Reconciler

	mu   sync.RWMutex
	user *accounts.Public
}

// New creates a viewer for the feed served at baseURL, e.g. "http://localhost:3200".
func New(baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		base:        u,
		http:        &http.Client{Timeout: defaultHTTPTimeout},
		logger:      logger.With("component", "client"),
		retryDelay:  DefaultRetryDelay,
		maxAttempts: DefaultMaxAttempts,
		rec:         reconcile.New(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Reconciler returns the viewer's post cache.
func (c *Client) Reconciler() *reconcile.Reconciler {
	return c.rec
}

// User returns the logged-in account, if any.
func (c *Client) User() (accounts.Public, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return accounts.Public{}, false
	}
	return *c.user, true
}

// CreateAccount registers an account. It does not log in.
func (c *Client) CreateAccount(ctx context.Context, name, email, password string) (accounts.Public, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.auth(ctx, "/api/accounts", body)
}

// Login authenticates and makes the account the viewer's identity.
func (c *Client) Login(ctx context.Context, email, password string) (accounts.Public, error) {
	user, err := c.auth(ctx, "/api/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return accounts.Public{}, err
	}

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()
	c.rec.SetIdentity(user.ID)

	c.logger.Info("logged in", "user_id", user.ID)
	return user, nil
}

// Logout clears the viewer's identity.
func (c *Client) Logout() {
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
	c.rec.SetIdentity("")
}

// Publish creates a post authored by the logged-in viewer.
func (c *Client) Publish(ctx context.Context, title, content string) (posts.Post, error) {
	user, ok := c.User()
	if !ok {
		return posts.Post{}, ErrNotLoggedIn
	}

	var post posts.Post
	body := map[string]string{"title": title, "content": content, "authorId": user.ID}
	if err := c.do(ctx, http.MethodPost, "/api/posts", body, &post); err != nil {
		return posts.Post{}, err
	}
	return post, nil
}

// Seed loads the post listing into the cache.
func (c *Client) Seed(ctx context.Context) error {
	var list []posts.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &list); err != nil {
		return err
	}
	c.rec.Seed(list)
	c.logger.Debug("cache seeded", "posts", len(list))
	return nil
}

func (c *Client) auth(ctx context.Context, path string, body any) (accounts.Public, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, path, body, &resp)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return accounts.Public{}, apiErr
	}
	if err != nil {
		return accounts.Public{}, err
	}
	if !resp.Success || resp.User == nil {
		return accounts.Public{}, &APIError{Status: http.StatusOK, Message: resp.Message}
	}
	return *resp.User, nil
}

// do sends a JSON request and decodes a 2xx reply into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the message from either reply shape the API uses.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
