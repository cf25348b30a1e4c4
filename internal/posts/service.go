package posts

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/livefeed/internal/accounts"
	"github.com/jpalmerr/livefeed/internal/store"
)

// ErrAuthorNotFound is returned by [Service.Publish] when the author id does
// not resolve to an account.
var ErrAuthorNotFound = errors.New("author not found")

// Authors resolves author ids to public account details.
//
// [accounts.Directory] satisfies Authors.
type Authors interface {
	Get(id string) (accounts.Public, bool)
}

// Broadcaster delivers events to connected viewers.
//
// fanout.Hub[Event] satisfies Broadcaster.
type Broadcaster interface {
	Broadcast(e Event) int
}

// Option configures a [Service].
type Option func(*Service)

// WithClock sets the function used to stamp CreatedAt. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHook registers fn to run after every successful publish.
//
// Hooks run in registration order while the publish lock is held, so they
// observe posts in creation order and must not block. Nil hooks are ignored.
func WithHook(fn func(Post)) Option {
	return func(s *Service) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// Service publishes posts and lists them.
//
// Service is safe for concurrent use. Publishes are serialised end to end
// (author lookup, create, broadcast, hooks) so that the push order seen by
// every viewer matches the listing order.
type Service struct {
	repo    *store.Repository[Post]
	authors Authors
	hub     Broadcaster
	logger  *slog.Logger
	now     func() time.Time
	hooks   []func(Post)

	mu   sync.Mutex
	last time.Time // CreatedAt of the newest post
}

// NewService creates a publication [Service].
//
// hub may be nil, in which case posts are stored but not pushed.
func NewService(repo *store.Repository[Post], authors Authors, hub Broadcaster, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:    repo,
		authors: authors,
		hub:     hub,
		logger:  logger.With("component", "posts"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if list := repo.List(); len(list) > 0 {
		s.last = list[0].CreatedAt
	}
	return s
}

// Publish creates a post by authorID and pushes it to every connected viewer.
//
// CreatedAt is the service clock, clamped to be no earlier than the previous
// post's, so [Service.List] is ordered by CreatedAt descending.
//
// Returns [ErrAuthorNotFound] if authorID does not resolve; the post
// repository is not touched in that case. A snapshot write failure is logged
// and does not fail the publish.
func (s *Service) Publish(title, content, authorID string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	author, ok := s.authors.Get(authorID)
	if !ok {
		return Post{}, ErrAuthorNotFound
	}

	// CreatedAt never goes backwards
	createdAt := s.now().UTC()
	if createdAt.Before(s.last) {
		createdAt = s.last
	}

	post, err := s.repo.Create(func(id string) Post {
		return Post{
			ID:          id,
			Title:       title,
			Content:     content,
			AuthorID:    author.ID,
			AuthorName:  author.Name,
			AuthorEmail: author.Email,
			CreatedAt:   createdAt,
		}
	})
	s.last = createdAt
	if err != nil {
		s.logger.Warn("post created but not persisted", "id", post.ID, "error", err)
	}

	delivered := 0
	if s.hub != nil {
		delivered = s.hub.Broadcast(NewPublishedEvent(post))
	}

	for _, hook := range s.hooks {
		hook(post)
	}

	s.logger.Info("post published",
		"id", post.ID,
		"author_id", post.AuthorID,
		"viewers", delivered,
	)
	return post, nil
}

// List returns all posts, newest first.
func (s *Service) List() []Post {
	return s.repo.List()
}

// Get returns the post with the given id.
func (s *Service) Get(id string) (Post, bool) {
	return s.repo.Get(id)
}
