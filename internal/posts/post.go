package posts

import (
	"log/slog"
	"time"

	"github.com/jpalmerr/livefeed/internal/store"
)

const (
	// Collection is the snapshot collection name for posts.
	Collection = "posts"

	// IDPrefix prefixes every generated post id.
	IDPrefix = "post_"

	// EventPostPublished is the only event type the publication pipeline emits.
	EventPostPublished = "post-published"
)

// Post is a published post.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Post) RecordID() string { return p.ID }

// Event is pushed to viewers when a post is published.
type Event struct {
	Type string `json:"type"`
	Post Post   `json:"payload"`
}

// NewPublishedEvent wraps p in a [EventPostPublished] event.
func NewPublishedEvent(p Post) Event {
	return Event{Type: EventPostPublished, Post: p}
}

// NewRepository returns the post repository backed by snaps.
func NewRepository(snaps store.Snapshotter, logger *slog.Logger) *store.Repository[Post] {
	return store.New[Post](Collection, IDPrefix, snaps, logger)
}
