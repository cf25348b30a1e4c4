package livefeed

import (
	"time"

	"github.com/jpalmerr/livefeed/internal/posts"
)

// Post is a published post as seen by publish callbacks.
//
// AuthorName and AuthorEmail are the author's details at publication time
// and are never refreshed.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

func publicPost(p posts.Post) Post {
	return Post{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		AuthorID:    p.AuthorID,
		AuthorName:  p.AuthorName,
		AuthorEmail: p.AuthorEmail,
		CreatedAt:   p.CreatedAt,
	}
}
