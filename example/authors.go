package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jpalmerr/livefeed/internal/client"
	"github.com/jpalmerr/livefeed/internal/reconcile"
)

type demoAuthor struct {
	name   string
	email  string
	titles []string
}

var demoAuthors = []demoAuthor{
	{"Ada", "ada@example.com", []string{"Notes on the engine", "Bernoulli numbers", "Loops"}},
	{"Grace", "grace@example.com", []string{"A bug in the relay", "Compilers", "Nanoseconds"}},
}

// RunDemoAuthors signs up the demo authors against baseURL and has each
// publish a post every 3-8 seconds until ctx is done.
//
// Every author also watches the feed, so each one logs the others' posts.
func RunDemoAuthors(ctx context.Context, baseURL string) {
	// give the server a moment to bind
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return
	}

	for _, a := range demoAuthors {
		go runAuthor(ctx, baseURL, a)
	}
}

func runAuthor(ctx context.Context, baseURL string, a demoAuthor) {
	logger := slog.Default().With("author", a.name)

	c, err := client.New(baseURL, logger, client.WithNotify(func(n reconcile.Notification) {
		fmt.Printf("  [%s] new post from %s: %s\n", a.name, n.AuthorName, n.Title)
	}))
	if err != nil {
		logger.Error("failed to create client", "error", err)
		return
	}

	const password = "demo-password"
	if _, err := c.CreateAccount(ctx, a.name, a.email, password); err != nil {
		logger.Error("failed to create account", "error", err)
		return
	}
	if _, err := c.Login(ctx, a.email, password); err != nil {
		logger.Error("failed to log in", "error", err)
		return
	}
	if err := c.Seed(ctx); err != nil {
		logger.Warn("failed to load posts", "error", err)
	}

	go func() {
		if err := c.Watch(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("watch stopped", "error", err)
		}
	}()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(3+rand.Intn(6)) * time.Second):
		}

		title := a.titles[i%len(a.titles)]
		if _, err := c.Publish(ctx, title, "Posted by the demo."); err != nil {
			logger.Warn("publish failed", "error", err)
		}
	}
}
