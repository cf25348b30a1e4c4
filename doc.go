// Package livefeed provides an embeddable real-time post feed.
//
// Registered users publish short posts that become visible to every connected
// viewer without a reload. Accounts and posts live in memory and are
// snapshotted to JSON files after every change, so a restart resumes with the
// same records and id counters.
//
// # Quick Start
//
//	feed, err := livefeed.New(
//	    livefeed.WithPort(3200),
//	    livefeed.WithDataDir("./data"),
//	)
//	if err != nil {
//	    slog.Error("failed to create feed", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	feed.Start(ctx) // blocks until ctx is cancelled
//
// # Publish Callbacks
//
// [WithPublishCallback] registers a function run after every successful
// publish, in creation order:
//
//	livefeed.WithPublishCallback(func(p livefeed.Post) {
//	    slog.Info("new post", "id", p.ID, "author", p.AuthorName)
//	})
//
// # Architecture
//
// The feed consists of several internal packages (under internal/):
//
//   - snapshot: atomic JSON snapshot files, one per collection
//   - store: generic in-memory record repository with sequential ids
//   - accounts: account directory with salted argon2id secrets
//   - posts: publication service stamping author details on each post
//   - fanout: per-viewer buffered push sessions
//   - reconcile: viewer-side cache and notification state
//   - server: JSON API, Server-Sent Events and websocket push
//   - client: viewer client used by the watch command
//
// Users of this package interact only with the public API defined here.
package livefeed
