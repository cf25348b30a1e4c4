package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/livefeed"
)

const port = 8080

func main() {
	dataDir, err := os.MkdirTemp("", "livefeed-demo-")
	if err != nil {
		slog.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dataDir)

	feed, err := livefeed.New(
		livefeed.WithPort(port),
		livefeed.WithDataDir(dataDir),
		livefeed.WithTitle("Live Feed Demo"),
		livefeed.WithAllowedOrigins("*"),
		livefeed.WithPublishCallback(func(p livefeed.Post) {
			fmt.Printf("  %s  %-8s %s\n", p.ID, p.AuthorName, p.Title)
		}),
	)
	if err != nil {
		slog.Error("failed to create feed", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Live Feed Demo")
	fmt.Println()
	fmt.Printf("  API:     http://localhost:%d/api/posts\n", port)
	fmt.Printf("  Stream:  curl -N http://localhost:%d/api/sse\n", port)
	fmt.Println("  Two demo authors publish every few seconds (see authors.go).")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go RunDemoAuthors(ctx, fmt.Sprintf("http://localhost:%d", port))

	if err := feed.Start(ctx); err != nil {
		slog.Error("feed error", "error", err)
		os.Exit(1)
	}
}
