package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/livefeed/internal/client"
	"github.com/jpalmerr/livefeed/internal/posts"
	"github.com/jpalmerr/livefeed/internal/reconcile"
)

// recentPosts is how many listed posts watch prints on start.
const recentPosts = 10

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the feed as a viewer",
	Long: `Follow a running feed from the terminal.

watch logs in (when --email is given), prints the most recent posts, then
prints a notification for every post published by someone else. Without
--email the feed is followed anonymously and no notifications are shown.

The password is read from --password or the LIVEFEED_PASSWORD environment
variable.

Example:
  livefeed watch --email ada@example.com
  livefeed watch --server http://feed.internal:3200`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("server", "http://localhost:3200", "feed server base url")
	watchCmd.Flags().String("email", "", "account email to log in with")
	watchCmd.Flags().String("password", "", "account password (default $LIVEFEED_PASSWORD)")
	watchCmd.Flags().Duration("retry-delay", client.DefaultRetryDelay, "pause between reconnection attempts")
	watchCmd.Flags().Int("retry-attempts", client.DefaultMaxAttempts, "consecutive failed attempts before giving up")
	watchCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("LIVEFEED_PASSWORD")
	}
	delay, _ := cmd.Flags().GetDuration("retry-delay")
	attempts, _ := cmd.Flags().GetInt("retry-attempts")
	levelName, _ := cmd.Flags().GetString("log-level")

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid --log-level %q", levelName)
	}
	logger := newLogger(os.Stderr, level)
	out := cmd.OutOrStdout()

	c, err := client.New(server, logger,
		client.WithRetry(delay, attempts),
		client.WithNotify(func(n reconcile.Notification) {
			fmt.Fprintln(out, formatNotification(n))
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if email != "" {
		user, err := c.Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Fprintf(out, "Logged in as %s (%s)\n", user.Name, user.ID)
	}

	if err := c.Seed(ctx); err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}
	printRecent(out, c.Reconciler().Posts())

	err = c.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func formatNotification(n reconcile.Notification) string {
	return fmt.Sprintf("New post from %s: %s", n.AuthorName, n.Title)
}

func printRecent(w io.Writer, list []posts.Post) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	if len(list) > recentPosts {
		list = list[:recentPosts]
	}
	for _, p := range list {
		fmt.Fprintf(w, "%-10s %s  %s: %s\n", p.ID, p.CreatedAt.Local().Format(time.DateTime), p.AuthorName, p.Title)
	}
}
