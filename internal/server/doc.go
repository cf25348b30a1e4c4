// Package server provides the HTTP surface of a live feed.
//
// It serves three concerns on one port:
//
//   - JSON API: account creation, login, user and post listings, publishing
//   - Server-Sent Events: post-published pushes at "/api/sse"
//   - WebSocket: the same pushes as JSON frames at "/api/ws"
//
// Both push transports register a [fanout.Session] per connection and stream
// its events with a write deadline on every push. A session closed by the hub
// ends the connection.
//
// The server shuts down gracefully when the context passed to [Server.Start]
// is cancelled, with a 5-second timeout for in-flight requests.
package server
