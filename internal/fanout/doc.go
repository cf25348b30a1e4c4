// Package fanout delivers events to every connected viewer session.
//
// A [Hub] keeps the set of registered [Session] values. [Hub.Broadcast] hands
// an event to each of them through a per-session buffered channel, so one slow
// viewer never delays the publisher or the other viewers.
//
// Delivery guarantees:
//
//   - Every session receives events in broadcast order (FIFO per session).
//   - A session registered while a broadcast is running may miss that
//     broadcast, but receives all later ones.
//   - A session whose buffer is full is evicted: it is unregistered and its
//     channel is closed. The transport treats the closed channel as a
//     disconnect, so a viewer never sees a stream with silent gaps.
//
// The hub is transport-agnostic; the HTTP server adapts sessions to SSE and
// websocket connections.
package fanout
