// Package client is the viewer side of a live feed.
//
// A [Client] talks to the JSON API for accounts, listings and publishing, and
// consumes the websocket push channel. Pushed events are folded into a
// [reconcile.Reconciler], and notifications it raises are handed to a
// callback.
//
// The push channel reconnects with a fixed delay and a bounded number of
// consecutive attempts. Each time the channel opens, the cache is seeded from
// the post listing, so posts published before connecting or while
// disconnected are not lost.
package client
