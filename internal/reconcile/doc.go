// Package reconcile keeps a viewer's local cache of posts in step with
// pushed events.
//
// A [Reconciler] is seeded from a listing, then fed every post-published
// event the viewer receives. Each event prepends its post to the cache and
// may raise a notification. Notifications are single-slot: a new one replaces
// any that has not been acknowledged. Viewers are never notified of their own
// posts, and anonymous viewers are never notified.
package reconcile
