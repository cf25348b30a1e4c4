// Package posts implements the publication service: creating posts on behalf
// of existing accounts and announcing each new post to connected viewers.
//
// A published [Post] carries a snapshot of its author's public name and email
// taken at creation time. Those fields are never refreshed, so a post keeps
// the author details it was published with.
//
// Every successful publish emits exactly one [Event] of type
// [EventPostPublished]. Events are emitted in creation order.
package posts
