package reconcile

import (
	"sync"

	"github.com/jpalmerr/livefeed/internal/posts"
)

// Notification announces a post written by someone other than the viewer.
type Notification struct {
	PostID     string `json:"postId"`
	AuthorName string `json:"authorName"`
	Title      string `json:"title"`
}

// Reconciler is a viewer's post cache. It is safe for concurrent use.
type Reconciler struct {
	mu       sync.RWMutex
	identity string
	posts    []posts.Post
	seen     map[string]struct{} // ids in posts
	pushed   map[string]struct{} // ids delivered by Apply
	pending  *Notification
}

// New creates a Reconciler for the viewer with the given account id.
// An empty identity means the viewer is not logged in.
func New(identity string) *Reconciler {
	return &Reconciler{
		identity: identity,
		seen:     make(map[string]struct{}),
		pushed:   make(map[string]struct{}),
	}
}

// SetIdentity changes the viewer's account id. Pass "" on logout.
func (r *Reconciler) SetIdentity(id string) {
	r.mu.Lock()
	r.identity = id
	r.mu.Unlock()
}

// Identity returns the viewer's account id.
func (r *Reconciler) Identity() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.identity
}

// Seed merges list, which must be newest first, into the cache.
//
// Cached posts missing from list were pushed after the listing was taken and
// stay at the front. Posts already cached are not duplicated. Seeding never
// raises a notification and leaves any pending one in place.
func (r *Reconciler) Seed(list []posts.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listed := make(map[string]struct{}, len(list))
	fromList := make([]posts.Post, 0, len(list))
	for _, p := range list {
		if _, dup := listed[p.ID]; dup {
			continue
		}
		listed[p.ID] = struct{}{}
		fromList = append(fromList, p)
	}

	merged := make([]posts.Post, 0, len(r.posts)+len(fromList))
	for _, p := range r.posts {
		if _, ok := listed[p.ID]; !ok {
			merged = append(merged, p)
		}
	}
	r.posts = append(merged, fromList...)

	for id := range listed {
		r.seen[id] = struct{}{}
	}
}

// Apply folds ev into the cache and reports whether it raised a notification.
//
// Unknown event types and repeated pushes of the same post are ignored. A
// pushed post that a listing already cached is not duplicated, but still
// notifies: the push is the live publish the listing raced with.
func (r *Reconciler) Apply(ev posts.Event) bool {
	if ev.Type != posts.EventPostPublished {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := ev.Post
	if _, dup := r.pushed[p.ID]; dup {
		return false
	}
	r.pushed[p.ID] = struct{}{}
	if _, cached := r.seen[p.ID]; !cached {
		r.seen[p.ID] = struct{}{}
		r.posts = append([]posts.Post{p}, r.posts...)
	}

	if r.identity == "" || p.AuthorID == r.identity {
		return false
	}
	r.pending = &Notification{PostID: p.ID, AuthorName: p.AuthorName, Title: p.Title}
	return true
}

// Notification returns the pending notification, if any.
func (r *Reconciler) Notification() (Notification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pending == nil {
		return Notification{}, false
	}
	return *r.pending, true
}

// Acknowledge clears the pending notification.
func (r *Reconciler) Acknowledge() {
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}

// Posts returns a copy of the cache, newest first.
func (r *Reconciler) Posts() []posts.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]posts.Post, len(r.posts))
	copy(out, r.posts)
	return out
}
