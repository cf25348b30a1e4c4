package fanout

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultBufferSize is the per-session buffer used when none is configured.
const DefaultBufferSize = 64

// Session is one registered viewer.
//
// Events arrive on the channel returned by [Session.Events]. The channel is
// closed when the session is unregistered or evicted.
type Session[E any] struct {
	id        string
	ch        chan E
	closeOnce sync.Once
	evicted   atomic.Bool
}

// ID returns the session's unique id.
func (s *Session[E]) ID() string {
	return s.id
}

// Events returns the channel delivering this session's events.
func (s *Session[E]) Events() <-chan E {
	return s.ch
}

// Evicted reports whether the hub dropped the session because it fell behind.
func (s *Session[E]) Evicted() bool {
	return s.evicted.Load()
}

func (s *Session[E]) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Hub fans events out to registered sessions.
//
// Hub is safe for concurrent use. Register and Unregister may run while a
// broadcast is in progress.
type Hub[E any] struct {
	mu       sync.RWMutex
	sessions map[*Session[E]]struct{}

	// broadcastMu orders broadcasts so every session sees the same sequence
	broadcastMu sync.Mutex

	bufferSize int
	logger     *slog.Logger
}

// NewHub creates a [Hub] whose sessions buffer up to bufferSize events.
//
// A bufferSize below 1 selects [DefaultBufferSize].
func NewHub[E any](bufferSize int, logger *slog.Logger) *Hub[E] {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub[E]{
		sessions:   make(map[*Session[E]]struct{}),
		bufferSize: bufferSize,
		logger:     logger.With("component", "fanout"),
	}
}

// Register adds a new session and returns it.
//
// Caller must call [Hub.Unregister] when the viewer disconnects.
func (h *Hub[E]) Register() *Session[E] {
	s := &Session[E]{
		id: uuid.NewString(),
		ch: make(chan E, h.bufferSize),
	}

	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("session registered", "session_id", s.id)
	return s
}

// Unregister removes s and closes its channel.
//
// Unregistering a session that is not registered is a no-op.
func (h *Hub[E]) Unregister(s *Session[E]) {
	if s == nil {
		return
	}

	h.mu.Lock()
	_, ok := h.sessions[s]
	delete(h.sessions, s)
	// closing under the write lock guarantees no broadcast is sending to s
	s.close()
	h.mu.Unlock()

	if ok {
		h.logger.Debug("session unregistered", "session_id", s.id)
	}
}

// Broadcast delivers e to every registered session and returns how many
// sessions accepted it.
//
// Broadcast never blocks on a viewer. Sessions with a full buffer are evicted.
func (h *Hub[E]) Broadcast(e E) int {
	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()

	var lagging []*Session[E]
	delivered := 0

	h.mu.RLock()
	for s := range h.sessions {
		select {
		case s.ch <- e:
			delivered++
		default:
			lagging = append(lagging, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range lagging {
		s.evicted.Store(true)
		h.Unregister(s)
		h.logger.Warn("session evicted, buffer full",
			"session_id", s.id,
			"buffer", h.bufferSize,
		)
	}

	return delivered
}

// Len returns the number of registered sessions.
func (h *Hub[E]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close unregisters every session.
func (h *Hub[E]) Close() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[*Session[E]]struct{})
	for s := range sessions {
		s.close()
	}
	h.mu.Unlock()
}
