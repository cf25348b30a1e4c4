package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleSSE streams post-published events via Server-Sent Events.
//
// Every write carries a deadline so a slow or vanished client cannot block the
// handler past shutdown. The handler exits when the request context ends or
// the hub closes the session.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	if s.cfg.Hub == nil {
		http.Error(w, "push not configured", http.StatusServiceUnavailable)
		return
	}

	rc := http.NewResponseController(w)

	// some ResponseWriter implementations cannot set deadlines
	deadlinesSupported := true

	write := func(format string, args ...any) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	session := s.cfg.Hub.Register()
	defer s.cfg.Hub.Unregister(session)

	log := s.logger.With("transport", "sse", "session_id", session.ID())
	log.Info("viewer connected")
	defer log.Info("viewer disconnected")

	// comment line so the client sees headers before the first post
	if err := write(": connected\n\n"); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-session.Events():
			if !ok {
				if session.Evicted() {
					log.Warn("viewer too slow, closing stream")
				}
				return
			}
			data, err := json.Marshal(ev.Post)
			if err != nil {
				log.Error("failed to encode post", "error", err)
				continue
			}
			if err := write("event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on client disconnect and on server shutdown via BaseContext
			return
		}
	}
}
