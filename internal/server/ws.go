package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// pongWait is how long a websocket viewer may stay silent.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = pongWait * 9 / 10

	// maxMessageSize caps inbound frames; viewers only send control frames.
	maxMessageSize = 512
)

// handleWebSocket streams post-published events as JSON text frames.
//
// Each frame is {"type":"post-published","payload":<post>}. The connection is
// kept alive with pings and closed when the session ends, the viewer goes
// away or the server shuts down.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Hub == nil {
		http.Error(w, "push not configured", http.StatusServiceUnavailable)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}

	// register before the handshake completes: a connected client sees
	// every publish that follows
	session := s.cfg.Hub.Register()
	defer s.cfg.Hub.Unregister(session)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		s.logger.Warn("websocket upgrade failed", "error", err, "origin", r.Header.Get("Origin"))
		return
	}
	defer conn.Close()

	log := s.logger.With("transport", "ws", "session_id", session.ID())
	log.Info("viewer connected")
	defer log.Info("viewer disconnected")

	// the read loop only services control frames and detects disconnects
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	closeWith := func(code int, text string) {
		deadline := time.Now().Add(s.cfg.WriteTimeout)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	}

	for {
		select {
		case ev, ok := <-session.Events():
			if !ok {
				if session.Evicted() {
					log.Warn("viewer too slow, closing socket")
					closeWith(websocket.ClosePolicyViolation, "too slow")
				} else {
					closeWith(websocket.CloseNormalClosure, "")
				}
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("websocket write failed", "error", err)
				return
			}

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-gone:
			return

		case <-r.Context().Done():
			closeWith(websocket.CloseGoingAway, "server shutting down")
			return
		}
	}
}
