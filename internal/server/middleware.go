package server

import (
	"net/http"
	"slices"

	"github.com/felixge/httpsnoop"
)

// logRequests logs every routed request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"duration", m.Duration,
		)
	})
}

// cors answers preflight requests and sets Access-Control headers for allowed
// origins. Requests without an Origin header pass through untouched.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.origins.allows(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// originPolicy is the allow-list for browser origins. "*" allows any origin.
type originPolicy struct {
	any     bool
	origins []string
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{}
	for _, o := range origins {
		if o == "*" {
			p.any = true
			continue
		}
		if o != "" {
			p.origins = append(p.origins, o)
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	return p.any || slices.Contains(p.origins, origin)
}

// checkOrigin is the websocket upgrade check. Non-browser clients send no
// Origin header and are always accepted.
func (p originPolicy) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || p.allows(origin)
}
