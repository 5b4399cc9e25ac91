package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const readinessTimeout = 3 * time.Second

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   s.deps.Version,
		"timestamp": time.Now().UTC(),
	})
}

// ready pings every registered dependency and reports 503 if any fails.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(s.deps.Readiness))
	for name := range s.deps.Readiness {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	status := http.StatusOK
	for _, name := range names {
		if err := s.deps.Readiness[name].Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			s.log.Warn("readiness check failed", map[string]interface{}{"dependency": name, "error": err.Error()})
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	writeJSON(w, status, map[string]interface{}{"status": state, "checks": checks})
}
