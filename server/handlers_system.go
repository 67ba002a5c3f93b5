package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthzHandler reports ok, checking the share backend when it can be pinged.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := s.shares.(pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("Share backend unhealthy")
				http.Error(w, "share backend unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
