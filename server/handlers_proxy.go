package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/chatcraft-server/transform"
	"github.com/rs/zerolog"
)

// ProxyHandler fetches ?url= through the transformer pipeline and streams the
// result back with the upstream status and content type.
func (s *Server) ProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		u, err := transform.ParseURL(r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.validateURL(u); err != nil {
			logger.Warn().Err(err).Str("url", u.Redacted()).Msg("Proxy target refused")
			writeError(w, err)
			return
		}

		subject := claimsFromContext(r.Context()).Subject()
		if !s.limiter.Allow(subject) {
			w.Header().Set("Retry-After", strconv.Itoa(60))
			writeMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		start := time.Now()
		resp, err := s.pipeline.FetchData(r.Context(), u.String())
		if err != nil {
			logger.Warn().Err(err).Str("url", u.Redacted()).Msg("Proxy fetch failed")
			status := statusForError(err)
			s.metrics.RecordProxyRequest(status, time.Since(start))
			writeError(w, err)
			return
		}
		defer resp.Body.Close()

		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			logger.Warn().Err(err).Str("url", u.Redacted()).Msg("Proxy stream interrupted")
		}
		s.metrics.RecordProxyRequest(resp.StatusCode, time.Since(start))
	}
}
