package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/jrsteele09/chatcraft-server/token"
	"github.com/pkg/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified access token claims
	ContextKeyClaims ContextKey = "claims"
)

const roleAPI = token.RoleAPI

// claimsFromContext returns the access claims put there by RequireAccessToken.
func claimsFromContext(ctx context.Context) token.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(token.Claims)
	return claims
}

// RequireAccessToken verifies the access token cookie. Requests without a
// valid one are answered with failErr, apperrors.ErrUnauthenticated (401) or
// apperrors.ErrForbidden (403).
func (s *Server) RequireAccessToken(failErr error) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokens := s.cookies.GetTokens(r)
			claims, ok := s.tokens.Verify(r.Context(), s.origin(r), tokens.AccessToken, s.config.GetJWTSecret())
			if !ok {
				if tokens.AccessToken == "" {
					writeError(w, errors.Wrap(failErr, "missing access token"))
				} else {
					writeError(w, errors.Wrap(failErr, "invalid access token"))
				}
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole must follow RequireAccessToken.
func (s *Server) RequireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if claimsFromContext(r.Context()).Role() != role {
				writeError(w, errors.Wrapf(apperrors.ErrForbidden, "role %q required", role))
				return
			}
			next(w, r)
		}
	}
}

// RequireShareOwner allows only the user named in the path. It must follow
// RequireAccessToken.
func (s *Server) RequireShareOwner() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if claimsFromContext(r.Context()).Subject() != r.PathValue("user") {
				writeError(w, errors.Wrap(apperrors.ErrForbidden, "not the owner of this share"))
				return
			}
			next(w, r)
		}
	}
}
