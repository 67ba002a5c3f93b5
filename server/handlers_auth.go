package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/jrsteele09/chatcraft-server/providers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// LoginHandler runs both legs of the OAuth flow. Without a code it sends the
// browser to the provider; with one it exchanges it, sets the session cookie
// pair and returns the browser to the SPA.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		q := r.URL.Query()

		providerName := q.Get("provider")
		if providerName == "" {
			providerName = providers.GitHubName
		}
		provider, err := s.providers.Get(providerName)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		redirectURL := s.loginRedirectURL(r, providerName)

		if providerErr := q.Get("error"); providerErr != "" {
			if desc := q.Get("error_description"); desc != "" {
				providerErr = desc
			}
			s.metrics.RecordLogin(providerName, false)
			redirectLoginError(w, r, providerName, providerErr)
			return
		}

		code := q.Get("code")
		if code == "" {
			authURL, err := provider.AuthCodeURL(r.Context(), q.Get("chat"), redirectURL)
			if err != nil {
				logger.Error().Err(err).Str("provider", providerName).Msg("Failed to build authorize url")
				redirectLoginError(w, r, providerName, err.Error())
				return
			}
			http.Redirect(w, r, authURL, http.StatusFound)
			return
		}

		user, err := provider.Exchange(r.Context(), code, redirectURL)
		if err != nil {
			logger.Warn().Err(err).Str("provider", providerName).Msg("Login failed")
			s.metrics.RecordLogin(providerName, false)
			redirectLoginError(w, r, providerName, err.Error())
			return
		}

		accessToken, idToken, err := s.issueTokens(s.origin(r), user)
		if err != nil {
			logger.Error().Err(err).Str("provider", providerName).Msg("Failed to issue session tokens")
			s.metrics.RecordLogin(providerName, false)
			redirectLoginError(w, r, providerName, "unable to create session")
			return
		}

		s.cookies.SetPair(w, accessToken, idToken, s.config.GetCookieMaxAge())
		s.metrics.RecordLogin(providerName, true)
		logger.Info().Str("provider", providerName).Str("user", user.Username).Msg("User logged in")

		http.Redirect(w, r, afterLoginPath(q.Get("state")), http.StatusFound)
	}
}

// LogoutHandler clears both session cookies. Only reachable with a valid
// access token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.cookies.ClearPair(w)
		zerolog.Ctx(r.Context()).Info().Str("user", claimsFromContext(r.Context()).Subject()).Msg("User logged out")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// WhoAmIHandler returns the verified id token claims.
func (s *Server) WhoAmIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokens := s.cookies.GetTokens(r)
		if tokens.IDToken == "" {
			writeError(w, errors.Wrap(apperrors.ErrUnauthenticated, "not logged in"))
			return
		}
		claims, err := s.tokens.VerifyToken(s.origin(r), tokens.IDToken, s.config.GetJWTSecret())
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Rejected id token")
			writeError(w, errors.Wrap(apperrors.ErrInvalidToken, "invalid id token"))
			return
		}
		writeJSON(w, http.StatusOK, claims)
	}
}
