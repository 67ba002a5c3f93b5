package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/chatcraft-server/providers"
	"github.com/jrsteele09/chatcraft-server/token"
	"github.com/pkg/errors"
)

// issueTokens mints the access and id token pair for a logged in user.
func (s *Server) issueTokens(origin string, user providers.User) (accessToken, idToken string, err error) {
	secret := s.config.GetJWTSecret()

	accessToken, err = s.tokens.CreateToken(origin, user.Username, token.Claims{
		token.ClaimRole: token.RoleAPI,
	}, secret)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create access token")
	}

	idToken, err = s.tokens.CreateToken(origin, user.Username, token.Claims{
		token.ClaimUsername:  user.Username,
		token.ClaimName:      user.Name,
		token.ClaimAvatarURL: user.AvatarURL,
	}, secret)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create id token")
	}
	return accessToken, idToken, nil
}

// loginRedirectURL is the callback the provider sends the browser back to.
func (s *Server) loginRedirectURL(r *http.Request, provider string) string {
	return s.origin(r) + RouteLogin + "?provider=" + url.QueryEscape(provider)
}

// afterLoginPath returns the SPA path to land on: the chat the login started
// from, or the root.
func afterLoginPath(chatID string) string {
	if chatID == "" {
		return "/"
	}
	return "/c/" + url.PathEscape(chatID)
}

func redirectLoginError(w http.ResponseWriter, r *http.Request, provider, message string) {
	q := url.Values{}
	q.Set(provider+"_login_error", message)
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusFound)
}
