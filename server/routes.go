package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
)

func (s *Server) initRoutes() {
	// Auth
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAccessToken(apperrors.ErrUnauthenticated))...))
	s.RegisterRouteHandler("GET "+RouteWhoAmI, ChainMiddleware(s.WhoAmIHandler(), s.APIMiddleware()...))

	// Proxy
	s.RegisterRouteHandler("GET "+RouteProxy, ChainMiddleware(s.ProxyHandler(), s.APIMiddleware(
		s.RequireAccessToken(apperrors.ErrForbidden),
		s.RequireRole(roleAPI),
	)...))

	// Share
	s.RegisterRouteHandler("GET "+RouteShare, ChainMiddleware(s.GetShareHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteShare, ChainMiddleware(s.PutShareHandler(), s.APIMiddleware(
		s.RequireAccessToken(apperrors.ErrUnauthenticated),
		s.RequireShareOwner(),
	)...))
	s.RegisterRouteHandler("DELETE "+RouteShare, ChainMiddleware(s.DeleteShareHandler(), s.APIMiddleware(
		s.RequireAccessToken(apperrors.ErrUnauthenticated),
		s.RequireShareOwner(),
	)...))
	s.RegisterRouteHandler("GET "+RouteShareList, ChainMiddleware(s.ListSharesHandler(), s.APIMiddleware(
		s.RequireAccessToken(apperrors.ErrUnauthenticated),
		s.RequireShareOwner(),
	)...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPreflight, ChainMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	// System
	s.RegisterRouteHandler("GET "+RouteHealthz, ChainMiddleware(s.HealthzHandler(), s.SystemMiddleware()...))
	if s.metricsHTTP != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, ChainMiddleware(s.metricsHTTP.ServeHTTP, s.SystemMiddleware()...))
	}
}
