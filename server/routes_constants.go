package server

// Route path constants
const (
	RouteLogin  = "/api/login"
	RouteLogout = "/api/logout"
	RouteProxy  = "/api/proxy"
	RouteWhoAmI = "/api/whoami"

	RouteShare     = "/api/share/{user}/{id}"
	RouteShareList = "/api/share/{user}"
	routeShareBase = "/api/share/"

	RouteAPIPreflight = "/api/"

	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"
)
