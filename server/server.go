package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/chatcraft-server/internal/config"
	"github.com/jrsteele09/chatcraft-server/internal/metrics"
	"github.com/jrsteele09/chatcraft-server/providers"
	"github.com/jrsteele09/chatcraft-server/sessions"
	"github.com/jrsteele09/chatcraft-server/share"
	"github.com/jrsteele09/chatcraft-server/token"
	"github.com/jrsteele09/chatcraft-server/transform"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ContentFetcher resolves a proxied URL. transform.Pipeline implements it.
type ContentFetcher interface {
	FetchData(ctx context.Context, rawURL string) (*http.Response, error)
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Tokens    *token.Service
	Providers *providers.Registry
	Pipeline  ContentFetcher
	Shares    share.Store

	// Optional
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	ValidateURL    func(*url.URL) error
	Now            func() time.Time
}

type Server struct {
	env     string
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	cookies sessions.CookieConfig

	tokens      *token.Service
	providers   *providers.Registry
	pipeline    ContentFetcher
	shares      share.Store
	metrics     metrics.Recorder
	metricsHTTP http.Handler
	validateURL func(*url.URL) error
	limiter     *subjectLimiter
	now         func() time.Time
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Tokens == nil || deps.Providers == nil || deps.Pipeline == nil || deps.Shares == nil {
		return nil, errors.New("[Server New] tokens, providers, pipeline and shares are required")
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		cookies:     sessions.NewCookieConfig(config.IsDevelopment()),
		tokens:      deps.Tokens,
		providers:   deps.Providers,
		pipeline:    deps.Pipeline,
		shares:      deps.Shares,
		metrics:     deps.Metrics,
		metricsHTTP: deps.MetricsHandler,
		validateURL: deps.ValidateURL,
		limiter:     newSubjectLimiter(config.GetProxyRatePerMinute()),
		now:         deps.Now,
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.validateURL == nil {
		s.validateURL = transform.ValidateURL
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDevelopment {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%s] %s", colourMethod(fmt.Sprintf(" %-7s", method), method), path)
}

// origin is APP_ORIGIN when set, otherwise derived from the request.
func (s *Server) origin(r *http.Request) string {
	if o := s.config.GetOrigin(); o != "" {
		return o
	}
	return getScheme(r) + "://" + r.Host
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return strings.TrimSpace(strings.SplitN(scheme, ",", 2)[0])
	}
	return "http"
}
