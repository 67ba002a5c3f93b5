package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/chatcraft-server/internal/config"
	"github.com/jrsteele09/chatcraft-server/internal/logging"
	"github.com/jrsteele09/chatcraft-server/internal/metrics"
	"github.com/jrsteele09/chatcraft-server/providers"
	"github.com/jrsteele09/chatcraft-server/server"
	"github.com/jrsteele09/chatcraft-server/share"
	"github.com/jrsteele09/chatcraft-server/share/redisstore"
	"github.com/jrsteele09/chatcraft-server/token"
	"github.com/jrsteele09/chatcraft-server/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "chatcraft"

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(os.Stderr, c.IsDevelopment(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	if c.GetJWTSecret() == "" {
		log.Warn().Msg("JWT_SECRET is not set, logins will fail")
	}

	ctx := context.Background()

	shares, closeShares, err := openShareStore(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeShares(); err != nil {
			log.Warn().Err(err).Msg("Failed to close share store")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	fetcher := transform.NewFetcher(transform.NewSafeClient(c.GetProxyTimeout()))
	youtube := transform.NewYouTube(fetcher, transform.YouTubeConfig{CacheTTL: c.GetCaptionCacheTTL()})
	defer youtube.Close()

	pipeline := transform.NewPipeline(
		transform.NewDefault(fetcher),
		[]transform.Transformer{transform.NewGitHub(fetcher), youtube},
		transform.WithMetrics(recorder),
	)

	srv, err := server.New(c, server.Deps{
		Tokens:         token.NewService(),
		Providers:      providers.NewRegistry(loginProviders(c)...),
		Pipeline:       pipeline,
		Shares:         shares,
		Metrics:        recorder,
		MetricsHandler: metrics.Handler(reg),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stopSignal():
	}
	return shutdown(httpServer)
}

func loginProviders(c config.OAuthConfig) []providers.Provider {
	list := []providers.Provider{
		providers.NewGitHub(providers.GitHubConfig{
			ClientID:     c.GetGitHubClientID(),
			ClientSecret: c.GetGitHubClientSecret(),
		}),
	}
	if c.GoogleEnabled() {
		list = append(list, providers.NewGoogle(providers.GoogleConfig{
			ClientID:     c.GetGoogleClientID(),
			ClientSecret: c.GetGoogleClientSecret(),
		}))
	}
	return list
}

// openShareStore returns the configured backend and its close func.
func openShareStore(ctx context.Context, c config.ShareConfig) (share.Store, func() error, error) {
	switch backend := c.GetShareBackend(); backend {
	case config.ShareBackendMemory:
		log.Warn().Msg("Using in-memory share store, shares are lost on restart")
		return share.NewMemoryStore(), func() error { return nil }, nil
	case config.ShareBackendRedis:
		store, err := redisstore.Open(ctx, c.GetRedisURL(), redisKeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("open share store: %w", err)
		}
		log.Info().Msg("Using redis share store")
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown SHARE_BACKEND %q", backend)
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
