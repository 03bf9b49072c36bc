package application

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/lambda-settings/internal/api"
	"github.com/eugenenazirov/lambda-settings/internal/config"
	"github.com/eugenenazirov/lambda-settings/internal/metrics"
	"github.com/eugenenazirov/lambda-settings/internal/settings"
)

// App encapsulates the diagnostic server and the settings it exposes.
type App struct {
	settings *settings.Settings
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// Option customises New.
type Option func(*options)

type options struct {
	metrics *metrics.Metrics
}

// WithMetrics exposes m on /metrics and records request counts into it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New wires the resolved settings into the HTTP server described by cfg.
func New(s *settings.Settings, cfg config.Server, logger *zap.Logger, opts ...Option) (*App, error) {
	if s == nil {
		return nil, errors.New("settings are required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if o.metrics != nil {
		routerOpts = append(routerOpts, api.WithMetrics(o.metrics))
	}

	handler := api.NewHandler(s)
	apiRouter := api.NewRouter(handler, logger, routerOpts...)

	return &App{
		settings: s,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler routes /api/ and /metrics traffic and sends the bare root
// to the dump.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/settings", http.StatusFound)
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Server, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	a.logger.Info("settings resolved",
		zap.String("aws_region", a.settings.AWSRegion()),
		zap.Bool("debug_mode", a.settings.DebugMode()),
	)
	if a.settings.DebugMode() {
		a.logger.Debug("settings dump", zap.Object("settings", a.settings))
	}

	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
