package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/lambda-settings/internal/application"
	"github.com/eugenenazirov/lambda-settings/internal/config"
	"github.com/eugenenazirov/lambda-settings/internal/logging"
	"github.com/eugenenazirov/lambda-settings/internal/metrics"
	"github.com/eugenenazirov/lambda-settings/internal/sources"
	"github.com/eugenenazirov/lambda-settings/internal/version"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("settings-server", "Serves the redacted Lambda settings dump for local inspection")
	kingpinApp.Version(version.Semantic())
	configFile := kingpinApp.Flag("config", "Path to YAML server configuration file").Short('c').String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	settingsOpts := config.RegisterSettingsFlags(kingpinApp)

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	env := sources.Environ()
	overrides := &config.ServerOverrides{ConfigFile: *configFile}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.LoadServer(overrides, env)
	if err != nil {
		panic(fmt.Sprintf("failed to load server configuration: %v", err))
	}

	m := metrics.New()
	s, err := config.LoadSettings(context.Background(), settingsOpts, env)
	m.ObserveResolution(s, err)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve settings: %v", err))
	}

	logger, err := logging.New(s.DebugMode())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(s, cfg, logger, application.WithMetrics(m))
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
