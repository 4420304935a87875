package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitestatus/internal/config"
	"github.com/hamed0406/sitestatus/internal/httpapi"
	apimw "github.com/hamed0406/sitestatus/internal/httpapi/middleware"
	"github.com/hamed0406/sitestatus/internal/logging"
	"github.com/hamed0406/sitestatus/internal/probe"
	"github.com/hamed0406/sitestatus/internal/round"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	orch := round.NewOrchestrator(logger, probe.NewHTTPProber(cfg.UserAgent), cfg.MaxConcurrency, cfg.ProbeTimeout)
	api := httpapi.NewServer(logger, orch, cfg.Domains, cfg.Refresh)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(apimw.Keys{Public: cfg.PublicAPIKeys}, cfg.AllowedOrigins, cfg.RateRPM, cfg.RateBurst),
		ReadHeaderTimeout: 10 * time.Second,
		// a round may take up to twice the probe timeout
		WriteTimeout: 2*cfg.ProbeTimeout + 15*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api_listen",
			zap.String("addr", cfg.Addr),
			zap.Int("domains", len(cfg.Domains)),
			zap.Int("max_concurrency", cfg.MaxConcurrency),
			zap.Duration("probe_timeout", cfg.ProbeTimeout),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api_listen_error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*cfg.ProbeTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
	logger.Info("api_stopped")
}
