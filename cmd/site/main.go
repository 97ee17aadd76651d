package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zendhq/zend-site/internal/api"
	"github.com/zendhq/zend-site/internal/config"
	"github.com/zendhq/zend-site/internal/logger"
	"github.com/zendhq/zend-site/internal/statsapi"
	"github.com/zendhq/zend-site/internal/viewmodel"
	"github.com/zendhq/zend-site/internal/web"
	"github.com/zendhq/zend-site/internal/web/handlers"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Str("version", version).Msg("starting zend site")

	// 3. Setup context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 4. Load site configuration
	site, err := config.LoadSite(cfg.SiteFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SiteFile).Msg("failed to load site config")
	}

	// 5. Stats client
	stats := statsapi.NewClient(statsapi.Config{
		BaseURL: cfg.StatsBaseURL,
		Timeout: cfg.StatsTimeout,
		RPS:     cfg.StatsRateRPS,
		Burst:   cfg.StatsRateBurst,
	})
	presenter := viewmodel.Presenter{
		ExplorerBaseURL: site.ExplorerBaseURL,
		ChartColors:     site.ChartColors,
		SuccessColor:    site.Brand.Success,
		WarningColor:    site.Brand.Warning,
	}
	log.Info().Str("base_url", cfg.StatsBaseURL).Dur("timeout", cfg.StatsTimeout).Msg("stats client ready")

	// 6. Templates & WebSocket hub
	tmpl := web.NewTemplateEngine(cfg.TemplatesDir, cfg.TemplateReload)
	if err := tmpl.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load templates")
	}

	hub := web.NewHub()
	go hub.Run()

	// pages wait a little longer than one upstream request
	wait := cfg.StatsTimeout + 5*time.Second

	// 7. Initialize API server
	apiServer := api.NewServer(&api.Config{
		Port:           cfg.APIPort,
		Title:          site.Name + " Stats API",
		Description:    "Presented platform statistics for the " + site.Name + " dashboard",
		Version:        version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		StatsWait:      wait,
	}, &api.Dependencies{
		Fetcher:   stats,
		Presenter: presenter,
		Live:      hub,
	}, log)

	// 8. Initialize web server & register handlers
	server := web.NewServer(&web.Config{
		Port:        cfg.HTTPPort,
		StaticDir:   cfg.StaticDir,
		Version:     version,
		PageTimeout: wait + 5*time.Second,
	}, log, hub)

	server.RegisterPagesHandler(handlers.NewPagesHandler(tmpl, stats, presenter, site, log, wait))
	server.RegisterLiveHandler(web.NewLiveHandler(hub, stats, presenter, tmpl, site, log))
	apiServer.MountDocsOn(server.Router())

	// 9. Start servers
	errc := make(chan error, 2)
	go func() { errc <- serve("web", server.Start) }()
	go func() { errc <- serve("api", apiServer.Start) }()

	// 10. Wait for shutdown
	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case err := <-errc:
		log.Error().Err(err).Msg("server error")
	}
	log.Info().Msg("shutting down services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("web server shutdown")
	}
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api server shutdown")
	}

	log.Info().Msg("shutdown complete")
}

// serve runs start and treats a clean shutdown as success.
func serve(name string, start func() error) error {
	if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
