package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"inkpress/internal/git"
	"inkpress/internal/logger"
	"inkpress/internal/server/api"
	"inkpress/internal/server/config"
	"inkpress/internal/server/notify"
	"inkpress/internal/server/publish"
	"inkpress/internal/server/service"
	"inkpress/internal/version"

	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version if requested
	if *showVersion {
		info := version.GetInfo()
		fmt.Println(info.String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&cfg.Log, "server")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Git publishing
	gitClient := git.NewShellClient(cfg.Site.Root, cfg.Git, log)
	repo := git.NewRepo(gitClient, &cfg.Git.Push, log.Named("git"))

	checkCtx, checkCancel := context.WithTimeout(context.Background(), cfg.Git.Timeout)
	if err := repo.Check(checkCtx); err != nil {
		log.Warn("Site root is not a usable git work tree, publishing will fail",
			zap.String("root", cfg.Site.Root),
			zap.Error(err))
	}
	checkCancel()

	var notifier publish.Notifier
	if cfg.Notify.Webhook.Enabled {
		notifier = notify.NewWebhookNotifier(&cfg.Notify.Webhook, log)
	}

	publisher := publish.New(publish.Options{
		DataDir:       cfg.Site.Path(cfg.Site.DataDir),
		LogsDir:       cfg.Site.Path(cfg.Site.LogsDir),
		CommitMessage: cfg.Git.CommitMessage,
		Timeout:       cfg.Git.Timeout,
	}, repo, notifier, log)

	// Initialize service
	svc := service.NewService(cfg, publisher, log)

	// Initialize router
	router := api.NewRouter(cfg, svc, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in background
	go func() {
		log.Info("Starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("site_root", cfg.Site.Root),
			zap.String("version", version.Version))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for signal
	sig := <-sigChan
	log.Info("Received signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	log.Info("Starting graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// Let background publishes finish
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Warn("Background publishes did not finish", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
