package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/vytor/memora/internal/api"
	"github.com/vytor/memora/internal/config"
	"github.com/vytor/memora/internal/db"
	"github.com/vytor/memora/internal/events"
	"github.com/vytor/memora/internal/jobs"
	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/metrics"
	"github.com/vytor/memora/internal/repository/sqlite"
	"github.com/vytor/memora/internal/services"
	"github.com/vytor/memora/internal/worker"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(logger.ParseFormat(cfg.LogFormat)),
		logger.WithColors(cfg.LogFormat != "json"),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Memora Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("default_deck_name=%s", cfg.DefaultDeckName)
	log.Debug("events.exchange=%s", cfg.Events.Exchange)
	log.Debug("events.worker_count=%d", cfg.Events.WorkerCount)
	log.Debug("events.queue_size=%d", cfg.Events.QueueSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Review events go to the broker when one is configured
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(ctx, cfg.Events.AMQPURL, cfg.Events.Exchange, cfg.Events.PublishAttempts)
		if err != nil {
			log.Error("failed to connect to message broker: %v", err)
			os.Exit(1)
		}
		publisher = p
	} else {
		log.Info("no AMQP URL configured, review events are discarded")
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	eventPool := worker.NewPool(cfg.Events.WorkerCount, cfg.Events.QueueSize)
	eventPool.Start(ctx)

	// Initialize services
	store := sqlite.NewStore(database.DB)
	schedulerService := services.NewSchedulerService(store, services.SchedulerSettings{
		Memory:      cfg.Scheduler.Memory(),
		Location:    cfg.Location(),
		DefaultDeck: cfg.DefaultDeckName,
	}, m, jobs.NewWorkerQueue(eventPool, publisher))
	itemService := services.NewItemService(store, cfg.Scheduler.ItemDefaults(), cfg.DefaultDeckName)
	deckService := services.NewDeckService(store)

	srv := &api.Server{
		Scheduler:          schedulerService,
		Items:              itemService,
		Decks:              deckService,
		DB:                 database,
		Metrics:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Drain queued review events before closing the publisher
	log.Debug("stopping event pool")
	eventPool.Stop()

	log.Info("===========================================")
	log.Info("Memora Server Stopped")
	log.Info("===========================================")
}
