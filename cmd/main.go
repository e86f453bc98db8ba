package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourbreathtaking/backend-safeindustech/internal/alerting"
	"github.com/yourbreathtaking/backend-safeindustech/internal/broker"
	"github.com/yourbreathtaking/backend-safeindustech/internal/config"
	"github.com/yourbreathtaking/backend-safeindustech/internal/database/postgres"
	redisdb "github.com/yourbreathtaking/backend-safeindustech/internal/database/redis"
	"github.com/yourbreathtaking/backend-safeindustech/internal/event"
	"github.com/yourbreathtaking/backend-safeindustech/internal/handlers"
	"github.com/yourbreathtaking/backend-safeindustech/internal/repository"
	"github.com/yourbreathtaking/backend-safeindustech/internal/services"
	"github.com/yourbreathtaking/backend-safeindustech/internal/state"
	"github.com/yourbreathtaking/backend-safeindustech/internal/topology"
	"github.com/yourbreathtaking/backend-safeindustech/internal/ws"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.New()
	slog.Info("Starting safety-service", "port", cfg.Port)

	// Postgres is the store of record; without it there is nothing to run.
	db, err := postgres.Connect(cfg.PostgresCfg)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis only mirrors zone state for external readers and warm starts;
	// the service degrades rather than refuses to start without it.
	var mirror state.Mirror = state.NoopMirror{}
	redisClient, err := redisdb.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		slog.Warn("Redis unavailable, zone state mirror disabled", "error", err)
	} else {
		defer redisClient.Close()
		mirror = state.NewRedisMirror(redisClient.GetClient())
	}

	// Same for RabbitMQ: alert events are best-effort.
	var publisher event.IAlertPublisher = event.NoopPublisher{}
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, alert events disabled", "error", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewAlertPublisher(rabbitConn)
	}

	// repositories
	observationRepository := repository.NewObservationRepository(db)
	topologyRepository := repository.NewTopologyRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Topology must be resolvable before the first message arrives.
	resolver := topology.NewResolver(topologyRepository)
	if err := resolver.Refresh(ctx); err != nil {
		slog.Error("Failed to load topology", "error", err)
		os.Exit(1)
	}
	go resolver.StartAutoRefresh(ctx, cfg.TopologyRefreshInterval)

	zoneStore := state.NewStore(mirror)
	if err := zoneStore.Warm(ctx); err != nil {
		slog.Warn("Failed to warm zone state from mirror", "error", err)
	}

	// services
	policy := alerting.NewPolicy(cfg.Thresholds)
	ingestService := services.NewIngestService(observationRepository, resolver, policy, zoneStore, publisher)
	statusService := services.NewStatusService(zoneStore, topologyRepository, observationRepository)

	// live feed
	hub := ws.NewHub()
	go hub.Run(ctx)
	feeder := services.NewZoneFeeder(statusService, hub, cfg.FeedInterval)
	go feeder.Run(ctx)
	go ingestService.StartAlertRecheck(ctx, cfg.RecheckInterval)

	// broker
	listener := broker.NewListener(cfg.MQTTCfg, ingestService)
	if err := listener.Start(ctx); err != nil {
		slog.Error("Failed to start MQTT listener", "error", err)
		os.Exit(1)
	}

	// handlers
	r := gin.Default()
	r.Use(handlers.CORSMiddleware())
	handlers.NewZoneHandler(statusService, publisher).RegisterRoutes(r)
	handlers.NewFeedHandler(hub).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info("safety-service listening", "port", cfg.Port)

	// Graceful shutdown: stop taking messages first, then the loops, then
	// the HTTP server, then the connections (via defers).
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down safety-service...")
	listener.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	slog.Info("safety-service stopped")
}
