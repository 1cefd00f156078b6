package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/internal/config"
	"github.com/iamasit07/connect-four/internal/logging"
	"github.com/iamasit07/connect-four/internal/repository/memory"
	"github.com/iamasit07/connect-four/internal/repository/postgres"
	"github.com/iamasit07/connect-four/internal/repository/redis"
	"github.com/iamasit07/connect-four/internal/service/cleanup"
	"github.com/iamasit07/connect-four/internal/service/history"
	"github.com/iamasit07/connect-four/internal/service/table"
	transportHttp "github.com/iamasit07/connect-four/internal/transport/http"
	"github.com/iamasit07/connect-four/internal/transport/websocket"
	"github.com/iamasit07/connect-four/pkg/auth"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logFile, err := logging.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logging")
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Archive: Postgres when configured, process memory otherwise
	var archive history.Repository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		log.Info().Msg("Running database migrations...")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		log.Info().Msg("Database migration completed successfully")
		archive = postgres.NewGameRepo(db)
	} else {
		log.Warn().Msg("DATABASE_URL not set, finished rounds are kept in memory only")
		archive = memory.NewGameRepo()
	}

	// 2. Optional Redis cache in front of the archive
	var cache history.CacheRepository
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis, continuing without history cache")
		} else {
			redisCache := redis.NewRedisCache(client)
			defer redisCache.Close()
			cache = redisCache
		}
	}

	// 3. Services
	historyService := history.NewService(archive, cache, cfg.HistoryCacheTTL)
	hub := websocket.NewHub()
	tableManager := table.NewManager(historyService, hub)
	tokens := auth.NewTokenManager(cfg.TableSecret, cfg.TableTokenTTL)

	// 4. Background workers
	cleanupWorker := cleanup.NewWorker(tableManager, cfg.CleanupInterval, cfg.TableIdleTimeout)
	go cleanupWorker.Start(ctx)

	// 5. Router
	gin.SetMode(gin.ReleaseMode)
	wsHandler := websocket.NewHandler(hub, tableManager, tokens, cfg.Origins())
	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		Tables:         tableManager,
		History:        historyService,
		Tokens:         tokens,
		AllowedOrigins: cfg.Origins(),
		WebSocket:      wsHandler.HandleWebSocket,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.ProxyHeaders(handlers.CompressHandler(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// let in-flight archive writes land before the database closes
	tableManager.Wait()
	log.Info().Msg("Server exited gracefully")
}
