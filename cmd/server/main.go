package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexwar/internal/auth"
	"github.com/freeeve/hexwar/internal/config"
	"github.com/freeeve/hexwar/internal/handler"
	"github.com/freeeve/hexwar/internal/logger"
	"github.com/freeeve/hexwar/internal/middleware"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/internal/repository/memory"
	"github.com/freeeve/hexwar/internal/repository/postgres"
	redisrepo "github.com/freeeve/hexwar/internal/repository/redis"
	"github.com/freeeve/hexwar/internal/repository/sqlite"
	"github.com/freeeve/hexwar/internal/service"
)

// stores bundles the configured repositories and whatever must be closed
// with them.
type stores struct {
	games     repository.GameRepository
	scenarios repository.ScenarioRepository
	closer    io.Closer
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{games: postgres.NewGameRepo(db), scenarios: postgres.NewScenarioRepo(db), closer: db}, nil
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{games: db.Games(), scenarios: db.Scenarios(), closer: db}, nil
	default:
		return &stores{games: memory.NewGameRepo(), scenarios: memory.NewScenarioRepo()}, nil
	}
}

func main() {
	logger.Init()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().Str("storage", cfg.Storage).Bool("cache", cfg.RedisURL != "").Bool("devMode", cfg.DevMode).Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("Storage setup failed")
	}
	if st.closer != nil {
		defer st.closer.Close()
	}

	var cache repository.GameCache = repository.NoopCache{}
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		cache = redisClient
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	wsHub := handler.NewHub()

	scenarioSvc := service.NewScenarioService(st.scenarios)
	gameSvc := service.NewGameService(st.games, st.scenarios, cache, wsHub)
	eventSvc, err := service.NewEventService(st.games, cache, wsHub)
	if err != nil {
		log.Fatal().Err(err).Msg("Event service setup failed")
	}
	defer eventSvc.Close()

	routes := handler.Routes{
		JWT:       jwtMgr,
		Auth:      handler.NewAuthHandler(jwtMgr, cfg.DevMode),
		Scenarios: handler.NewScenarioHandler(scenarioSvc),
		Games:     handler.NewGameHandler(gameSvc),
		Events:    handler.NewEventHandler(eventSvc),
		WS:        handler.NewWSHandler(wsHub, jwtMgr, cfg.CORSOrigin),
	}
	root := middleware.Chain(routes.Mux(), middleware.Logger, middleware.Recover, middleware.CORS(cfg.CORSOrigin), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
