package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/manuel-vermillac/cest-trop-dur/internal/config"
	"github.com/manuel-vermillac/cest-trop-dur/internal/crypto"
	"github.com/manuel-vermillac/cest-trop-dur/internal/game"
	"github.com/manuel-vermillac/cest-trop-dur/internal/httpapi"
	"github.com/manuel-vermillac/cest-trop-dur/internal/logger"
	"github.com/manuel-vermillac/cest-trop-dur/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Debug)

	catalog, err := game.LoadCatalog(cfg.CardsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.CardsFile).Msg("failed to load card catalog")
	}
	registry := game.NewRegistry(cfg.MaxPlayers, cfg.RoomMaxAge)
	hub := ws.NewHub()
	dispatcher := ws.NewDispatcher(registry, catalog, hub)
	jwtManager := crypto.NewJWTManager(cfg.SecretKey, cfg.CookieMaxAge)
	handler := httpapi.NewHandler(registry, catalog, jwtManager, dispatcher, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	registry.StartReaper(ctx, cfg.CleanupInterval)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(httpapi.Recovery(), httpapi.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	api := router.Group("/", gzip.Gzip(gzip.DefaultCompression))
	api.Use(httpapi.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	api.GET("/health", handler.Health)
	api.POST("/rooms", handler.CreateRoom)
	api.POST("/rooms/:code/join", handler.JoinRoom)
	api.POST("/rooms/:code/start", httpapi.RequireIdentity(jwtManager), handler.StartRoom)
	api.GET("/rooms/:code", handler.RoomInfo)

	// The websocket route skips gzip: the stream is upgraded, not encoded.
	router.GET("/ws", httpapi.RequireIdentity(jwtManager), ws.ServeWS(dispatcher, cfg.AllowedOrigins))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// corsConfig allows the configured origins with credentials so the
// identity cookie travels. With no origins configured everything is
// allowed, but then without credentials (the combination is forbidden),
// which keeps local same-origin development friction-free.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
