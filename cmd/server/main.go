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

	"webchat-backend/internal/config"
	"webchat-backend/internal/database"
	"webchat-backend/internal/events"
	"webchat-backend/internal/handlers"
	"webchat-backend/internal/logging"
	"webchat-backend/internal/middleware"
	"webchat-backend/internal/repository"
	"webchat-backend/internal/router"
	"webchat-backend/internal/services"
	"webchat-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	log.Info().Msg("Starting webchat backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Conversation Store ────
	repo := repository.NewConversationRepo(
		cfg.ConversationsDir,
		repository.WithSkipMalformed(cfg.ListSkipMalformed),
		repository.WithLogger(log.With().Str("component", "repository").Logger()),
	)
	log.Info().Str("dir", cfg.ConversationsDir).Bool("skip_malformed", cfg.ListSkipMalformed).Msg("Conversation store ready")

	// ──── Step 3: WebSocket Hub and Event Fan-out ────
	wsHub := websocket.NewHub(log.With().Str("component", "ws").Logger())
	defer wsHub.Close()

	var publisher events.Publisher = events.NewLocalBus(wsHub)
	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		redisClients, err := database.Connect(connectCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClients.Close()

		bus := events.NewRedisBus(redisClients.Publisher, redisClients.Subscriber, cfg.EventsChannel, log.With().Str("component", "events").Logger())
		go bus.Run(ctx, wsHub)
		publisher = bus
		log.Info().Str("channel", cfg.EventsChannel).Msg("Redis event fan-out enabled")
	}

	// ──── Step 4: Services and Handlers ────
	conversationService := services.NewConversationService(repo, publisher, log.With().Str("component", "service").Logger())
	conversationHandler := handlers.NewConversationHandler(conversationService)

	var saveLimiter *middleware.RateLimiter
	if cfg.SaveRateLimit > 0 {
		saveLimiter = middleware.NewRateLimiter(cfg.SaveRateLimit, time.Minute)
		defer saveLimiter.Stop()
	}

	// ──── Step 5: Start HTTP Server ────
	r := router.New(conversationHandler, wsHub, router.Options{
		Logger:      log,
		StaticDir:   cfg.StaticDir,
		FrontendURL: cfg.FrontendURL,
		SaveLimiter: saveLimiter,
		TrustProxy:  cfg.TrustProxy,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
