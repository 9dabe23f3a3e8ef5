package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/adapters/search"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/api/handlers"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/api/routes"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/application/services"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/clients/bgg"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/clients/openai"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/observability"
	"github.com/meeplechat/boardgame-rules-assistant/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// A missing OpenAI credential is a fatal configuration error: the
	// service cannot answer anything without its model.
	answerProvider, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize OpenAI client")
	}
	log.Info().Str("model", cfg.OpenAI.Model).Msg("OpenAI client initialized")

	// Initialize the metadata client and search gateway
	metadataClient := bgg.NewClient(&cfg.BGG)

	patterns := search.NewPatternGenerator()
	if cfg.Research.TranslationsPath != "" {
		loaded, err := search.NewPatternGeneratorFromFile(cfg.Research.TranslationsPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Research.TranslationsPath).Msg("failed to load translation dictionary, using built-in")
		} else {
			patterns = loaded
			log.Info().Str("path", cfg.Research.TranslationsPath).Msg("translation dictionary loaded")
		}
	}

	gateway := search.NewGateway(metadataClient, patterns,
		search.WithCallTimeout(cfg.BGG.SearchTimeout),
		search.WithMetrics(metrics),
	)

	// Initialize research services
	analyzer := services.NewComplexityAnalyzer(cfg.Research.ScoreThreshold)
	limiter := services.NewResearchLimiter(cfg.Research.MaxPerWindow, cfg.Research.Window)
	cache := services.NewResearchCache(cfg.Research.CacheSize, cfg.Research.CacheTTL)

	orchestrator := services.NewResearchOrchestrator(
		analyzer,
		limiter,
		cache,
		gateway,
		answerProvider,
		services.WithOrchestratorMetrics(metrics),
		services.WithCacheTTL(cfg.Research.CacheTTL),
		services.WithMaxSources(cfg.Research.MaxSources),
	)

	// Initialize handlers
	questionHandler := handlers.NewQuestionHandler(orchestrator)
	streamHandler := handlers.NewStreamHandler(orchestrator)
	healthHandler := handlers.NewHealthHandler(cache)

	// Set up router
	router := routes.NewRouter(questionHandler, streamHandler, healthHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
}
