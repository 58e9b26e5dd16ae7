package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"movie-recommendation-engine/internal/config"
	"movie-recommendation-engine/internal/database"
	"movie-recommendation-engine/internal/handler"
	"movie-recommendation-engine/internal/repository"
	"movie-recommendation-engine/internal/service"
	"movie-recommendation-engine/internal/vector"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Connect to the vector index
	index, err := vector.NewQdrantIndex(cfg.Qdrant)
	if err != nil {
		slog.Error("failed to connect to qdrant", "error", err)
		os.Exit(1)
	}
	defer index.Close()

	// Initialize layers
	interactionRepo := repository.NewInteractionRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	svc := service.NewRecommendationService(interactionRepo, movieRepo, index, rdb, cfg.Engine)
	recHandler := handler.NewRecommendationHandler(svc)
	movieHandler := handler.NewMovieHandler(movieRepo, interactionRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "movie-recommendation-engine",
		ServerHeader: "movie-recommendation-engine",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Routes
	app.Get("/health", recHandler.Health)

	api := app.Group("/api/v1")
	api.Get("/users/:id/recommendations", recHandler.ForYou)
	api.Get("/users/:id/recommendations/recently-liked", recHandler.RecentlyLiked)
	api.Get("/users/:id/recommendations/recently-watched", recHandler.RecentlyWatched)
	api.Post("/users/:id/interactions", movieHandler.CreateInteraction)
	api.Get("/movies/:id", movieHandler.GetMovie)
	api.Get("/movies/:id/similar", recHandler.Similar)
	api.Get("/trending", recHandler.TrendingGlobal)
	api.Get("/trending/genres/:id", recHandler.TrendingByGenre)
	api.Get("/trending/types/:id", recHandler.TrendingByType)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("movie-recommendation-engine starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down movie-recommendation-engine")
	_ = app.Shutdown()
}
