package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-engine/internal/models"
	"movie-recommendation-engine/internal/repository"
)

type MovieHandler struct {
	movies       *repository.MovieRepository
	interactions *repository.InteractionRepository
}

func NewMovieHandler(movies *repository.MovieRepository, interactions *repository.InteractionRepository) *MovieHandler {
	return &MovieHandler{movies: movies, interactions: interactions}
}

// GetMovie godoc
// GET /api/v1/movies/:id
func (h *MovieHandler) GetMovie(c fiber.Ctx) error {
	movieID := fiber.Params[int64](c, "id")
	if movieID <= 0 {
		return badRequest(c, "invalid movie ID")
	}

	detail, err := h.movies.GetDetail(c.Context(), movieID)
	if err != nil {
		slog.Error("failed to load movie", "movie_id", movieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load movie"})
	}
	if detail == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "movie not found"})
	}
	return c.JSON(detail)
}

// CreateInteraction godoc
// POST /api/v1/users/:id/interactions
func (h *MovieHandler) CreateInteraction(c fiber.Ctx) error {
	userID := fiber.Params[int64](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}

	var req models.InteractionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.MovieID <= 0 {
		return badRequest(c, "invalid movie ID")
	}
	if !req.Type.Valid() {
		return badRequest(c, "invalid interaction type")
	}

	result, err := h.interactions.Apply(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInteraction) {
			return badRequest(c, err.Error())
		}
		slog.Error("failed to apply interaction", "user_id", userID, "movie_id", req.MovieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record interaction"})
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
