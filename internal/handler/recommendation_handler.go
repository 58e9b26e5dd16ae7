package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-engine/internal/service"
)

const maxLimit = 50

type RecommendationHandler struct {
	svc *service.RecommendationService
}

func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Health godoc
// GET /health
func (h *RecommendationHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-recommendation-engine",
	})
}

// ForYou godoc
// GET /api/v1/users/:id/recommendations
func (h *RecommendationHandler) ForYou(c fiber.Ctx) error {
	userID := fiber.Params[int64](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}
	limit := clampLimit(c, 10)

	resp, err := h.svc.ForYou(c.Context(), userID, limit)
	if err != nil {
		slog.Error("for-you recommendations failed", "user_id", userID, "error", err)
		return serverError(c)
	}
	return c.JSON(resp)
}

// RecentlyLiked godoc
// GET /api/v1/users/:id/recommendations/recently-liked
func (h *RecommendationHandler) RecentlyLiked(c fiber.Ctx) error {
	userID := fiber.Params[int64](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}
	limit := clampLimit(c, 8)

	resp, err := h.svc.RecentlyLiked(c.Context(), userID, limit)
	if err != nil {
		slog.Error("recently-liked recommendations failed", "user_id", userID, "error", err)
		return serverError(c)
	}
	return c.JSON(resp)
}

// RecentlyWatched godoc
// GET /api/v1/users/:id/recommendations/recently-watched
func (h *RecommendationHandler) RecentlyWatched(c fiber.Ctx) error {
	userID := fiber.Params[int64](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}
	limit := clampLimit(c, 8)

	resp, err := h.svc.RecentlyWatched(c.Context(), userID, limit)
	if err != nil {
		slog.Error("recently-watched recommendations failed", "user_id", userID, "error", err)
		return serverError(c)
	}
	return c.JSON(resp)
}

// Similar godoc
// GET /api/v1/movies/:id/similar
func (h *RecommendationHandler) Similar(c fiber.Ctx) error {
	movieID := fiber.Params[int64](c, "id")
	if movieID <= 0 {
		return badRequest(c, "invalid movie ID")
	}
	limit := clampLimit(c, 10)

	resp, err := h.svc.SimilarToMovie(c.Context(), movieID, limit)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "movie not found"})
		}
		slog.Error("similar recommendations failed", "movie_id", movieID, "error", err)
		return serverError(c)
	}
	return c.JSON(resp)
}

// TrendingGlobal godoc
// GET /api/v1/trending
func (h *RecommendationHandler) TrendingGlobal(c fiber.Ctx) error {
	limit := clampLimit(c, 12)

	resp, err := h.svc.TrendingGlobal(c.Context(), limit)
	if err != nil {
		slog.Error("global trending failed", "error", err)
		return serverError(c)
	}
	return c.JSON(resp)
}

// TrendingByGenre godoc
// GET /api/v1/trending/genres/:id
func (h *RecommendationHandler) TrendingByGenre(c fiber.Ctx) error {
	genreID := fiber.Params[int64](c, "id")
	if genreID <= 0 {
		return badRequest(c, "invalid genre ID")
	}
	limit := clampLimit(c, 12)

	resp, err := h.svc.TrendingByGenre(c.Context(), genreID, limit)
	if err != nil {
		slog.Error("genre trending failed", "genre_id", genreID, "error", err)
		return serverError(c)
	}
	return c.JSON(resp)
}

// TrendingByType godoc
// GET /api/v1/trending/types/:id
func (h *RecommendationHandler) TrendingByType(c fiber.Ctx) error {
	typeID := fiber.Params[int64](c, "id")
	if typeID <= 0 {
		return badRequest(c, "invalid type ID")
	}
	limit := clampLimit(c, 12)

	resp, err := h.svc.TrendingByType(c.Context(), typeID, limit)
	if err != nil {
		slog.Error("type trending failed", "type_id", typeID, "error", err)
		return serverError(c)
	}
	return c.JSON(resp)
}

func clampLimit(c fiber.Ctx, def int) int {
	limit := fiber.Query(c, "limit", def)
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func serverError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate recommendations"})
}
