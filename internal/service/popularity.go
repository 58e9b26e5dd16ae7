package service

import (
	"context"
	"fmt"

	"movie-recommendation-engine/internal/models"
)

// popularity is the last-resort strategy: unseen movies by raw all-time view
// count. No scoring beyond the sort key.
func (s *RecommendationService) popularity(ctx context.Context, exclude []int64, limit int) ([]models.MovieCard, error) {
	qctx, cancel := s.storeCtx(ctx)
	defer cancel()

	cards, err := s.movies.TopByViews(qctx, exclude, 0, 0, limit)
	if err != nil {
		return nil, fmt.Errorf("popularity fallback: %w", err)
	}
	return cards, nil
}
