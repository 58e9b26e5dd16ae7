package service

import (
	"context"
	"log/slog"
)

// positiveMovieIDs returns the movies the user positively engaged with
// (LIKE, or RATE at or above the positive threshold) inside the recent
// positive window. A store failure degrades to an empty history: the user is
// then treated as cold, which is the safe branch.
func (s *RecommendationService) positiveMovieIDs(ctx context.Context, userID int64) []int64 {
	qctx, cancel := s.storeCtx(ctx)
	defer cancel()

	ids, err := s.interactions.PositiveMovieIDs(qctx, userID, s.cfg.PositiveRatingThreshold, s.cfg.PositiveWindow)
	if err != nil {
		slog.Warn("positive history degraded to empty", "user_id", userID, "error", err)
		return nil
	}
	return ids
}

// isCold decides whether the user has too little positive signal for
// collaborative filtering. Cold users skip the collaborative tier entirely.
func (s *RecommendationService) isCold(positives []int64) bool {
	return len(positives) < s.cfg.MinPositiveInteractions
}
