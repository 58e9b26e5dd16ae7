package service

import (
	"context"
	"log/slog"
)

// exclusionSet returns the movie ids the user already engaged with, bounded
// by the configured history window. The set guards every strategy against
// re-recommending seen content. An unknown user yields an empty set; a store
// failure degrades to an empty set rather than failing the request, since a
// duplicate recommendation is a lesser harm than no recommendation.
func (s *RecommendationService) exclusionSet(ctx context.Context, userID int64) []int64 {
	qctx, cancel := s.storeCtx(ctx)
	defer cancel()

	ids, err := s.interactions.RecentMovieIDs(qctx, userID, s.cfg.HistoryWindow)
	if err != nil {
		slog.Warn("exclusion set degraded to empty", "user_id", userID, "error", err)
		return nil
	}
	return ids
}

// toSet builds a membership set from an id slice.
func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
