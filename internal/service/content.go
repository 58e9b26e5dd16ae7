package service

import (
	"context"
	"fmt"
	"sort"

	"movie-recommendation-engine/internal/models"
	"movie-recommendation-engine/internal/repository"
)

// contentBased ranks unseen movies by shared genre/country membership with
// the reference set. The candidate pool is a bounded, quality-biased slice
// of the catalog (rating then view count descending), so ties in feature
// overlap keep that bias.
func (s *RecommendationService) contentBased(ctx context.Context, refMovieIDs []int64, exclude []int64, limit int) ([]models.MovieCard, error) {
	prefs, err := s.aggregateFeatures(ctx, refMovieIDs)
	if err != nil {
		return nil, err
	}
	if prefs.Empty() {
		// No signal: every candidate would score zero. Let the chain fall
		// through to popularity instead of returning an arbitrary ranking.
		return nil, nil
	}

	qctx, cancel := s.storeCtx(ctx)
	defer cancel()

	pool, err := s.movies.FindCandidates(qctx, repository.CandidateFilter{
		ExcludeIDs:    exclude,
		AnyGenreIDs:   prefs.GenreList(),
		AnyCountryIDs: prefs.CountryList(),
		Limit:         limit * s.cfg.CandidateMultiplier,
	})
	if err != nil {
		return nil, fmt.Errorf("content candidate pool: %w", err)
	}

	for i := range pool {
		pool[i].Score = contentScore(pool[i], prefs)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}
