package service

import (
	"context"
	"fmt"
	"time"

	"movie-recommendation-engine/internal/models"
)

// TrendingGlobal ranks the catalog by view events in the short trailing
// window, capped per country so one market cannot flood the list.
func (s *RecommendationService) TrendingGlobal(ctx context.Context, limit int) (*models.RecommendationResponse, error) {
	return s.trending(ctx, trendingParams{
		surface:    "trending",
		cacheKey:   fmt.Sprintf("recs:trending:global:%d", limit),
		windowDays: s.cfg.TrendingWindowDays,
		dim:        dimCountry,
		maxRepeat:  s.cfg.CountryCap,
		limit:      limit,
	})
}

// TrendingByGenre ranks one genre's movies over the longer window; the
// country cap still applies.
func (s *RecommendationService) TrendingByGenre(ctx context.Context, genreID int64, limit int) (*models.RecommendationResponse, error) {
	return s.trending(ctx, trendingParams{
		surface:    "trending_genre",
		cacheKey:   fmt.Sprintf("recs:trending:genre:%d:%d", genreID, limit),
		windowDays: s.cfg.GenreTrendingWindowDays,
		genreID:    genreID,
		dim:        dimCountry,
		maxRepeat:  s.cfg.CountryCap,
		limit:      limit,
	})
}

// TrendingByType ranks one movie type's entries; here the cap dimension is
// genre, since within a single type the genres are what repeat.
func (s *RecommendationService) TrendingByType(ctx context.Context, typeID int64, limit int) (*models.RecommendationResponse, error) {
	return s.trending(ctx, trendingParams{
		surface:    "trending_type",
		cacheKey:   fmt.Sprintf("recs:trending:type:%d:%d", typeID, limit),
		windowDays: s.cfg.GenreTrendingWindowDays,
		typeID:     typeID,
		dim:        dimGenre,
		maxRepeat:  s.cfg.GenreCap,
		limit:      limit,
	})
}

type trendingParams struct {
	surface    string
	cacheKey   string
	windowDays int
	genreID    int64
	typeID     int64
	dim        categoryDim
	maxRepeat  int
	limit      int
}

// trending runs the two-tier trending chain (recent window, then all-time
// views) and passes the winning candidate pool through the diversity
// selector.
func (s *RecommendationService) trending(ctx context.Context, p trendingParams) (*models.RecommendationResponse, error) {
	if resp := s.cacheGet(ctx, p.cacheKey); resp != nil {
		return resp, nil
	}

	poolSize := p.limit * s.cfg.TrendingMultiplier
	chain := []strategy{
		{label: StrategyTrending, run: func(ctx context.Context) ([]models.MovieCard, error) {
			return s.recentViewPool(ctx, p, poolSize)
		}},
		{label: StrategyTrendingAllTime, terminal: true, run: func(ctx context.Context) ([]models.MovieCard, error) {
			qctx, cancel := s.storeCtx(ctx)
			defer cancel()
			return s.movies.TopByViews(qctx, nil, p.genreID, p.typeID, poolSize)
		}},
	}
	pool, label, err := runChain(ctx, p.surface, chain)
	if err != nil {
		return nil, err
	}

	resp := &models.RecommendationResponse{
		Data:     diversitySelect(pool, p.dim, p.maxRepeat, p.limit),
		Strategy: label,
	}
	s.cacheSet(ctx, p.cacheKey, resp, 5*time.Minute)
	return resp, nil
}

// recentViewPool aggregates VIEW events inside the trailing window and
// hydrates the result in popularity order, attaching the window view count
// as the score.
func (s *RecommendationService) recentViewPool(ctx context.Context, p trendingParams, poolSize int) ([]models.MovieCard, error) {
	since := time.Now().AddDate(0, 0, -p.windowDays)

	qctx, cancel := s.storeCtx(ctx)
	counts, err := s.interactions.CountRecentViewsByMovie(qctx, since, p.genreID, p.typeID, poolSize)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("aggregate recent views: %w", err)
	}
	if len(counts) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(counts))
	byID := make(map[int64]int64, len(counts))
	for i, c := range counts {
		ids[i] = c.MovieID
		byID[c.MovieID] = c.Count
	}

	qctx, cancel = s.storeCtx(ctx)
	defer cancel()
	cards, err := s.movies.CardsByIDs(qctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate trending pool: %w", err)
	}
	for i := range cards {
		cards[i].Score = float64(byID[cards[i].MovieID])
	}
	return cards, nil
}
