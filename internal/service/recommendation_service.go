package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-recommendation-engine/internal/config"
	"movie-recommendation-engine/internal/models"
	"movie-recommendation-engine/internal/repository"
	"movie-recommendation-engine/internal/vector"
)

// InteractionStore is the engine's read view of the interaction event log.
type InteractionStore interface {
	RecentMovieIDs(ctx context.Context, userID int64, window int) ([]int64, error)
	PositiveMovieIDs(ctx context.Context, userID int64, ratingGte float64, window int) ([]int64, error)
	RecentMovieIDsByType(ctx context.Context, userID int64, t models.InteractionType, limit int) ([]int64, error)
	UsersWithPositiveOverlap(ctx context.Context, movieIDs []int64, excludeUserID int64, ratingGte float64, pool int) ([]models.UserOverlap, error)
	PositiveMovieIDsForUsers(ctx context.Context, userIDs []int64, ratingGte float64, pool int) ([]int64, error)
	CountRecentViewsByMovie(ctx context.Context, since time.Time, genreID, typeID int64, limit int) ([]models.MovieViewCount, error)
}

// MovieStore is the engine's read view of the movie catalog.
type MovieStore interface {
	GetByID(ctx context.Context, id int64) (*models.Movie, error)
	FeaturesByIDs(ctx context.Context, ids []int64) ([]models.MovieFeatures, error)
	EmbeddingByID(ctx context.Context, id int64) ([]float64, error)
	FindCandidates(ctx context.Context, f repository.CandidateFilter) ([]models.MovieCard, error)
	TopByViews(ctx context.Context, excludeIDs []int64, genreID, typeID int64, limit int) ([]models.MovieCard, error)
	CardsByIDs(ctx context.Context, ids []int64) ([]models.MovieCard, error)
}

// RecommendationService wires the ranking strategies into per-surface
// fallback chains. All computation is read-only and request-scoped; the
// service holds no mutable state and is safe for concurrent use.
type RecommendationService struct {
	interactions InteractionStore
	movies       MovieStore
	index        vector.Index
	rdb          *redis.Client
	cfg          config.EngineConfig
}

func NewRecommendationService(
	interactions InteractionStore,
	movies MovieStore,
	index vector.Index,
	rdb *redis.Client,
	cfg config.EngineConfig,
) *RecommendationService {
	return &RecommendationService{
		interactions: interactions,
		movies:       movies,
		index:        index,
		rdb:          rdb,
		cfg:          cfg,
	}
}

// storeCtx bounds a store read with the configured timeout.
func (s *RecommendationService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// ForYou is the personalized surface: cold users get content-based
// recommendations seeded by whatever positive history exists, warm users get
// collaborative filtering topped up with content-based and popularity picks.
func (s *RecommendationService) ForYou(ctx context.Context, userID int64, limit int) (*models.RecommendationResponse, error) {
	cacheKey := fmt.Sprintf("recs:foryou:%d:%d", userID, limit)
	if resp := s.cacheGet(ctx, cacheKey); resp != nil {
		return resp, nil
	}

	exclude := s.exclusionSet(ctx, userID)
	positives := s.positiveMovieIDs(ctx, userID)

	var (
		cards []models.MovieCard
		label string
		err   error
	)
	if s.isCold(positives) {
		chain := []strategy{
			{label: StrategyColdStartContent, run: func(ctx context.Context) ([]models.MovieCard, error) {
				return s.contentBased(ctx, positives, exclude, limit)
			}},
			{label: StrategyPopularity, terminal: true, run: func(ctx context.Context) ([]models.MovieCard, error) {
				return s.popularity(ctx, exclude, limit)
			}},
		}
		cards, label, err = runChain(ctx, "for_you", chain)
	} else {
		chain := []fillStrategy{
			{label: StrategyCollaborative, run: func(ctx context.Context, chosen map[int64]struct{}, remaining int) ([]models.MovieCard, error) {
				return s.collaborative(ctx, userID, positives, exclude, remaining)
			}},
			{label: StrategyContentBased, run: func(ctx context.Context, chosen map[int64]struct{}, remaining int) ([]models.MovieCard, error) {
				return s.contentBased(ctx, positives, mergeExclusions(exclude, chosen), remaining)
			}},
			{label: StrategyPopularity, run: func(ctx context.Context, chosen map[int64]struct{}, remaining int) ([]models.MovieCard, error) {
				return s.popularity(ctx, mergeExclusions(exclude, chosen), remaining)
			}},
		}
		cards, label, err = runFillChain(ctx, "for_you", chain, limit)
	}
	if err != nil {
		return nil, err
	}

	resp := &models.RecommendationResponse{Data: cards, Strategy: label}
	s.cacheSet(ctx, cacheKey, resp, 10*time.Minute)
	return resp, nil
}

// RecentlyLiked recommends movies sharing features with the user's latest
// likes. No popularity fallback: with nothing to go on, an empty answer is
// more honest than a generic one.
func (s *RecommendationService) RecentlyLiked(ctx context.Context, userID int64, limit int) (*models.RecommendationResponse, error) {
	return s.recentByType(ctx, userID, models.InteractionLike, s.cfg.RecentLikes, StrategyRecentlyLiked, limit)
}

// RecentlyWatched recommends movies sharing features with the user's latest
// views. Same no-fallback policy as RecentlyLiked.
func (s *RecommendationService) RecentlyWatched(ctx context.Context, userID int64, limit int) (*models.RecommendationResponse, error) {
	return s.recentByType(ctx, userID, models.InteractionView, s.cfg.RecentViews, StrategyRecentlyWatched, limit)
}

func (s *RecommendationService) recentByType(ctx context.Context, userID int64, t models.InteractionType, window int, label string, limit int) (*models.RecommendationResponse, error) {
	exclude := s.exclusionSet(ctx, userID)

	qctx, cancel := s.storeCtx(ctx)
	refs, err := s.interactions.RecentMovieIDsByType(qctx, userID, t, window)
	cancel()
	if err != nil {
		slog.Warn("recent reference fetch degraded", "type", t, "error", err)
		refs = nil
	}
	if len(refs) == 0 {
		return &models.RecommendationResponse{Data: []models.MovieCard{}, Strategy: StrategyNone}, nil
	}

	chain := []strategy{
		{label: label, run: func(ctx context.Context) ([]models.MovieCard, error) {
			return s.contentBased(ctx, refs, exclude, limit)
		}},
	}
	cards, used, err := runChain(ctx, label, chain)
	if err != nil {
		return nil, err
	}
	return &models.RecommendationResponse{Data: cards, Strategy: used}, nil
}

func (s *RecommendationService) cacheGet(ctx context.Context, key string) *models.RecommendationResponse {
	if s.rdb == nil {
		return nil
	}
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var resp models.RecommendationResponse
	if json.Unmarshal([]byte(cached), &resp) != nil {
		return nil
	}
	slog.Debug("recommendations cache hit", "key", key)
	return &resp
}

func (s *RecommendationService) cacheSet(ctx context.Context, key string, resp *models.RecommendationResponse, ttl time.Duration) {
	if s.rdb == nil {
		return
	}
	if data, err := json.Marshal(resp); err == nil {
		s.rdb.Set(ctx, key, data, ttl)
	}
}

func mergeExclusions(exclude []int64, chosen map[int64]struct{}) []int64 {
	if len(chosen) == 0 {
		return exclude
	}
	merged := make([]int64, 0, len(exclude)+len(chosen))
	merged = append(merged, exclude...)
	for id := range chosen {
		merged = append(merged, id)
	}
	return merged
}
