package service

import (
	"context"
	"sort"
	"time"

	"movie-recommendation-engine/internal/config"
	"movie-recommendation-engine/internal/models"
	"movie-recommendation-engine/internal/repository"
	"movie-recommendation-engine/internal/vector"
)

// stubInteractions is an in-memory InteractionStore with per-method error
// injection and call counters for spy assertions.
type stubInteractions struct {
	recent            map[int64][]int64
	positives         map[int64][]int64
	byType            map[int64]map[models.InteractionType][]int64
	overlaps          []models.UserOverlap
	neighborPositives []int64
	viewCounts        []models.MovieViewCount

	errRecent      error
	errOverlap     error
	errViewCounts  error
	overlapCalls   int
	neighborCalls  int
	viewCountCalls int
}

func (s *stubInteractions) RecentMovieIDs(_ context.Context, userID int64, _ int) ([]int64, error) {
	if s.errRecent != nil {
		return nil, s.errRecent
	}
	return s.recent[userID], nil
}

func (s *stubInteractions) PositiveMovieIDs(_ context.Context, userID int64, _ float64, _ int) ([]int64, error) {
	return s.positives[userID], nil
}

func (s *stubInteractions) RecentMovieIDsByType(_ context.Context, userID int64, t models.InteractionType, limit int) ([]int64, error) {
	ids := s.byType[userID][t]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *stubInteractions) UsersWithPositiveOverlap(_ context.Context, _ []int64, _ int64, _ float64, _ int) ([]models.UserOverlap, error) {
	s.overlapCalls++
	if s.errOverlap != nil {
		return nil, s.errOverlap
	}
	return s.overlaps, nil
}

func (s *stubInteractions) PositiveMovieIDsForUsers(_ context.Context, _ []int64, _ float64, _ int) ([]int64, error) {
	s.neighborCalls++
	return s.neighborPositives, nil
}

func (s *stubInteractions) CountRecentViewsByMovie(_ context.Context, _ time.Time, _, _ int64, limit int) ([]models.MovieViewCount, error) {
	s.viewCountCalls++
	if s.errViewCounts != nil {
		return nil, s.errViewCounts
	}
	counts := s.viewCounts
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// stubMovies is an in-memory MovieStore that reimplements the repository's
// filter and ordering semantics over a fixed movie list, so strategy tests
// exercise realistic candidate pools.
type stubMovies struct {
	movies     []models.Movie
	embeddings map[int64][]float64
}

func (s *stubMovies) byID(id int64) *models.Movie {
	for i := range s.movies {
		if s.movies[i].ID == id {
			return &s.movies[i]
		}
	}
	return nil
}

func (s *stubMovies) GetByID(_ context.Context, id int64) (*models.Movie, error) {
	return s.byID(id), nil
}

func (s *stubMovies) FeaturesByIDs(_ context.Context, ids []int64) ([]models.MovieFeatures, error) {
	var result []models.MovieFeatures
	for _, id := range ids {
		if m := s.byID(id); m != nil {
			result = append(result, models.MovieFeatures{
				ID: m.ID, GenreIDs: m.GenreIDs, CountryIDs: m.CountryIDs,
			})
		}
	}
	return result, nil
}

func (s *stubMovies) EmbeddingByID(_ context.Context, id int64) ([]float64, error) {
	return s.embeddings[id], nil
}

func (s *stubMovies) FindCandidates(_ context.Context, f repository.CandidateFilter) ([]models.MovieCard, error) {
	exclude := toSet(f.ExcludeIDs)
	var pool []models.Movie
	for _, m := range s.movies {
		if _, skip := exclude[m.ID]; skip {
			continue
		}
		if f.TypeID != 0 && m.TypeID != f.TypeID {
			continue
		}
		if !overlaps(m.GenreIDs, f.AnyGenreIDs) && !overlaps(m.CountryIDs, f.AnyCountryIDs) {
			continue
		}
		pool = append(pool, m)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Rating != pool[j].Rating {
			return pool[i].Rating > pool[j].Rating
		}
		if pool[i].ViewCount != pool[j].ViewCount {
			return pool[i].ViewCount > pool[j].ViewCount
		}
		return pool[i].ID < pool[j].ID
	})
	if len(pool) > f.Limit {
		pool = pool[:f.Limit]
	}
	return cardsOf(pool), nil
}

func (s *stubMovies) TopByViews(_ context.Context, excludeIDs []int64, genreID, typeID int64, limit int) ([]models.MovieCard, error) {
	exclude := toSet(excludeIDs)
	var pool []models.Movie
	for _, m := range s.movies {
		if _, skip := exclude[m.ID]; skip {
			continue
		}
		if genreID != 0 && !overlaps(m.GenreIDs, []int64{genreID}) {
			continue
		}
		if typeID != 0 && m.TypeID != typeID {
			continue
		}
		pool = append(pool, m)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].ViewCount != pool[j].ViewCount {
			return pool[i].ViewCount > pool[j].ViewCount
		}
		return pool[i].ID < pool[j].ID
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return cardsOf(pool), nil
}

func (s *stubMovies) CardsByIDs(_ context.Context, ids []int64) ([]models.MovieCard, error) {
	var pool []models.Movie
	for _, id := range ids {
		if m := s.byID(id); m != nil {
			pool = append(pool, *m)
		}
	}
	return cardsOf(pool), nil
}

func cardsOf(pool []models.Movie) []models.MovieCard {
	cards := make([]models.MovieCard, 0, len(pool))
	for _, m := range pool {
		cards = append(cards, models.MovieCard{
			MovieID:    m.ID,
			Name:       m.Name,
			Slug:       m.Slug,
			Year:       m.Year,
			GenreIDs:   m.GenreIDs,
			CountryIDs: m.CountryIDs,
		})
	}
	return cards
}

func overlaps(a, b []int64) bool {
	set := toSet(a)
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// stubIndex is a spy vector.Index.
type stubIndex struct {
	hits  []vector.Hit
	err   error
	calls int
}

func (s *stubIndex) Search(_ context.Context, _ []float64, excludeID int64, _, limit int) ([]vector.Hit, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var hits []vector.Hit
	for _, h := range s.hits {
		if h.MovieID == excludeID {
			continue
		}
		hits = append(hits, h)
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		HistoryWindow:           300,
		PositiveWindow:          100,
		PositiveRatingThreshold: 4.0,
		MinPositiveInteractions: 5,
		MinOverlap:              3,
		MaxSimilarUsers:         50,
		NeighborPool:            1000,
		CandidateMultiplier:     5,
		TrendingMultiplier:      3,
		TrendingWindowDays:      3,
		GenreTrendingWindowDays: 7,
		CountryCap:              3,
		GenreCap:                2,
		RecentLikes:             15,
		RecentViews:             25,
		StoreTimeout:            time.Second,
		VectorTimeout:           time.Second,
	}
}

func newTestService(interactions *stubInteractions, movies *stubMovies, index vector.Index) *RecommendationService {
	if interactions.recent == nil {
		interactions.recent = map[int64][]int64{}
	}
	if interactions.positives == nil {
		interactions.positives = map[int64][]int64{}
	}
	if interactions.byType == nil {
		interactions.byType = map[int64]map[models.InteractionType][]int64{}
	}
	if movies.embeddings == nil {
		movies.embeddings = map[int64][]float64{}
	}
	if index == nil {
		index = &stubIndex{}
	}
	return NewRecommendationService(interactions, movies, index, nil, testEngineConfig())
}
