package service

import (
	"context"
	"errors"
	"fmt"

	"movie-recommendation-engine/internal/models"
)

var ErrMovieNotFound = errors.New("movie not found")

const vectorPoolMultiplier = 10

// SimilarToMovie is the three-tier similar-to-X chain: vector similarity,
// then feature overlap with the reference movie, then an honest empty
// answer. There is no popularity tier here; "similar to X" with zero
// evidence is no recommendation at all.
func (s *RecommendationService) SimilarToMovie(ctx context.Context, movieID int64, limit int) (*models.RecommendationResponse, error) {
	qctx, cancel := s.storeCtx(ctx)
	movie, err := s.movies.GetByID(qctx, movieID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load reference movie: %w", err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	chain := []strategy{
		{label: StrategyVectorSimilarity, run: func(ctx context.Context) ([]models.MovieCard, error) {
			return s.vectorSimilar(ctx, movieID, limit)
		}},
		{label: StrategyFeatureMatch, run: func(ctx context.Context) ([]models.MovieCard, error) {
			return s.contentBased(ctx, []int64{movieID}, []int64{movieID}, limit)
		}},
	}
	cards, label, err := runChain(ctx, "similar", chain)
	if err != nil {
		return nil, err
	}
	return &models.RecommendationResponse{Data: cards, Strategy: label}, nil
}

// vectorSimilar queries the external nearest-neighbor index. A missing or
// empty embedding means the movie was never indexed: return zero candidates
// without touching the index so the chain moves to feature matching.
func (s *RecommendationService) vectorSimilar(ctx context.Context, movieID int64, limit int) ([]models.MovieCard, error) {
	qctx, cancel := s.storeCtx(ctx)
	embedding, err := s.movies.EmbeddingByID(qctx, movieID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load embedding: %w", err)
	}
	if len(embedding) == 0 {
		return nil, nil
	}

	vctx, cancel := context.WithTimeout(ctx, s.cfg.VectorTimeout)
	hits, err := s.index.Search(vctx, embedding, movieID, limit*vectorPoolMultiplier, limit)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(hits))
	scores := make(map[int64]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.MovieID
		scores[h.MovieID] = h.Score
	}

	qctx, cancel = s.storeCtx(ctx)
	defer cancel()
	cards, err := s.movies.CardsByIDs(qctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate vector results: %w", err)
	}
	for i := range cards {
		cards[i].Score = scores[cards[i].MovieID]
	}
	return cards, nil
}
