package service

import (
	"context"
	"errors"
	"log/slog"

	"movie-recommendation-engine/internal/models"
)

// Strategy labels are part of the API contract: clients read them to adapt
// their messaging, so the vocabulary is fixed.
const (
	StrategyCollaborative    = "collaborative"
	StrategyContentBased     = "content_based"
	StrategyColdStartContent = "cold_start_content"
	StrategyPopularity       = "popularity"
	StrategyVectorSimilarity = "vector_similarity"
	StrategyFeatureMatch     = "feature_match"
	StrategyRecentlyLiked    = "recently_liked"
	StrategyRecentlyWatched  = "recently_watched"
	StrategyTrending         = "trending"
	StrategyTrendingAllTime  = "trending_fallback_no_interactions"
	StrategyNone             = "none"
)

var errAllTiersFailed = errors.New("all strategy tiers failed")

// strategy is one tier of a fallback chain. A terminal tier ends the chain
// even with zero results (popularity is the guaranteed last resort; an empty
// catalog is an honest empty answer, not a failure).
type strategy struct {
	label    string
	terminal bool
	run      func(ctx context.Context) ([]models.MovieCard, error)
}

// runChain evaluates tiers in order and short-circuits at the first one
// producing results. A tier error is a degraded-signal condition, never
// surfaced: it is logged and the chain moves on. Only when every tier,
// terminal included, errors does the caller get an error back.
func runChain(ctx context.Context, surface string, chain []strategy) ([]models.MovieCard, string, error) {
	failed := 0
	for _, tier := range chain {
		cards, err := tier.run(ctx)
		if err != nil {
			failed++
			slog.Warn("strategy degraded", "surface", surface, "strategy", tier.label, "error", err)
			continue
		}
		if len(cards) > 0 || tier.terminal {
			return cards, tier.label, nil
		}
	}
	if failed == len(chain) && failed > 0 {
		return nil, "", errAllTiersFailed
	}
	return []models.MovieCard{}, StrategyNone, nil
}

// fillStrategy is a tier of a concatenating chain: it sees the ids already
// chosen by earlier tiers and contributes at most the remainder.
type fillStrategy struct {
	label string
	run   func(ctx context.Context, chosen map[int64]struct{}, remaining int) ([]models.MovieCard, error)
}

// runFillChain concatenates tiers in order until limit is reached. The
// returned label names the first tier that contributed anything. Used by the
// personalized surface, where collaborative results are topped up with
// content-based and popularity picks rather than discarded.
func runFillChain(ctx context.Context, surface string, chain []fillStrategy, limit int) ([]models.MovieCard, string, error) {
	results := make([]models.MovieCard, 0, limit)
	chosen := make(map[int64]struct{}, limit)
	label := StrategyNone
	failed := 0

	for _, tier := range chain {
		if len(results) >= limit {
			break
		}
		cards, err := tier.run(ctx, chosen, limit-len(results))
		if err != nil {
			failed++
			slog.Warn("strategy degraded", "surface", surface, "strategy", tier.label, "error", err)
			continue
		}
		for _, c := range cards {
			if _, dup := chosen[c.MovieID]; dup {
				continue
			}
			chosen[c.MovieID] = struct{}{}
			results = append(results, c)
			if len(results) == limit {
				break
			}
		}
		if len(cards) > 0 && label == StrategyNone {
			label = tier.label
		}
	}
	if failed == len(chain) && failed > 0 {
		return nil, "", errAllTiersFailed
	}
	return results, label, nil
}
