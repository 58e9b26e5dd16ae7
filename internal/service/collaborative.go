package service

import (
	"context"
	"fmt"
	"sort"

	"movie-recommendation-engine/internal/models"
)

// collaborative recommends what similar users liked. Similar users are those
// whose positive history overlaps the target's positives by at least the
// configured minimum; their own positives, minus everything the target has
// seen, are ranked by frequency across the neighborhood. Every error here is
// "insufficient collaborative signal" to the chain runner, never a request
// failure.
func (s *RecommendationService) collaborative(ctx context.Context, userID int64, positives []int64, exclude []int64, limit int) ([]models.MovieCard, error) {
	if len(positives) == 0 {
		return nil, nil
	}

	qctx, cancel := s.storeCtx(ctx)
	neighbors, err := s.interactions.UsersWithPositiveOverlap(qctx, positives, userID, s.cfg.PositiveRatingThreshold, s.cfg.NeighborPool)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("find similar users: %w", err)
	}

	similar := make([]int64, 0, s.cfg.MaxSimilarUsers)
	for _, n := range neighbors {
		if n.Overlap < s.cfg.MinOverlap {
			break // neighbors arrive sorted by overlap descending
		}
		similar = append(similar, n.UserID)
		if len(similar) == s.cfg.MaxSimilarUsers {
			break
		}
	}
	if len(similar) == 0 {
		return nil, nil
	}

	qctx, cancel = s.storeCtx(ctx)
	neighborPositives, err := s.interactions.PositiveMovieIDsForUsers(qctx, similar, s.cfg.PositiveRatingThreshold, s.cfg.NeighborPool)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("collect neighbor positives: %w", err)
	}

	// Frequency per unseen movie; insertion order is the tie-break, which is
	// deterministic because the store returns rows in a fixed order.
	excludeSet := toSet(exclude)
	for _, id := range positives {
		excludeSet[id] = struct{}{}
	}
	freq := make(map[int64]int)
	order := make([]int64, 0, len(neighborPositives))
	for _, id := range neighborPositives {
		if _, seen := excludeSet[id]; seen {
			continue
		}
		if freq[id] == 0 {
			order = append(order, id)
		}
		freq[id]++
	}
	if len(order) == 0 {
		return nil, nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	qctx, cancel = s.storeCtx(ctx)
	defer cancel()
	cards, err := s.movies.CardsByIDs(qctx, order)
	if err != nil {
		return nil, fmt.Errorf("hydrate collaborative results: %w", err)
	}
	for i := range cards {
		cards[i].Score = float64(freq[cards[i].MovieID])
	}
	return cards, nil
}
