package service

import "movie-recommendation-engine/internal/models"

// categoryDim selects which id set of a card counts as its categories for
// the diversity cap.
type categoryDim int

const (
	dimCountry categoryDim = iota
	dimGenre
)

func (d categoryDim) of(card models.MovieCard) []int64 {
	if d == dimGenre {
		return card.GenreIDs
	}
	return card.CountryIDs
}

// diversitySelect walks the popularity-ordered candidates and admits one
// only if none of its categories would exceed the repetition cap. If the
// caps leave the list short, a permissive backfill pass appends the skipped
// candidates in their original order until limit is reached. Relative
// popularity order is preserved in both passes.
func diversitySelect(candidates []models.MovieCard, dim categoryDim, maxRepeat, limit int) []models.MovieCard {
	if limit <= 0 {
		return []models.MovieCard{}
	}

	selected := make([]models.MovieCard, 0, limit)
	taken := make(map[int64]struct{}, limit)
	counts := make(map[int64]int)

	for _, c := range candidates {
		if len(selected) == limit {
			break
		}
		categories := dim.of(c)
		admissible := true
		for _, cat := range categories {
			if counts[cat]+1 > maxRepeat {
				admissible = false
				break
			}
		}
		if !admissible {
			continue
		}
		for _, cat := range categories {
			counts[cat]++
		}
		selected = append(selected, c)
		taken[c.MovieID] = struct{}{}
	}

	// Backfill: caps were too restrictive for the pool, so top up ignoring
	// them rather than returning a short list.
	for _, c := range candidates {
		if len(selected) == limit {
			break
		}
		if _, ok := taken[c.MovieID]; ok {
			continue
		}
		selected = append(selected, c)
		taken[c.MovieID] = struct{}{}
	}

	return selected
}
