package service

import (
	"context"
	"fmt"

	"movie-recommendation-engine/internal/models"
)

// PreferenceFeatures is the union of genre and country ids over a reference
// set of movies. Both sets empty means "no preference signal": every
// candidate then scores zero on feature overlap.
type PreferenceFeatures struct {
	GenreIDs   map[int64]struct{}
	CountryIDs map[int64]struct{}
}

// Empty reports whether the features carry no signal at all.
func (p PreferenceFeatures) Empty() bool {
	return len(p.GenreIDs) == 0 && len(p.CountryIDs) == 0
}

// GenreList and CountryList flatten the sets for store filters.
func (p PreferenceFeatures) GenreList() []int64   { return setToList(p.GenreIDs) }
func (p PreferenceFeatures) CountryList() []int64 { return setToList(p.CountryIDs) }

// aggregateFeatures unions the genre/country ids of the given movies.
func (s *RecommendationService) aggregateFeatures(ctx context.Context, movieIDs []int64) (PreferenceFeatures, error) {
	prefs := PreferenceFeatures{
		GenreIDs:   make(map[int64]struct{}),
		CountryIDs: make(map[int64]struct{}),
	}
	if len(movieIDs) == 0 {
		return prefs, nil
	}

	qctx, cancel := s.storeCtx(ctx)
	defer cancel()

	features, err := s.movies.FeaturesByIDs(qctx, movieIDs)
	if err != nil {
		return prefs, fmt.Errorf("aggregate features: %w", err)
	}
	for _, f := range features {
		for _, g := range f.GenreIDs {
			prefs.GenreIDs[g] = struct{}{}
		}
		for _, c := range f.CountryIDs {
			prefs.CountryIDs[c] = struct{}{}
		}
	}
	return prefs, nil
}

// Genre overlap counts double against country overlap. A fixed weighting,
// not a learned one.
const (
	genreWeight   = 2
	countryWeight = 1
)

// contentScore computes the feature-overlap match between one candidate and
// a preference set.
func contentScore(card models.MovieCard, prefs PreferenceFeatures) float64 {
	shared := 0
	for _, g := range card.GenreIDs {
		if _, ok := prefs.GenreIDs[g]; ok {
			shared += genreWeight
		}
	}
	for _, c := range card.CountryIDs {
		if _, ok := prefs.CountryIDs[c]; ok {
			shared += countryWeight
		}
	}
	return float64(shared)
}

func setToList(set map[int64]struct{}) []int64 {
	list := make([]int64, 0, len(set))
	for id := range set {
		list = append(list, id)
	}
	return list
}
