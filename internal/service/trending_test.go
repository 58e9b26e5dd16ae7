package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommendation-engine/internal/models"
)

func TestTrendingRanksByRecentViews(t *testing.T) {
	interactions := &stubInteractions{viewCounts: []models.MovieViewCount{
		{MovieID: 2, Count: 50},
		{MovieID: 1, Count: 30},
		{MovieID: 3, Count: 10},
	}}
	movies := &stubMovies{movies: []models.Movie{
		{ID: 1, CountryIDs: []int64{100}, ViewCount: 9999},
		{ID: 2, CountryIDs: []int64{100}},
		{ID: 3, CountryIDs: []int64{200}},
	}}
	svc := newTestService(interactions, movies, nil)

	resp, err := svc.TrendingGlobal(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, StrategyTrending, resp.Strategy)
	// Window counts rank, not all-time views.
	assert.Equal(t, []int64{2, 1, 3}, ids(resp.Data))
	assert.Equal(t, 50.0, resp.Data[0].Score)
}

func TestTrendingFallsBackToAllTimeViews(t *testing.T) {
	// Zero VIEW events in the window but a nonzero all-time ranking: the
	// fallback label must be reported and ordering must follow view_count.
	interactions := &stubInteractions{}
	movies := &stubMovies{movies: []models.Movie{
		{ID: 1, ViewCount: 100, CountryIDs: []int64{1}},
		{ID: 2, ViewCount: 300, CountryIDs: []int64{2}},
		{ID: 3, ViewCount: 200, CountryIDs: []int64{3}},
	}}
	svc := newTestService(interactions, movies, nil)

	resp, err := svc.TrendingGlobal(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, StrategyTrendingAllTime, resp.Strategy)
	assert.Equal(t, []int64{2, 3, 1}, ids(resp.Data))
}

func TestTrendingEnforcesCountryCap(t *testing.T) {
	var counts []models.MovieViewCount
	var catalog []models.Movie
	// Six movies from country 1 dominate the window, two from country 2 and
	// one from country 3 trail. Pool is large enough that the cap (3) must
	// hold strictly.
	for i := int64(1); i <= 6; i++ {
		counts = append(counts, models.MovieViewCount{MovieID: i, Count: 100 - i})
		catalog = append(catalog, models.Movie{ID: i, CountryIDs: []int64{1}})
	}
	for i := int64(7); i <= 9; i++ {
		counts = append(counts, models.MovieViewCount{MovieID: i, Count: 50 - i})
		catalog = append(catalog, models.Movie{ID: i, CountryIDs: []int64{2 + i%2}})
	}
	interactions := &stubInteractions{viewCounts: counts}
	svc := newTestService(interactions, &stubMovies{movies: catalog}, nil)

	resp, err := svc.TrendingGlobal(context.Background(), 6)
	require.NoError(t, err)

	require.Len(t, resp.Data, 6)
	perCountry := map[int64]int{}
	for _, c := range resp.Data {
		for _, country := range c.CountryIDs {
			perCountry[country]++
		}
	}
	assert.LessOrEqual(t, perCountry[1], 3)
}

func TestTrendingByTypeUsesGenreCap(t *testing.T) {
	counts := []models.MovieViewCount{
		{MovieID: 1, Count: 90}, {MovieID: 2, Count: 80},
		{MovieID: 3, Count: 70}, {MovieID: 4, Count: 60},
	}
	catalog := []models.Movie{
		{ID: 1, TypeID: 5, GenreIDs: []int64{7}},
		{ID: 2, TypeID: 5, GenreIDs: []int64{7}},
		{ID: 3, TypeID: 5, GenreIDs: []int64{7}},
		{ID: 4, TypeID: 5, GenreIDs: []int64{8}},
	}
	interactions := &stubInteractions{viewCounts: counts}
	svc := newTestService(interactions, &stubMovies{movies: catalog}, nil)

	resp, err := svc.TrendingByType(context.Background(), 5, 3)
	require.NoError(t, err)

	// Genre cap is 2: the third genre-7 movie yields to the genre-8 one.
	assert.Equal(t, []int64{1, 2, 4}, ids(resp.Data))
}

func TestTrendingShortPoolReturnsWhatExists(t *testing.T) {
	interactions := &stubInteractions{viewCounts: []models.MovieViewCount{
		{MovieID: 1, Count: 5},
	}}
	movies := &stubMovies{movies: []models.Movie{{ID: 1}}}
	svc := newTestService(interactions, movies, nil)

	resp, err := svc.TrendingGlobal(context.Background(), 10)
	require.NoError(t, err)

	assert.Len(t, resp.Data, 1)
}
