package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommendation-engine/internal/models"
)

func TestRecentlyLikedBuildsFromLikeHistory(t *testing.T) {
	interactions := &stubInteractions{
		recent: map[int64][]int64{1: {10}},
		byType: map[int64]map[models.InteractionType][]int64{
			1: {models.InteractionLike: {10}},
		},
	}
	movies := &stubMovies{movies: []models.Movie{
		{ID: 10, GenreIDs: []int64{7}},
		{ID: 20, GenreIDs: []int64{7}, Rating: 8},
		{ID: 21, GenreIDs: []int64{9}},
	}}
	svc := newTestService(interactions, movies, nil)

	resp, err := svc.RecentlyLiked(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, StrategyRecentlyLiked, resp.Strategy)
	assert.Equal(t, []int64{20}, ids(resp.Data))
}

func TestRecentlyLikedNoHistoryReturnsEmptyNotPopular(t *testing.T) {
	// Deliberate product behavior: nothing to go on means an empty list,
	// never a generic popularity list.
	movies := &stubMovies{movies: []models.Movie{
		{ID: 1, ViewCount: 1000},
	}}
	svc := newTestService(&stubInteractions{}, movies, nil)

	resp, err := svc.RecentlyLiked(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Empty(t, resp.Data)
	assert.Equal(t, StrategyNone, resp.Strategy)
}

func TestRecentlyWatchedBuildsFromViewHistory(t *testing.T) {
	interactions := &stubInteractions{
		recent: map[int64][]int64{1: {10, 11}},
		byType: map[int64]map[models.InteractionType][]int64{
			1: {models.InteractionView: {10, 11}},
		},
	}
	movies := &stubMovies{movies: []models.Movie{
		{ID: 10, CountryIDs: []int64{100}},
		{ID: 11, GenreIDs: []int64{7}},
		{ID: 30, GenreIDs: []int64{7}, CountryIDs: []int64{100}, Rating: 9},
		{ID: 31, GenreIDs: []int64{7}, Rating: 8},
	}}
	svc := newTestService(interactions, movies, nil)

	resp, err := svc.RecentlyWatched(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, StrategyRecentlyWatched, resp.Strategy)
	require.Len(t, resp.Data, 2)
	// 30 shares a genre and a country (score 3), 31 a genre only (score 2).
	assert.Equal(t, []int64{30, 31}, ids(resp.Data))
	assert.Equal(t, 3.0, resp.Data[0].Score)
}

func TestRecentlyWatchedExcludesWatched(t *testing.T) {
	interactions := &stubInteractions{
		recent: map[int64][]int64{1: {10, 11}},
		byType: map[int64]map[models.InteractionType][]int64{
			1: {models.InteractionView: {10, 11}},
		},
	}
	movies := &stubMovies{movies: []models.Movie{
		{ID: 10, GenreIDs: []int64{7}},
		{ID: 11, GenreIDs: []int64{7}},
		{ID: 12, GenreIDs: []int64{7}},
	}}
	svc := newTestService(interactions, movies, nil)

	resp, err := svc.RecentlyWatched(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []int64{12}, ids(resp.Data))
}
