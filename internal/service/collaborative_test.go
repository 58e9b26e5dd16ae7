package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommendation-engine/internal/models"
)

func collaborativeFixture() (*stubInteractions, *stubMovies) {
	interactions := &stubInteractions{
		overlaps: []models.UserOverlap{
			{UserID: 2, Overlap: 5},
			{UserID: 3, Overlap: 4},
			{UserID: 4, Overlap: 2}, // below MinOverlap, must be dropped
		},
		// Movie 20 liked by two neighbors, 21 by one, 10 already seen.
		neighborPositives: []int64{20, 21, 20, 10},
	}
	movies := &stubMovies{movies: []models.Movie{
		{ID: 10}, {ID: 20}, {ID: 21},
	}}
	return interactions, movies
}

func TestCollaborativeRanksByNeighborFrequency(t *testing.T) {
	interactions, movies := collaborativeFixture()
	svc := newTestService(interactions, movies, nil)

	cards, err := svc.collaborative(context.Background(), 1, []int64{10, 11}, []int64{10, 11}, 10)
	require.NoError(t, err)

	require.Len(t, cards, 2)
	assert.Equal(t, []int64{20, 21}, ids(cards))
	assert.Equal(t, 2.0, cards[0].Score)
	assert.Equal(t, 1.0, cards[1].Score)
}

func TestCollaborativeExcludesSeenMovies(t *testing.T) {
	interactions, movies := collaborativeFixture()
	svc := newTestService(interactions, movies, nil)

	exclude := []int64{10, 11, 20}
	cards, err := svc.collaborative(context.Background(), 1, []int64{10, 11}, exclude, 10)
	require.NoError(t, err)

	excluded := toSet(exclude)
	for _, c := range cards {
		_, seen := excluded[c.MovieID]
		assert.False(t, seen, "movie %d is in the exclusion set", c.MovieID)
	}
	assert.Equal(t, []int64{21}, ids(cards))
}

func TestCollaborativeDeterministic(t *testing.T) {
	interactions, movies := collaborativeFixture()
	svc := newTestService(interactions, movies, nil)

	first, err := svc.collaborative(context.Background(), 1, []int64{10, 11}, []int64{10, 11}, 10)
	require.NoError(t, err)
	second, err := svc.collaborative(context.Background(), 1, []int64{10, 11}, []int64{10, 11}, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCollaborativeNoPositives(t *testing.T) {
	svc := newTestService(&stubInteractions{}, &stubMovies{}, nil)

	cards, err := svc.collaborative(context.Background(), 1, nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestCollaborativeNoQualifyingNeighbors(t *testing.T) {
	interactions := &stubInteractions{
		overlaps: []models.UserOverlap{{UserID: 2, Overlap: 1}},
	}
	svc := newTestService(interactions, &stubMovies{}, nil)

	cards, err := svc.collaborative(context.Background(), 1, []int64{10}, []int64{10}, 10)
	require.NoError(t, err)

	assert.Empty(t, cards)
	assert.Zero(t, interactions.neighborCalls, "no neighbor fetch without qualifying neighbors")
}

func TestCollaborativeStoreErrorSurfacesForDowngrade(t *testing.T) {
	interactions := &stubInteractions{errOverlap: errors.New("store down")}
	svc := newTestService(interactions, &stubMovies{}, nil)

	_, err := svc.collaborative(context.Background(), 1, []int64{10}, []int64{10}, 10)
	assert.Error(t, err)
}
