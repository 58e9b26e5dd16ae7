package vector

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"movie-recommendation-engine/internal/config"
)

// Hit is one nearest-neighbor result from the index.
type Hit struct {
	MovieID int64
	Score   float64
}

// Index is the engine's view of the external nearest-neighbor service.
// Implementations may fail or time out; callers treat both as zero hits.
type Index interface {
	Search(ctx context.Context, embedding []float64, excludeID int64, numCandidates, limit int) ([]Hit, error)
}

// QdrantIndex queries a qdrant collection keyed by movie id.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantIndex(cfg config.QdrantConfig) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}
	return &QdrantIndex{client: client, collection: cfg.Collection}, nil
}

func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// Search returns up to limit neighbors of the embedding, scanning a pool of
// numCandidates and dropping the reference movie itself.
func (q *QdrantIndex) Search(ctx context.Context, embedding []float64, excludeID int64, numCandidates, limit int) ([]Hit, error) {
	vec := make([]float32, len(embedding))
	for i, v := range embedding {
		vec[i] = float32(v)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(uint64(numCandidates)),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	hits := make([]Hit, 0, limit)
	for _, p := range points {
		id := int64(p.GetId().GetNum())
		if id == excludeID {
			continue
		}
		hits = append(hits, Hit{MovieID: id, Score: float64(p.GetScore())})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}
