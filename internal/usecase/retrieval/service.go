// Package retrieval turns a structured query into candidate product IDs
// by embedding the query and running a nearest-neighbor search.
package retrieval

import (
	"context"
	"fmt"

	"github.com/onshop/prodvec/internal/domain"
)

// Searcher is the consumer interface for the KNN index.
type Searcher interface {
	SearchKNN(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]domain.Candidate, error)
}

// Embedder is the consumer interface for query vectorization.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Service retrieves candidates for downstream reranking.
type Service struct {
	search Searcher
	embed  Embedder
	topK   int
}

func New(search Searcher, embed Embedder, topK int) *Service {
	if topK <= 0 {
		topK = 10
	}
	return &Service{search: search, embed: embed, topK: topK}
}

// Retrieve returns up to topK candidate product IDs ordered by similarity.
// An empty index yields an empty slice.
func (s *Service) Retrieve(ctx context.Context, query string) ([]domain.Candidate, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	candidates, err := s.search.SearchKNN(ctx, embResult.Embedding, s.topK, nil)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	return candidates, nil
}
