// Package rerank scores retrieved candidates against the user's original
// request via a chat model.
package rerank

import (
	"context"
	"fmt"

	"github.com/onshop/prodvec/internal/domain"
)

// Service wraps a reranking provider and short-circuits trivial inputs.
type Service struct {
	reranker domain.Reranker
}

func New(reranker domain.Reranker) *Service {
	return &Service{reranker: reranker}
}

// Rerank orders candidates by fit for the original query. An empty candidate
// list returns an empty result without calling the provider.
func (s *Service) Rerank(ctx context.Context, candidateIDs []int64, originalQuery string) ([]domain.Recommendation, error) {
	if len(candidateIDs) == 0 {
		return []domain.Recommendation{}, nil
	}

	recs, err := s.reranker.Rerank(ctx, candidateIDs, originalQuery)
	if err != nil {
		return nil, fmt.Errorf("rerank candidates: %w", err)
	}
	return recs, nil
}
