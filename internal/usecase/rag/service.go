// Package rag orchestrates the recommendation pipeline: query rewriting,
// validation, candidate retrieval, and reranking.
package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/onshop/prodvec/internal/domain"
)

// Retriever is the consumer interface for candidate retrieval.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Candidate, error)
}

// Reranker is the consumer interface for candidate reranking.
type Reranker interface {
	Rerank(ctx context.Context, candidateIDs []int64, originalQuery string) ([]domain.Recommendation, error)
}

// Result is the outcome of one recommendation request. Rejected means the
// rewritten query failed structural validation; Recommendations is empty and
// no retrieval or reranking happened.
type Result struct {
	Rejected        bool
	RewrittenQuery  string
	Recommendations []domain.Recommendation
}

// Service runs the recommendation pipeline.
type Service struct {
	rewriter domain.QueryRewriter
	retrieve Retriever
	rerank   Reranker
	logger   *zap.Logger
}

func New(rewriter domain.QueryRewriter, retrieve Retriever, rerank Reranker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{rewriter: rewriter, retrieve: retrieve, rerank: rerank, logger: logger}
}

// Recommend rewrites the free-text request into a structured query, validates
// it, retrieves candidates, and reranks them against the original request.
// A rewrite that fails validation yields a rejected Result, not an error.
func (s *Service) Recommend(ctx context.Context, freeText string) (Result, error) {
	rewritten, err := s.rewriter.RewriteQuery(ctx, freeText)
	if err != nil {
		return Result{}, fmt.Errorf("rewrite query: %w", err)
	}

	if !domain.IsValidStructuredQuery(rewritten) {
		s.logger.Info("rewritten query rejected",
			zap.String("rewritten", rewritten))
		return Result{Rejected: true, RewrittenQuery: rewritten}, nil
	}

	candidates, err := s.retrieve.Retrieve(ctx, rewritten)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve candidates: %w", err)
	}

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ProductID
	}

	recs, err := s.rerank.Rerank(ctx, ids, freeText)
	if err != nil {
		return Result{}, fmt.Errorf("rerank candidates: %w", err)
	}

	return Result{RewrittenQuery: rewritten, Recommendations: recs}, nil
}
