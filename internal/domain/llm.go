package domain

import "context"

// QueryRewriter converts a free-text user query into a space-delimited
// structured query ending in three numeric tokens. The exact meaning of the
// numeric triple is owned by the prompt; callers validate shape only.
type QueryRewriter interface {
	RewriteQuery(ctx context.Context, freeText string) (string, error)
}

// Reranker reorders candidate products against the original free-text query
// and annotates them with explanatory attributes. Output order is whatever
// the model returns.
type Reranker interface {
	Rerank(ctx context.Context, candidateIDs []int64, originalQuery string) ([]Recommendation, error)
}

// Recommendation is one entry of the final RAG answer.
// ProductID is required; Attributes is an open-ended annotation map.
type Recommendation struct {
	ProductID  int64          `json:"product_id"`
	Attributes map[string]any `json:"attributes"`
}
