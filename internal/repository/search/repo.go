package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/onshop/prodvec/internal/db"
	"github.com/onshop/prodvec/internal/domain"
	vectorrepo "github.com/onshop/prodvec/internal/repository/vector"
)

// MaxTopK is the default upper bound on topK for any single search.
const MaxTopK = 200

// store is the consumer interface for search operations.
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs KNN queries over the product vector index.
type Repo struct {
	store   store
	maxTopK int
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s, maxTopK: MaxTopK}
}

// WithMaxTopK overrides the topK ceiling. Non-positive values keep the default.
func (r *Repo) WithMaxTopK(max int) *Repo {
	if max > 0 {
		r.maxTopK = max
	}
	return r
}

// SearchKNN returns up to topK candidates ordered by cosine similarity
// descending, ties broken by product ID ascending. Rejects topK outside the
// configured bound.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, topK int, filters map[string]string,
) ([]domain.Candidate, error) {
	if topK <= 0 || topK > r.maxTopK {
		return nil, fmt.Errorf("topK %d: %w", topK, domain.ErrInvalidTopK)
	}

	q := &db.KNNQuery{
		IndexName: vectorrepo.IndexName(),
		Vector:    vector,
		K:         topK,
		Filters:   filters,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return parseCandidates(sr)
}

// SearchProducts returns scored product summaries for the /vector/search surface.
func (r *Repo) SearchProducts(
	ctx context.Context, vector []float32, topK int,
) ([]domain.ProductSummary, error) {
	if topK <= 0 || topK > r.maxTopK {
		return nil, fmt.Errorf("topK %d: %w", topK, domain.ErrInvalidTopK)
	}

	q := &db.KNNQuery{
		IndexName:    vectorrepo.IndexName(),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"name", "category", "price"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return parseSummaries(sr)
}

func parseCandidates(sr *db.SearchResult) ([]domain.Candidate, error) {
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	candidates := make([]domain.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id, ok := productIDFromKey(entry.Key)
		if !ok {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			ProductID: id,
			Score:     similarity(entry.Score),
		})
	}

	sortCandidates(candidates)
	return candidates, nil
}

func parseSummaries(sr *db.SearchResult) ([]domain.ProductSummary, error) {
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	summaries := make([]domain.ProductSummary, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id, ok := productIDFromKey(entry.Key)
		if !ok {
			continue
		}
		s := domain.ProductSummary{
			ProductID: id,
			Name:      entry.Fields["name"],
			Category:  entry.Fields["category"],
			Score:     similarity(entry.Score),
		}
		if p := entry.Fields["price"]; p != "" {
			if price, err := strconv.ParseInt(p, 10, 64); err == nil {
				s.Price = price
			}
		}
		summaries = append(summaries, s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Score != summaries[j].Score {
			return summaries[i].Score > summaries[j].Score
		}
		return summaries[i].ProductID < summaries[j].ProductID
	})
	return summaries, nil
}

// sortCandidates orders by score descending, product ID ascending on ties.
func sortCandidates(candidates []domain.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ProductID < candidates[j].ProductID
	})
}

// similarity maps cosine distance (0 = identical) to similarity in [0, 1].
func similarity(distance float64) float64 {
	s := 1 - distance
	if s < 0 {
		return 0
	}
	return s
}

func productIDFromKey(key string) (int64, bool) {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
