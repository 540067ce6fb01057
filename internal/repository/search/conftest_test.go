package search

import (
	"context"
	"testing"

	"github.com/onshop/prodvec/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testVector() []float32 {
	v := make([]float32, 4)
	for i := range v {
		v[i] = 0.1
	}
	return v
}

func entry(key string, score float64, fields map[string]string) db.SearchEntry {
	return db.SearchEntry{Key: key, Score: score, Fields: fields}
}
