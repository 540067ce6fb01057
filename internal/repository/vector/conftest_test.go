package vector

import (
	"context"
	"strings"
	"testing"

	"github.com/onshop/prodvec/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hashes        map[string]map[string]string
	createdIndex  *db.IndexDefinition
	indexExists   bool
	hsetErr       error
	hgetallErr    error
	indexExistErr error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: map[string]map[string]string{}}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	m.hashes[key] = fields
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.hgetallErr != nil {
		return nil, m.hgetallErr
	}
	return m.hashes[key], nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.hashes, key)
	return nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.createdIndex = def
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	if m.indexExistErr != nil {
		return false, m.indexExistErr
	}
	return m.indexExists, nil
}

func newTestRepo(t *testing.T, dim int) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms, dim), ms
}

func testVec(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(i) * 0.25
	}
	return v
}
