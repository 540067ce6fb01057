package sync

import (
	"context"
	"sort"

	"github.com/onshop/prodvec/internal/domain"
)

type mockCatalog struct {
	products []domain.Product
	listErr  error
}

func (m *mockCatalog) ListAll(_ context.Context) ([]domain.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.products, nil
}

func (m *mockCatalog) GetByID(_ context.Context, productID int64) (domain.Product, error) {
	for _, p := range m.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

type mockRepo struct {
	records map[int64]domain.ProductVector
	upserts int
	deletes int
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: map[int64]domain.ProductVector{}}
}

func (m *mockRepo) Upsert(_ context.Context, pv domain.ProductVector) error {
	m.upserts++
	m.records[pv.ProductID] = pv
	return nil
}

func (m *mockRepo) Get(_ context.Context, productID int64) (domain.ProductVector, error) {
	pv, ok := m.records[productID]
	if !ok {
		return domain.ProductVector{}, domain.ErrVectorNotFound
	}
	return pv, nil
}

func (m *mockRepo) Delete(_ context.Context, productID int64) error {
	m.deletes++
	delete(m.records, productID)
	return nil
}

func (m *mockRepo) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// mockEmbedder fails for texts listed in failFor.
type mockEmbedder struct {
	calls   int
	failFor map[string]bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.failFor[text] {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func product(id int64, name string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        name,
		Description: "desc",
		Category:    "cat",
		Price:       1000,
	}
}
