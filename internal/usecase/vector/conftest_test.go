package vector

import (
	"context"
	"sync"

	"github.com/onshop/prodvec/internal/domain"
)

type mockRepo struct {
	mu      sync.Mutex
	records map[int64]domain.ProductVector
	upserts int
	err     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: map[int64]domain.ProductVector{}}
}

func (m *mockRepo) Upsert(_ context.Context, pv domain.ProductVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserts++
	m.records[pv.ProductID] = pv
	return nil
}

func (m *mockRepo) Get(_ context.Context, productID int64) (domain.ProductVector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pv, ok := m.records[productID]
	if !ok {
		return domain.ProductVector{}, domain.ErrVectorNotFound
	}
	return pv, nil
}

func (m *mockRepo) Delete(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, productID)
	return nil
}

type mockSearcher struct {
	summaries []domain.ProductSummary
	gotVector []float32
	gotTopK   int
	err       error
}

func (m *mockSearcher) SearchProducts(_ context.Context, vector []float32, topK int) ([]domain.ProductSummary, error) {
	m.gotVector = vector
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
}

type mockCatalog struct {
	products map[int64]domain.Product
	calls    int
}

func (m *mockCatalog) GetByID(_ context.Context, productID int64) (domain.Product, error) {
	m.calls++
	p, ok := m.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

type mockEmbedder struct {
	result   domain.EmbeddingResult
	err      error
	calls    int
	gotTexts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.gotTexts = append(m.gotTexts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

func testProduct(id int64) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        "trail shoe",
		Description: "grippy sole",
		Category:    "footwear",
		Price:       54000,
	}
}
