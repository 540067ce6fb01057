package chi

import (
	"context"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/onshop/prodvec/internal/domain"
	healthuc "github.com/onshop/prodvec/internal/usecase/health"
	raguc "github.com/onshop/prodvec/internal/usecase/rag"
	syncuc "github.com/onshop/prodvec/internal/usecase/sync"
	vectoruc "github.com/onshop/prodvec/internal/usecase/vector"
)

// fakeRepo is an in-memory vector store shared by the wired services.
type fakeRepo struct {
	records map[int64]domain.ProductVector
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[int64]domain.ProductVector{}}
}

func (f *fakeRepo) Upsert(_ context.Context, pv domain.ProductVector) error {
	f.records[pv.ProductID] = pv
	return nil
}

func (f *fakeRepo) Get(_ context.Context, productID int64) (domain.ProductVector, error) {
	pv, ok := f.records[productID]
	if !ok {
		return domain.ProductVector{}, domain.ErrVectorNotFound
	}
	return pv, nil
}

func (f *fakeRepo) Delete(_ context.Context, productID int64) error {
	delete(f.records, productID)
	return nil
}

func (f *fakeRepo) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeSearcher struct {
	summaries []domain.ProductSummary
}

func (f *fakeSearcher) SearchProducts(_ context.Context, _ []float32, _ int) ([]domain.ProductSummary, error) {
	return f.summaries, nil
}

type fakeCatalog struct {
	products map[int64]domain.Product
}

func (f *fakeCatalog) ListAll(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, productID int64) (domain.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
}

type fakeRewriter struct {
	rewritten string
}

func (f *fakeRewriter) RewriteQuery(_ context.Context, _ string) (string, error) {
	return f.rewritten, nil
}

type fakeRetriever struct {
	candidates []domain.Candidate
	calls      int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string) ([]domain.Candidate, error) {
	f.calls++
	return f.candidates, nil
}

type fakeReranker struct {
	recs  []domain.Recommendation
	calls int
}

func (f *fakeReranker) Rerank(_ context.Context, _ []int64, _ string) ([]domain.Recommendation, error) {
	f.calls++
	return f.recs, nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

type fixture struct {
	repo      *fakeRepo
	catalog   *fakeCatalog
	retriever *fakeRetriever
	reranker  *fakeReranker
	rewriter  *fakeRewriter
	server    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:      newFakeRepo(),
		catalog:   &fakeCatalog{products: map[int64]domain.Product{}},
		retriever: &fakeRetriever{},
		reranker:  &fakeReranker{},
		rewriter:  &fakeRewriter{rewritten: "default query 1 2 3"},
	}

	logger := zap.NewNop()
	vectors := vectoruc.New(f.repo, &fakeSearcher{}, f.catalog, fakeEmbedder{}, fakeEmbedder{})
	syncSvc := syncuc.New(f.catalog, f.repo, fakeEmbedder{}, logger)
	ragSvc := raguc.New(f.rewriter, f.retriever, f.reranker, logger)
	healthSvc := healthuc.New(&fakePinger{}, nil)

	api := NewServer(vectors, syncSvc, ragSvc, healthSvc, logger)
	r := chirouter.NewRouter()
	api.Routes(r)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}
