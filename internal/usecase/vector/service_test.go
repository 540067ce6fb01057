package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/onshop/prodvec/internal/domain"
)

func TestSearchUsesQueryEmbedder(t *testing.T) {
	searcher := &mockSearcher{
		summaries: []domain.ProductSummary{{ProductID: 7, Name: "trail shoe", Score: 0.91}},
	}
	docEmbed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{9, 9}}}
	queryEmbed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	svc := New(newMockRepo(), searcher, &mockCatalog{}, docEmbed, queryEmbed).WithTopK(5)

	got, err := svc.Search(context.Background(), "light trail shoes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ProductID != 7 {
		t.Fatalf("unexpected summaries: %+v", got)
	}
	if docEmbed.calls != 0 {
		t.Fatalf("document embedder called %d times for a query", docEmbed.calls)
	}
	if queryEmbed.calls != 1 {
		t.Fatalf("query embedder calls = %d, want 1", queryEmbed.calls)
	}
	if searcher.gotTopK != 5 {
		t.Fatalf("topK = %d, want 5", searcher.gotTopK)
	}
}

func TestSearchEmbedError(t *testing.T) {
	queryEmbed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(newMockRepo(), &mockSearcher{}, &mockCatalog{}, &mockEmbedder{}, queryEmbed)

	_, err := svc.Search(context.Background(), "anything")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("error = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestSaveBuildsRecordFromCatalog(t *testing.T) {
	repo := newMockRepo()
	catalog := &mockCatalog{products: map[int64]domain.Product{42: testProduct(42)}}
	docEmbed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2, 3}}}
	svc := New(repo, &mockSearcher{}, catalog, docEmbed, &mockEmbedder{})

	pv, err := svc.Save(context.Background(), 42, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pv.ProductID != 42 || pv.Name != "trail shoe" || pv.Price != 54000 {
		t.Fatalf("unexpected record: %+v", pv)
	}
	if pv.SourceHash != testProduct(42).ContentHash() {
		t.Fatalf("source hash does not match catalog content hash")
	}
	if pv.SyncedAt.IsZero() {
		t.Fatal("synced_at not set")
	}
	if want := testProduct(42).EmbeddingText(); docEmbed.gotTexts[0] != want {
		t.Fatalf("embedded text = %q, want %q", docEmbed.gotTexts[0], want)
	}
	if _, err := repo.Get(context.Background(), 42); err != nil {
		t.Fatalf("record not stored: %v", err)
	}
}

func TestSaveWithContentOverride(t *testing.T) {
	repo := newMockRepo()
	catalog := &mockCatalog{products: map[int64]domain.Product{42: testProduct(42)}}
	docEmbed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	svc := New(repo, &mockSearcher{}, catalog, docEmbed, &mockEmbedder{})

	pv, err := svc.Save(context.Background(), 42, "custom marketing copy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docEmbed.gotTexts[0] != "custom marketing copy" {
		t.Fatalf("embedded text = %q", docEmbed.gotTexts[0])
	}
	if pv.SourceHash == testProduct(42).ContentHash() {
		t.Fatal("source hash should reflect the override, not catalog content")
	}
}

func TestSaveUnknownProduct(t *testing.T) {
	svc := New(newMockRepo(), &mockSearcher{}, &mockCatalog{}, &mockEmbedder{}, &mockEmbedder{})

	_, err := svc.Save(context.Background(), 99, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateRequiresExistingRecord(t *testing.T) {
	catalog := &mockCatalog{products: map[int64]domain.Product{42: testProduct(42)}}
	docEmbed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	svc := New(newMockRepo(), &mockSearcher{}, catalog, docEmbed, &mockEmbedder{})

	_, err := svc.Update(context.Background(), 42, "")
	if !errors.Is(err, domain.ErrVectorNotFound) {
		t.Fatalf("error = %v, want ErrVectorNotFound", err)
	}
	if docEmbed.calls != 0 {
		t.Fatal("embedder called before existence check")
	}
}

func TestUpdateOverwrites(t *testing.T) {
	repo := newMockRepo()
	catalog := &mockCatalog{products: map[int64]domain.Product{42: testProduct(42)}}
	docEmbed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{5, 6}}}
	svc := New(repo, &mockSearcher{}, catalog, docEmbed, &mockEmbedder{})

	if _, err := svc.Save(context.Background(), 42, ""); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	if _, err := svc.Update(context.Background(), 42, "new copy"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if repo.upserts != 2 {
		t.Fatalf("upserts = %d, want 2", repo.upserts)
	}
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	svc := New(newMockRepo(), &mockSearcher{}, &mockCatalog{}, &mockEmbedder{}, &mockEmbedder{})

	if err := svc.Delete(context.Background(), 12345); err != nil {
		t.Fatalf("delete of missing record returned %v", err)
	}
}
