package vector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/onshop/prodvec/internal/domain"
)

// Service handles vector record CRUD and the similarity search surface.
type Service struct {
	repo       Repository
	search     Searcher
	catalog    CatalogReader
	docEmbed   Embedder
	queryEmbed Embedder
	topK       int
}

// New creates a vector service.
func New(repo Repository, search Searcher, catalog CatalogReader, docEmbed, queryEmbed Embedder) *Service {
	return &Service{
		repo:       repo,
		search:     search,
		catalog:    catalog,
		docEmbed:   docEmbed,
		queryEmbed: queryEmbed,
		topK:       10,
	}
}

// WithTopK configures how many hits Search returns.
func (s *Service) WithTopK(topK int) *Service {
	if topK > 0 {
		s.topK = topK
	}
	return s
}

// Search embeds the query text and returns similarity-ordered product summaries.
// An empty index yields an empty slice, not an error.
func (s *Service) Search(ctx context.Context, query string) ([]domain.ProductSummary, error) {
	embResult, err := s.queryEmbed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	summaries, err := s.search.SearchProducts(ctx, embResult.Embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return summaries, nil
}

// Get returns the stored vector record for a product.
func (s *Service) Get(ctx context.Context, productID int64) (domain.ProductVector, error) {
	return s.repo.Get(ctx, productID)
}

// Save embeds and stores a record for a product, overwriting any existing one.
// When content is empty, the embedding text is built from the catalog product.
func (s *Service) Save(ctx context.Context, productID int64, content string) (domain.ProductVector, error) {
	return s.embedAndStore(ctx, productID, content)
}

// Update re-embeds an existing record. Fails with domain.ErrVectorNotFound
// when no record exists for the product.
func (s *Service) Update(ctx context.Context, productID int64, content string) (domain.ProductVector, error) {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return domain.ProductVector{}, err
	}
	return s.embedAndStore(ctx, productID, content)
}

// Delete removes the record. A missing record is a no-op.
func (s *Service) Delete(ctx context.Context, productID int64) error {
	return s.repo.Delete(ctx, productID)
}

func (s *Service) embedAndStore(ctx context.Context, productID int64, content string) (domain.ProductVector, error) {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return domain.ProductVector{}, fmt.Errorf("fetch product %d: %w", productID, err)
	}

	text := content
	sourceHash := product.ContentHash()
	if text == "" {
		text = product.EmbeddingText()
	} else {
		sourceHash = hashContent(text)
	}

	embResult, err := s.docEmbed.Embed(ctx, text)
	if err != nil {
		return domain.ProductVector{}, fmt.Errorf("embed product %d: %w", productID, err)
	}

	pv := domain.ProductVector{
		ProductID:  productID,
		Vector:     embResult.Embedding,
		SourceHash: sourceHash,
		Name:       product.Name,
		Category:   product.Category,
		Price:      product.Price,
		SyncedAt:   time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, pv); err != nil {
		return domain.ProductVector{}, fmt.Errorf("store product %d: %w", productID, err)
	}
	return pv, nil
}

func hashContent(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
