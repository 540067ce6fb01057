package vector

import (
	"context"

	"github.com/onshop/prodvec/internal/domain"
)

// Repository persists product vector records.
type Repository interface {
	Upsert(ctx context.Context, pv domain.ProductVector) error
	Get(ctx context.Context, productID int64) (domain.ProductVector, error)
	Delete(ctx context.Context, productID int64) error
}

// Searcher runs similarity search over the product index.
type Searcher interface {
	SearchProducts(ctx context.Context, vector []float32, topK int) ([]domain.ProductSummary, error)
}

// CatalogReader fetches products from the primary catalog.
type CatalogReader interface {
	GetByID(ctx context.Context, id int64) (domain.Product, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
