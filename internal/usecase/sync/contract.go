package sync

import (
	"context"

	"github.com/onshop/prodvec/internal/domain"
)

// Catalog is the consumer interface for the product catalog.
type Catalog interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, productID int64) (domain.Product, error)
}

// Repository is the consumer interface for the vector store.
type Repository interface {
	Upsert(ctx context.Context, pv domain.ProductVector) error
	Get(ctx context.Context, productID int64) (domain.ProductVector, error)
	Delete(ctx context.Context, productID int64) error
	ListIDs(ctx context.Context) ([]int64, error)
}

// Embedder is the consumer interface for document vectorization.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
