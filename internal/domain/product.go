package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// KeyPrefix namespaces all prodvec keys in the shared Redis.
const KeyPrefix = "prodvec:"

// Product is a row from the primary catalog. The catalog owns it; this
// service only reads name/description/category/price to build embeddings.
type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       int64
}

// EmbeddingText is the canonical text fed to the embedding provider for a product.
func (p Product) EmbeddingText() string {
	return fmt.Sprintf("%s %s %s %d", p.Name, p.Description, p.Category, p.Price)
}

// ContentHash fingerprints the embeddable fields. Sync compares it against the
// stored vector's SourceHash to skip unchanged products.
func (p Product) ContentHash() string {
	h := sha256.Sum256([]byte(
		p.Name + "\x00" + p.Description + "\x00" + p.Category + "\x00" + strconv.FormatInt(p.Price, 10),
	))
	return hex.EncodeToString(h[:])
}

// ProductVector is the secondary-index record, 1:1 with a catalog product.
// Owned by the vector store; written only through sync or explicit save calls.
type ProductVector struct {
	ProductID  int64
	Vector     []float32 // not exposed to clients
	SourceHash string
	Name       string
	Category   string
	Price      int64
	SyncedAt   time.Time
}
