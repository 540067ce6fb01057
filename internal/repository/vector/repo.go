package vector

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/onshop/prodvec/internal/db"
	"github.com/onshop/prodvec/internal/domain"
)

const (
	keyPrefix = domain.KeyPrefix + "product:"
	indexName = domain.KeyPrefix + "product:idx"
)

// Hash field names, indexed by the FT schema in buildIndex.
const (
	fieldVector     = "vector"
	fieldSourceHash = "source_hash"
	fieldSyncedAt   = "synced_at"
	fieldName       = "name"
	fieldCategory   = "category"
	fieldPrice      = "price"
)

// store is the consumer interface for vector records.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo persists one vector record per product as a Redis hash.
type Repo struct {
	store store
	dim   int
	hnsw  HNSWConfig
}

// New creates a vector record repository.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim}
}

// WithHNSW configures HNSW build parameters for EnsureIndex.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the product FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldPrice, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert overwrites the record for a product. HSET is atomic per key, so
// concurrent writers resolve to last-writer-wins.
func (r *Repo) Upsert(ctx context.Context, pv domain.ProductVector) error {
	if len(pv.Vector) != r.dim {
		return fmt.Errorf("vector for product %d has dim %d, index wants %d", pv.ProductID, len(pv.Vector), r.dim)
	}

	syncedAt := pv.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now().UTC()
	}

	fields := map[string]string{
		fieldVector:     vectorToBlob(pv.Vector),
		fieldSourceHash: pv.SourceHash,
		fieldSyncedAt:   strconv.FormatInt(syncedAt.Unix(), 10),
		fieldName:       pv.Name,
		fieldCategory:   pv.Category,
		fieldPrice:      strconv.FormatInt(pv.Price, 10),
	}

	if err := r.store.HSet(ctx, Key(pv.ProductID), fields); err != nil {
		return fmt.Errorf("hset product %d: %w", pv.ProductID, err)
	}
	return nil
}

// Get returns the vector record for a product, or domain.ErrVectorNotFound.
func (r *Repo) Get(ctx context.Context, productID int64) (domain.ProductVector, error) {
	fields, err := r.store.HGetAll(ctx, Key(productID))
	if err != nil {
		return domain.ProductVector{}, fmt.Errorf("hgetall product %d: %w", productID, err)
	}
	if len(fields) == 0 {
		return domain.ProductVector{}, domain.ErrVectorNotFound
	}

	return parseRecord(productID, fields)
}

// Delete removes the record. A missing record is a no-op, not an error.
func (r *Repo) Delete(ctx context.Context, productID int64) error {
	if err := r.store.Del(ctx, Key(productID)); err != nil {
		return fmt.Errorf("del product %d: %w", productID, err)
	}
	return nil
}

// ListIDs returns the product IDs of every stored vector record.
// Sync uses it to detect orphans after catalog deletions.
func (r *Repo) ListIDs(ctx context.Context) ([]int64, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}

	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		idStr := strings.TrimPrefix(key, keyPrefix)
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			// Foreign key under the record prefix. Skip.
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Key returns the Redis key for a product's vector record.
func Key(productID int64) string {
	return keyPrefix + strconv.FormatInt(productID, 10)
}

// IndexName returns the FT index name for product vectors.
func IndexName() string { return indexName }

func parseRecord(productID int64, fields map[string]string) (domain.ProductVector, error) {
	vec, err := blobToVector(fields[fieldVector])
	if err != nil {
		return domain.ProductVector{}, fmt.Errorf("parse vector for product %d: %w", productID, err)
	}

	pv := domain.ProductVector{
		ProductID:  productID,
		Vector:     vec,
		SourceHash: fields[fieldSourceHash],
		Name:       fields[fieldName],
		Category:   fields[fieldCategory],
	}

	if s := fields[fieldPrice]; s != "" {
		if price, err := strconv.ParseInt(s, 10, 64); err == nil {
			pv.Price = price
		}
	}
	if s := fields[fieldSyncedAt]; s != "" {
		if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
			pv.SyncedAt = time.Unix(unix, 0).UTC()
		}
	}

	return pv, nil
}

func vectorToBlob(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func blobToVector(data string) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob: len=%d (not multiple of 4)", len(data))
	}
	raw := []byte(data)
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
