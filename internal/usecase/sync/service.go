// Package sync reconciles the vector store with the product catalog.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/onshop/prodvec/internal/domain"
	"github.com/onshop/prodvec/internal/metrics"
)

// Service drives full-catalog and single-product synchronization.
type Service struct {
	catalog Catalog
	repo    Repository
	embed   Embedder
	logger  *zap.Logger
}

func New(catalog Catalog, repo Repository, embed Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, repo: repo, embed: embed, logger: logger}
}

// SyncAll reconciles every catalog product with the vector store. Products
// whose content hash is unchanged are skipped; records for products no longer
// in the catalog are deleted. Per-product failures are collected in the
// report and do not abort the run.
func (s *Service) SyncAll(ctx context.Context) (domain.SyncReport, error) {
	start := time.Now()

	products, err := s.catalog.ListAll(ctx)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("error").Inc()
		return domain.SyncReport{}, fmt.Errorf("list catalog: %w", err)
	}

	report := domain.SyncReport{Total: len(products)}
	seen := make(map[int64]struct{}, len(products))

	for _, product := range products {
		seen[product.ID] = struct{}{}

		outcome, err := s.syncProduct(ctx, product)
		if err != nil {
			report.Failures = append(report.Failures, domain.SyncFailure{
				ProductID: product.ID,
				Reason:    err.Error(),
			})
			metrics.SyncProductsTotal.WithLabelValues("failed").Inc()
			s.logger.Warn("product sync failed",
				zap.Int64("product_id", product.ID),
				zap.Error(err))
			continue
		}

		switch outcome {
		case outcomeEmbedded:
			report.Embedded++
			metrics.SyncProductsTotal.WithLabelValues("embedded").Inc()
		case outcomeSkipped:
			report.Skipped++
			metrics.SyncProductsTotal.WithLabelValues("skipped").Inc()
		}
	}

	deleted, err := s.deleteOrphans(ctx, seen)
	if err != nil {
		s.logger.Warn("orphan cleanup failed", zap.Error(err))
	}
	report.Deleted = deleted

	status := "ok"
	if report.Failed() {
		status = "partial"
	}
	metrics.SyncRunsTotal.WithLabelValues(status).Inc()

	s.logger.Info("catalog sync finished",
		zap.Int("total", report.Total),
		zap.Int("embedded", report.Embedded),
		zap.Int("skipped", report.Skipped),
		zap.Int("deleted", report.Deleted),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("elapsed", time.Since(start)))

	return report, nil
}

// SyncOne embeds and stores a single product regardless of its stored hash.
func (s *Service) SyncOne(ctx context.Context, productID int64) (domain.ProductVector, error) {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return domain.ProductVector{}, fmt.Errorf("fetch product %d: %w", productID, err)
	}

	pv, err := s.embedAndStore(ctx, product)
	if err != nil {
		return domain.ProductVector{}, err
	}
	return pv, nil
}

type syncOutcome int

const (
	outcomeEmbedded syncOutcome = iota
	outcomeSkipped
)

func (s *Service) syncProduct(ctx context.Context, product domain.Product) (syncOutcome, error) {
	existing, err := s.repo.Get(ctx, product.ID)
	if err != nil && !errors.Is(err, domain.ErrVectorNotFound) {
		return 0, fmt.Errorf("read record: %w", err)
	}
	if err == nil && existing.SourceHash == product.ContentHash() {
		return outcomeSkipped, nil
	}

	if _, err := s.embedAndStore(ctx, product); err != nil {
		return 0, err
	}
	return outcomeEmbedded, nil
}

func (s *Service) embedAndStore(ctx context.Context, product domain.Product) (domain.ProductVector, error) {
	embResult, err := s.embed.Embed(ctx, product.EmbeddingText())
	if err != nil {
		return domain.ProductVector{}, fmt.Errorf("embed: %w", err)
	}

	pv := domain.ProductVector{
		ProductID:  product.ID,
		Vector:     embResult.Embedding,
		SourceHash: product.ContentHash(),
		Name:       product.Name,
		Category:   product.Category,
		Price:      product.Price,
		SyncedAt:   time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, pv); err != nil {
		return domain.ProductVector{}, fmt.Errorf("store: %w", err)
	}
	return pv, nil
}

func (s *Service) deleteOrphans(ctx context.Context, seen map[int64]struct{}) (int, error) {
	stored, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored ids: %w", err)
	}

	deleted := 0
	for _, id := range stored {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.Warn("orphan delete failed",
				zap.Int64("product_id", id),
				zap.Error(err))
			continue
		}
		deleted++
		metrics.SyncProductsTotal.WithLabelValues("deleted").Inc()
	}
	return deleted, nil
}
