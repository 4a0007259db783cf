package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// NameSearcher resolves a name query to product ids through an external index.
type NameSearcher interface {
	MatchName(ctx context.Context, q string) ([]uint, error)
	IndexProducts(ctx context.Context, products []models.Product) error
}

type CatalogService struct {
	Repo      *repo.GormRepo
	Search    NameSearcher
	Publisher EventPublisher
}

// ListProducts filters by exact category and by case-insensitive name substring; both compose.
func (s *CatalogService) ListProducts(ctx context.Context, category, q string) ([]models.Product, error) {
	f := repo.ProductFilter{Category: category, Query: q}

	if q != "" && s.Search != nil {
		ids, err := s.Search.MatchName(ctx, q)
		if err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to sql", "error", err)
		} else {
			f.Query = ""
			f.ByIDs = true
			f.IDs = ids
		}
	}

	products, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %w", ErrPersistence, err)
	}
	return products, nil
}

// Like increments the like count by exactly one and returns the new count.
func (s *CatalogService) Like(ctx context.Context, productID uint) (int64, error) {
	likes, err := s.Repo.LikeProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return 0, fmt.Errorf("%w: like product: %w", ErrPersistence, err)
	}

	metrics.ProductLikes.Inc()
	publish(ctx, s.Publisher, TopicProductEvents, fmt.Sprint(productID), map[string]any{
		"type":      "product_liked",
		"productID": productID,
		"likes":     likes,
	})
	return likes, nil
}

func (s *CatalogService) ProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load products: %w", ErrPersistence, err)
	}
	return products, nil
}

// SyncSearchIndex pushes the whole catalog into the search index, if one is configured.
func (s *CatalogService) SyncSearchIndex(ctx context.Context) error {
	if s.Search == nil {
		return nil
	}
	products, err := s.Repo.ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return fmt.Errorf("%w: list products: %w", ErrPersistence, err)
	}
	return s.Search.IndexProducts(ctx, products)
}
