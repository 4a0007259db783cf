package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type StatsService struct {
	Repo *repo.GormRepo
}

// SalesStats lists every product with its total sold, highest first, for the dashboard.
func (s *StatsService) SalesStats(ctx context.Context) ([]models.SalesStat, error) {
	return s.sales(ctx, repo.BySold)
}

// ExportStats lists every product with likes and total sold ordered by name, for the spreadsheet.
func (s *StatsService) ExportStats(ctx context.Context) ([]models.SalesStat, error) {
	return s.sales(ctx, repo.ByName)
}

func (s *StatsService) sales(ctx context.Context, order repo.StatsOrder) ([]models.SalesStat, error) {
	stats, err := s.Repo.SalesStats(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%w: sales stats: %w", ErrPersistence, err)
	}
	return stats, nil
}

func (s *StatsService) LikesRanking(ctx context.Context) ([]models.Product, error) {
	products, err := s.Repo.LikesRanking(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: likes ranking: %w", ErrPersistence, err)
	}
	return products, nil
}
