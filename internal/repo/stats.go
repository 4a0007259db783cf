package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

type StatsOrder int

const (
	// BySold orders by total sold, highest first.
	BySold StatsOrder = iota
	// ByName orders alphabetically by product name.
	ByName
)

// SalesStats returns one row per product; products without order details report 0 sold.
func (r *GormRepo) SalesStats(ctx context.Context, order StatsOrder) ([]models.SalesStat, error) {
	q := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.id AS product_id, products.name AS name, products.likes AS likes, " +
			"CAST(COALESCE(SUM(order_details.quantity), 0) AS BIGINT) AS total_sold").
		Joins("LEFT JOIN order_details ON order_details.product_id = products.id").
		Group("products.id, products.name, products.likes")

	switch order {
	case ByName:
		q = q.Order("products.name ASC").Order("products.id ASC")
	default:
		q = q.Order("total_sold DESC").Order("products.id ASC")
	}

	stats := make([]models.SalesStat, 0)
	if err := q.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *GormRepo) LikesRanking(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("likes DESC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
