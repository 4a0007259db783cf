package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type OrderLine struct {
	ProductID uint
	Quantity  int
}

// CreateOrder writes the order and all of its detail rows in one transaction; on any error
// nothing is committed.
func (r *GormRepo) CreateOrder(ctx context.Context, lines []OrderLine) (*models.Order, error) {
	var order models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order = models.Order{}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		details := make([]models.OrderDetail, 0, len(lines))
		for _, l := range lines {
			details = append(details, models.OrderDetail{
				OrderID:   order.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
			})
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}

		order.Details = details
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders pages through orders newest first, with details and their products loaded.
func (r *GormRepo) ListOrders(ctx context.Context, offset, limit int) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	q := r.DB.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Details.Product").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
