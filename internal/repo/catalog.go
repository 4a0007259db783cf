package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	Category string
	// Query is a case-insensitive substring of the product name.
	Query string
	// When ByIDs is set only products in IDs qualify, an empty IDs yields nothing.
	ByIDs bool
	IDs   []uint
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	if f.ByIDs && len(f.IDs) == 0 {
		return []models.Product{}, nil
	}

	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Query != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(f.Query))+"%")
	}
	if f.ByIDs {
		q = q.Where("id IN ?", f.IDs)
	}

	products := make([]models.Product, 0)
	if err := q.Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	return r.ListProducts(ctx, ProductFilter{ByIDs: true, IDs: ids})
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LikeProduct increments likes in the database itself and reads the new value back in the
// same transaction, so concurrent likes never overwrite each other.
func (r *GormRepo) LikeProduct(ctx context.Context, id uint) (int64, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Select("id", "likes").First(&p, id).Error
	})
	if err != nil {
		return 0, err
	}
	return p.Likes, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
