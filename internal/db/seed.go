package db

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
)

func SampleProducts() []models.Product {
	return []models.Product{
		{Name: "パステルカラーTシャツ", Category: "mens", ImageFilename: "fashion_shirt1_white.png", Price: 3500},
		{Name: "ボーダー柄ロングTシャツ", Category: "mens", ImageFilename: "mens_jacket.jpg", Price: 4200},
		{Name: "フリル付きブラウス", Category: "ladies", ImageFilename: "ladies_blouse.jpg", Price: 5800},
		{Name: "チェック柄プリーツスカート", Category: "ladies", ImageFilename: "fashion_onepiece.png", Price: 6500},
		{Name: "リラックスフィットシャツ", Category: "mens", ImageFilename: "mens_shirt.png", Price: 4800},
		{Name: "花柄ワンピース", Category: "ladies", ImageFilename: "ladies_onepiece.png", Price: 8800},
	}
}

// Seed inserts the sample catalog when no product exists and a bootstrap admin when no user exists.
func Seed(ctx context.Context, db *gorm.DB, adminUsername, adminPassword string) error {
	tx := db.WithContext(ctx)

	var products int64
	if err := tx.Model(&models.Product{}).Count(&products).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if products == 0 {
		sample := SampleProducts()
		if err := tx.Create(&sample).Error; err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		slog.Info("seed_products", "count", len(sample))
	}

	var users int64
	if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if users == 0 {
		pwHash, err := hash.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin := models.User{Username: adminUsername, PasswordHash: pwHash}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		slog.Info("seed_admin", "username", adminUsername)
	}
	return nil
}
