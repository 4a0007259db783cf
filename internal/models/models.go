package models

import (
	"time"
)

type Product struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name          string `gorm:"size:100;not null"         json:"name"`
	Category      string `gorm:"size:50;index;not null"    json:"category"`
	ImageFilename string `gorm:"size:200;not null"         json:"image_filename"`
	Price         int64  `gorm:"not null;check:price>=0"   json:"price"`
	Likes         int64  `gorm:"not null;default:0"        json:"likes"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"size:50;unique;not null"  json:"username"`
	PasswordHash string `gorm:"size:128;not null"        json:"-"`
}

type Order struct {
	ID        uint          `gorm:"primaryKey;autoIncrement"                       json:"id"`
	CreatedAt time.Time     `gorm:"not null"                                       json:"created_at"`
	Details   []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

type OrderDetail struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   uint     `gorm:"index;not null"              json:"order_id"`
	ProductID uint     `gorm:"index;not null"              json:"product_id"`
	Quantity  int      `gorm:"not null;check:quantity>0"   json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
}

// SalesStat is one row of the per-product aggregation over order details.
type SalesStat struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Likes     int64  `json:"likes"`
	TotalSold int64  `json:"total_sold"`
}
