package model

import (
	"time"
)

// 库存单位常量（跟随 Salling 清仓接口的 stockUnit 字段）
const (
	StockUnitEach = "each"
	StockUnitKg   = "kg"
)

type Product struct {
	BaseModel

	// --- 归属与自然键 ---
	// 同一门店内 EAN 唯一，(store_id, ean) 为自然键
	StoreID int64  `gorm:"index;uniqueIndex:idx_store_ean;not null"`
	Store   *Store `gorm:"foreignKey:StoreID"`
	Ean     string `gorm:"size:32;uniqueIndex:idx_store_ean;not null"`

	Name string `gorm:"size:255;not null"`

	// --- 价格块 ---
	OriginalPrice   float64 `gorm:"type:decimal(10,2);default:0"`
	NewPrice        float64 `gorm:"type:decimal(10,2);default:0"`
	Discount        float64 `gorm:"type:decimal(10,2);default:0"`
	PercentDiscount float64 `gorm:"type:decimal(5,2);default:0"`

	// --- 库存 ---
	StockQuantity float64 `gorm:"default:0"`
	StockUnit     string  `gorm:"size:10"`

	// --- 有效期 ---
	ValidFrom   *time.Time
	ValidUntil  *time.Time `gorm:"index"`
	LastUpdated *time.Time

	// --- 分类关联（共享引用数据，多对多） ---
	Categories []Category `gorm:"many2many:product_categories;"`
}

func (Product) TableName() string {
	return "products"
}
