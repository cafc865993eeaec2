package model

import (
	"strings"
	"time"
)

// 门店品牌常量（Salling 集团旗下三个零售品牌）
const (
	BrandNetto  = "NETTO"
	BrandBilka  = "BILKA"
	BrandFoetex = "FØTEX"
)

// BrandFromFeed 将 Salling API 返回的品牌字符串归一化为内部品牌常量
// API 侧拼写不稳定（bilka togo / føtex food / døgnnetto 等），未知品牌返回空串
func BrandFromFeed(raw string) string {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("Ø", "OE", "Æ", "AE", "Å", "AA").Replace(normalized)

	switch normalized {
	case "BILKA", "BILKA TOGO", "BILKA TO GO":
		return BrandBilka
	case "FOETEX", "FOTEX", "FOETEX FOOD":
		return BrandFoetex
	case "NETTO", "DOEGNNETTO", "DOGNNETTO":
		return BrandNetto
	default:
		return ""
	}
}

type Store struct {
	BaseModel

	// --- 核心身份 ---
	// SallingStoreID 对应 Salling 平台的门店 ID（自然键），区分内部主键 ID
	SallingStoreID string `gorm:"size:64;uniqueIndex;not null"`
	Name           string `gorm:"size:255;not null"`
	Brand          string `gorm:"size:20;index"`

	// --- 地址信息 ---
	Street    string  `gorm:"size:255"`
	ZipCode   string  `gorm:"size:10;index"`
	City      string  `gorm:"size:100"`
	Longitude float64 `gorm:"default:0"`
	Latitude  float64 `gorm:"default:0"`

	// --- 同步状态 ---
	// HasProducts / LastSyncedAt 只由同步编排器修改
	HasProducts  bool       `gorm:"default:false;index"`
	LastSyncedAt *time.Time

	// --- 关联关系 ---
	Products []Product `gorm:"foreignKey:StoreID"`
}

// NeedsRefresh 新鲜度判定（纯函数，无副作用）
// 以下任一条件成立即视为过期：
//   - 从未落库过商品
//   - 从未成功同步过
//   - 距上次成功同步超过 maxAge
func (s *Store) NeedsRefresh(now time.Time, maxAge time.Duration) bool {
	if !s.HasProducts {
		return true
	}
	if s.LastSyncedAt == nil {
		return true
	}
	return now.Sub(*s.LastSyncedAt) > maxAge
}

func (Store) TableName() string {
	return "stores"
}
