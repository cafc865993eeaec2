package salling

import (
	"time"
)

// ==================== 对外暴露的领域记录 ====================

// PriceBlock 价格块（单位：丹麦克朗）
type PriceBlock struct {
	OriginalPrice   float64
	NewPrice        float64
	Discount        float64
	PercentDiscount float64
}

// StockBlock 库存块
type StockBlock struct {
	Quantity float64
	Unit     string // each / kg
}

// TimeBlock 有效期块
type TimeBlock struct {
	StartTime   *time.Time
	EndTime     *time.Time
	LastUpdated *time.Time
}

// CategoryDescriptor 分类描述符（双语短名 + 双语完整路径）
type CategoryDescriptor struct {
	NameDa string
	NameEn string
	PathDa string
	PathEn string
}

// OfferRecord 清仓快照中的一条商品记录
// Price 为 nil 表示接口缺失价格块，由对账层校验后丢弃
type OfferRecord struct {
	Ean        string
	Name       string
	Price      *PriceBlock
	Stock      *StockBlock
	Timing     *TimeBlock
	Categories []CategoryDescriptor
}

// StoreRecord 门店目录中的一条门店记录
type StoreRecord struct {
	SallingStoreID string
	Name           string
	Brand          string
	Street         string
	ZipCode        string
	City           string
	Longitude      float64
	Latitude       float64
}

// ==================== Salling API 响应结构 ====================

// clearanceResp food-waste 接口响应
type clearanceResp struct {
	Clearances []clearanceNode `json:"clearances"`
}

type clearanceNode struct {
	Offer   *offerNode   `json:"offer"`
	Product *productNode `json:"product"`
}

type offerNode struct {
	OriginalPrice   *float64 `json:"originalPrice"`
	NewPrice        *float64 `json:"newPrice"`
	Discount        *float64 `json:"discount"`
	PercentDiscount *float64 `json:"percentDiscount"`
	Stock           float64  `json:"stock"`
	StockUnit       string   `json:"stockUnit"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	LastUpdate      string   `json:"lastUpdate"`
}

type productNode struct {
	Description string `json:"description"`
	Ean         string `json:"ean"`
	Categories  *struct {
		Da string `json:"da"`
		En string `json:"en"`
	} `json:"categories"`
}

// storeNode stores 接口的单条门店
type storeNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Address *struct {
		Street string `json:"street"`
		Zip    string `json:"zip"`
		City   string `json:"city"`
	} `json:"address"`
	// [经度, 纬度]
	Coordinates []float64 `json:"coordinates"`
}
