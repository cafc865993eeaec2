package dto

import (
	"time"

	"foodwaste_dev_v1_202608/internal/model"
)

// ==================== 响应结构 ====================

// StoreResp 门店信息
type StoreResp struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand"`
	Street       string        `json:"street"`
	ZipCode      string        `json:"zip_code"`
	City         string        `json:"city"`
	Longitude    float64       `json:"longitude"`
	Latitude     float64       `json:"latitude"`
	HasProducts  bool          `json:"has_products"`
	LastSyncedAt *time.Time    `json:"last_synced_at,omitempty"`
	Products     []ProductResp `json:"products,omitempty"`
}

// StoreListResp 门店列表响应
type StoreListResp struct {
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Data     []StoreResp `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ==================== 转换 ====================

// ToStoreResp 门店模型转响应（不带商品）
func ToStoreResp(s *model.Store) StoreResp {
	return StoreResp{
		ID:           s.ID,
		Name:         s.Name,
		Brand:        s.Brand,
		Street:       s.Street,
		ZipCode:      s.ZipCode,
		City:         s.City,
		Longitude:    s.Longitude,
		Latitude:     s.Latitude,
		HasProducts:  s.HasProducts,
		LastSyncedAt: s.LastSyncedAt,
	}
}

// ToStoreDetailResp 门店模型转响应（带商品与分类）
func ToStoreDetailResp(s *model.Store) StoreResp {
	resp := ToStoreResp(s)
	resp.Products = make([]ProductResp, 0, len(s.Products))
	for i := range s.Products {
		resp.Products = append(resp.Products, ToProductResp(&s.Products[i]))
	}
	return resp
}
