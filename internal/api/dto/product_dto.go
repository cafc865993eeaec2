package dto

import (
	"time"

	"foodwaste_dev_v1_202608/internal/model"
)

// ProductResp 商品信息
type ProductResp struct {
	ID              int64          `json:"id"`
	Ean             string         `json:"ean"`
	Name            string         `json:"name"`
	OriginalPrice   float64        `json:"original_price"`
	NewPrice        float64        `json:"new_price"`
	Discount        float64        `json:"discount"`
	PercentDiscount float64        `json:"percent_discount"`
	StockQuantity   float64        `json:"stock_quantity"`
	StockUnit       string         `json:"stock_unit"`
	ValidFrom       *time.Time     `json:"valid_from,omitempty"`
	ValidUntil      *time.Time     `json:"valid_until,omitempty"`
	Categories      []CategoryResp `json:"categories"`
}

// CategoryResp 分类信息
type CategoryResp struct {
	NameDa string `json:"name_da"`
	NameEn string `json:"name_en"`
	PathDa string `json:"path_da"`
	PathEn string `json:"path_en"`
}

// ProductListResp 商品列表响应
type ProductListResp struct {
	Code     int           `json:"code"`
	Message  string        `json:"message"`
	Data     []ProductResp `json:"data"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ToProductResp 商品模型转响应
func ToProductResp(p *model.Product) ProductResp {
	resp := ProductResp{
		ID:              p.ID,
		Ean:             p.Ean,
		Name:            p.Name,
		OriginalPrice:   p.OriginalPrice,
		NewPrice:        p.NewPrice,
		Discount:        p.Discount,
		PercentDiscount: p.PercentDiscount,
		StockQuantity:   p.StockQuantity,
		StockUnit:       p.StockUnit,
		ValidFrom:       p.ValidFrom,
		ValidUntil:      p.ValidUntil,
		Categories:      make([]CategoryResp, 0, len(p.Categories)),
	}
	for i := range p.Categories {
		c := &p.Categories[i]
		resp.Categories = append(resp.Categories, CategoryResp{
			NameDa: c.NameDa,
			NameEn: c.NameEn,
			PathDa: c.PathDa,
			PathEn: c.PathEn,
		})
	}
	return resp
}
