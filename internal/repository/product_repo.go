package repository

import (
	"context"

	"gorm.io/gorm"

	"foodwaste_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByStoreAndEan(ctx context.Context, storeID int64, ean string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int64) error
	ListByStore(ctx context.Context, storeID int64) ([]model.Product, error)
	ListByStorePaged(ctx context.Context, storeID int64, page, pageSize int) ([]model.Product, int64, error)
	CountByStore(ctx context.Context, storeID int64) (int64, error)

	// 分类关联维护
	ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error
	ClearCategories(ctx context.Context, product *model.Product) error

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByStoreAndEan(ctx context.Context, storeID int64, ean string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("store_id = ? AND ean = ?", storeID, ean).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	// Save 不触碰 many2many 关联，分类另走 ReplaceCategories
	return r.db.WithContext(ctx).Omit("Categories").Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

// ListByStore 对账用：一个门店的全部在库商品（带分类）
func (r *productRepo) ListByStore(ctx context.Context, storeID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("store_id = ?", storeID).
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListByStorePaged(ctx context.Context, storeID int64, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("store_id = ?", storeID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Preload("Categories").
		Order("percent_discount DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) CountByStore(ctx context.Context, storeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error {
	return r.db.WithContext(ctx).
		Model(product).
		Association("Categories").
		Replace(&categories)
}

func (r *productRepo) ClearCategories(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Association("Categories").
		Clear()
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
