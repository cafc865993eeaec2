package repository

import (
	"context"

	"gorm.io/gorm"

	"foodwaste_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// StoreRepository 门店仓储接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	GetByIDWithProducts(ctx context.Context, id int64) (*model.Store, error)
	GetBySallingID(ctx context.Context, sallingStoreID string) (*model.Store, error)
	Update(ctx context.Context, store *model.Store) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	List(ctx context.Context, filter StoreFilter) ([]model.Store, int64, error)
	ListWithProducts(ctx context.Context) ([]model.Store, error)
	ListByZip(ctx context.Context, zipCode string) ([]model.Store, error)

	// 事务
	WithTx(tx *gorm.DB) StoreRepository
	Transaction(ctx context.Context, fn func(txRepo StoreRepository) error) error
}

// ==================== 过滤条件 ====================

// StoreFilter 门店过滤条件
type StoreFilter struct {
	Brand       string
	ZipCode     string
	HasProducts *bool
	Page        int
	PageSize    int
}

// ==================== 仓储实现 ====================

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓储
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetByIDWithProducts(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Categories").
		First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetBySallingID(ctx context.Context, sallingStoreID string) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).
		Where("salling_store_id = ?", sallingStoreID).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) Update(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

func (r *storeRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *storeRepo) List(ctx context.Context, filter StoreFilter) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Store{})

	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.ZipCode != "" {
		query = query.Where("zip_code = ?", filter.ZipCode)
	}
	if filter.HasProducts != nil {
		query = query.Where("has_products = ?", *filter.HasProducts)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("name ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&stores).Error

	return stores, total, err
}

// ListWithProducts 每日扫描用：所有已落库过商品的门店
func (r *storeRepo) ListWithProducts(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).
		Where("has_products = ?", true).
		Find(&stores).Error
	return stores, err
}

func (r *storeRepo) ListByZip(ctx context.Context, zipCode string) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).
		Where("zip_code = ?", zipCode).
		Order("name ASC").
		Find(&stores).Error
	return stores, err
}

func (r *storeRepo) WithTx(tx *gorm.DB) StoreRepository {
	return &storeRepo{db: tx}
}

func (r *storeRepo) Transaction(ctx context.Context, fn func(txRepo StoreRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
