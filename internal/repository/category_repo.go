package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodwaste_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CategoryRepository 分类仓储接口
// 分类是全局共享引用数据：只增不改，核心逻辑不删
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetByPath(ctx context.Context, pathDa, pathEn string) (*model.Category, error)
	FindOrCreate(ctx context.Context, category *model.Category) (*model.Category, error)
	ListAll(ctx context.Context) ([]model.Category, error)

	// DeleteOrphans 清理没有任何商品引用的孤儿分类
	// 可选的维护操作，核心同步流程不调用
	DeleteOrphans(ctx context.Context) (int64, error)

	// 事务
	WithTx(tx *gorm.DB) CategoryRepository
}

// ==================== 仓储实现 ====================

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) GetByPath(ctx context.Context, pathDa, pathEn string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("path_da = ? AND path_en = ?", pathDa, pathEn).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindOrCreate 按 (path_da, path_en) 查找，不存在则创建
// 两个门店的同步并发解析同一条新路径时，依赖 idx_category_path 唯一索引 +
// ON CONFLICT DO NOTHING 保证只落一行，输家回读赢家的行（先写者胜，不覆盖名称）
func (r *categoryRepo) FindOrCreate(ctx context.Context, category *model.Category) (*model.Category, error) {
	existing, err := r.GetByPath(ctx, category.PathDa, category.PathEn)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path_da"}, {Name: "path_en"}},
			DoNothing: true,
		}).
		Create(category)
	if result.Error != nil {
		return nil, result.Error
	}

	// 冲突时没有插入行，回读已存在的那一行
	if result.RowsAffected == 0 {
		return r.GetByPath(ctx, category.PathDa, category.PathEn)
	}
	return category, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Order("path_da ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id NOT IN (?)",
			r.db.Table("product_categories").Select("category_id"),
		).
		Delete(&model.Category{})
	return result.RowsAffected, result.Error
}

func (r *categoryRepo) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepo{db: tx}
}
