package service

import (
	"context"
	"errors"
	"strings"

	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/pkg/salling"
)

// ErrEmptyCategoryPath 分类路径为空，描述符被拒绝
// 调用方按"该商品少一个分类"处理，不是致命错误
var ErrEmptyCategoryPath = errors.New("分类路径为空")

// ==================== CategoryResolver 分类解析器 ====================

// CategoryResolver 把清仓记录里的分类描述符解析成共享分类行
// 生命周期为单次对账运行：内部缓存保证同一路径在一次运行（同一事务）内
// 重复解析时读到自己刚写的行，不产生重复
type CategoryResolver struct {
	categoryRepo repository.CategoryRepository
	cache        map[pathKey]*model.Category
}

type pathKey struct {
	da string
	en string
}

// NewCategoryResolver 创建解析器（每次对账运行各建一个）
func NewCategoryResolver(categoryRepo repository.CategoryRepository) *CategoryResolver {
	return &CategoryResolver{
		categoryRepo: categoryRepo,
		cache:        make(map[pathKey]*model.Category),
	}
}

// Resolve 解析描述符
// 按 (pathDa, pathEn) 精确匹配；命中返回已有行（先写者胜，不回写名称）；
// 未命中则创建。路径只做 trim，不做其他归一化
func (r *CategoryResolver) Resolve(ctx context.Context, d salling.CategoryDescriptor) (*model.Category, error) {
	pathDa := strings.TrimSpace(d.PathDa)
	pathEn := strings.TrimSpace(d.PathEn)
	if pathDa == "" || pathEn == "" {
		return nil, ErrEmptyCategoryPath
	}

	key := pathKey{da: pathDa, en: pathEn}
	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}

	nameDa := strings.TrimSpace(d.NameDa)
	nameEn := strings.TrimSpace(d.NameEn)
	// 短名称缺失时取路径最后一段
	if nameDa == "" {
		nameDa = lastPathSegment(pathDa)
	}
	if nameEn == "" {
		nameEn = lastPathSegment(pathEn)
	}

	category, err := r.categoryRepo.FindOrCreate(ctx, &model.Category{
		NameDa: nameDa,
		NameEn: nameEn,
		PathDa: pathDa,
		PathEn: pathEn,
	})
	if err != nil {
		return nil, err
	}

	r.cache[key] = category
	return category, nil
}

func lastPathSegment(path string) string {
	if idx := strings.LastIndex(path, ">"); idx >= 0 {
		return strings.TrimSpace(path[idx+1:])
	}
	return strings.TrimSpace(path)
}
