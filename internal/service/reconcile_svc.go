package service

import (
	"context"
	"log"
	"time"

	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/pkg/salling"
)

// ==================== ProductReconciler 商品对账器 ====================

// ReconcileResult 一次对账的增删改统计
type ReconcileResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	// Skipped 因缺 EAN/名称/价格被丢弃的无效记录数
	Skipped int `json:"skipped"`
}

// ProductReconciler 把清仓快照与门店在库商品做 diff 并落差集
// 必须在调用方的事务内执行（传入事务绑定的仓储），
// 任何持久化错误中止整次运行，由外层回滚
type ProductReconciler struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductReconciler 创建对账器
func NewProductReconciler(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) *ProductReconciler {
	return &ProductReconciler{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Reconcile 对账一个门店
// 成功返回后不变式成立：该门店在库商品的 EAN 集合 == 快照有效记录的 EAN 集合
func (s *ProductReconciler) Reconcile(ctx context.Context, storeID int64, snapshot []salling.OfferRecord) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	// 1. 在库商品按 EAN 索引
	existing, err := s.productRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	existingByEan := make(map[string]*model.Product, len(existing))
	for i := range existing {
		existingByEan[existing[i].Ean] = &existing[i]
	}

	// 2. 过滤无效记录 + 按 EAN 建快照索引
	// 同一快照内 EAN 重复时后出现的记录覆盖先出现的（last write wins）——
	// 这是对 feed 行为的明确取舍，不是实现巧合
	incomingByEan := make(map[string]*salling.OfferRecord, len(snapshot))
	for i := range snapshot {
		rec := &snapshot[i]
		if !isValidOffer(rec) {
			result.Skipped++
			continue
		}
		if _, dup := incomingByEan[rec.Ean]; dup {
			log.Printf("[Reconcile] 门店 %d 快照内 EAN %s 重复，保留后出现的记录", storeID, rec.Ean)
		}
		incomingByEan[rec.Ean] = rec
	}

	// 每次运行一个解析器，保证同事务内分类 read-your-writes
	resolver := NewCategoryResolver(s.categoryRepo)

	// 3. 新增 / 更新
	for ean, rec := range incomingByEan {
		categories, err := s.resolveCategories(ctx, resolver, rec)
		if err != nil {
			return nil, err
		}

		if product, ok := existingByEan[ean]; ok {
			// 原地更新：保持内部 ID 不变
			applyOffer(product, rec)
			if err := s.productRepo.Update(ctx, product); err != nil {
				return nil, err
			}
			if err := s.productRepo.ReplaceCategories(ctx, product, categories); err != nil {
				return nil, err
			}
			result.Updated++
		} else {
			product := &model.Product{StoreID: storeID, Ean: ean}
			applyOffer(product, rec)
			product.Categories = categories
			if err := s.productRepo.Create(ctx, product); err != nil {
				return nil, err
			}
			result.Created++
		}
	}

	// 4. 删除快照里不再出现的商品（先解关联再删行）
	for ean, product := range existingByEan {
		if _, ok := incomingByEan[ean]; ok {
			continue
		}
		if err := s.productRepo.ClearCategories(ctx, product); err != nil {
			return nil, err
		}
		if err := s.productRepo.Delete(ctx, product.ID); err != nil {
			return nil, err
		}
		result.Deleted++
	}

	return result, nil
}

// resolveCategories 解析一条记录的全部分类描述符
// 空路径的描述符丢弃（该商品少一个分类），其他错误向上传播
func (s *ProductReconciler) resolveCategories(ctx context.Context, resolver *CategoryResolver, rec *salling.OfferRecord) ([]model.Category, error) {
	categories := make([]model.Category, 0, len(rec.Categories))
	for _, d := range rec.Categories {
		category, err := resolver.Resolve(ctx, d)
		if err != nil {
			if err == ErrEmptyCategoryPath {
				log.Printf("[Reconcile] EAN %s 的分类路径为空，已丢弃", rec.Ean)
				continue
			}
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

// isValidOffer 记录级校验：EAN、名称、价格块缺一即无效
func isValidOffer(rec *salling.OfferRecord) bool {
	if rec.Ean == "" {
		log.Printf("[Reconcile] 丢弃无 EAN 的记录: %s", rec.Name)
		return false
	}
	if rec.Name == "" {
		log.Printf("[Reconcile] 丢弃无名称的记录, EAN: %s", rec.Ean)
		return false
	}
	if rec.Price == nil {
		log.Printf("[Reconcile] 丢弃无价格的记录, EAN: %s", rec.Ean)
		return false
	}
	return true
}

// applyOffer 把快照记录的字段写入商品行（不触碰 ID 与分类关联）
func applyOffer(product *model.Product, rec *salling.OfferRecord) {
	product.Name = rec.Name

	product.OriginalPrice = rec.Price.OriginalPrice
	product.NewPrice = rec.Price.NewPrice
	product.Discount = rec.Price.Discount
	product.PercentDiscount = rec.Price.PercentDiscount

	if rec.Stock != nil {
		product.StockQuantity = rec.Stock.Quantity
		product.StockUnit = rec.Stock.Unit
	}

	if rec.Timing != nil {
		product.ValidFrom = rec.Timing.StartTime
		product.ValidUntil = rec.Timing.EndTime
	}

	// 优先用 feed 自带的更新时间，缺失时退回本地时间
	if rec.Timing != nil && rec.Timing.LastUpdated != nil {
		product.LastUpdated = rec.Timing.LastUpdated
	} else {
		now := time.Now()
		product.LastUpdated = &now
	}
}
