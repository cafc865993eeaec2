package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/pkg/salling"
)

// ErrStoreNotFound 本地不存在该门店
var ErrStoreNotFound = errors.New("门店不存在")

// ==================== StoreService 门店服务 ====================

// StoreService 门店目录维护 + 读路径查询
type StoreService struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	syncService *SyncService
	feed        salling.FeedClient
}

// NewStoreService 创建门店服务
func NewStoreService(
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	syncService *SyncService,
	feed salling.FeedClient,
) *StoreService {
	return &StoreService{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		syncService: syncService,
		feed:        feed,
	}
}

// ==================== 门店目录同步 ====================

// SyncAllStores 从平台刷新本地门店目录
// 新门店创建；已有门店更新名称/地址，但保留 HasProducts / LastSyncedAt ——
// 目录刷新不代表商品同步过
func (s *StoreService) SyncAllStores(ctx context.Context) (created, updated int, err error) {
	records, err := s.feed.FetchStores(ctx)
	if err != nil {
		return 0, 0, err
	}

	for i := range records {
		rec := &records[i]

		existing, err := s.storeRepo.GetBySallingID(ctx, rec.SallingStoreID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return created, updated, err
			}
			store := storeFromRecord(rec)
			if err := s.storeRepo.Create(ctx, store); err != nil {
				return created, updated, err
			}
			created++
			continue
		}

		applyStoreRecord(existing, rec)
		if err := s.storeRepo.Update(ctx, existing); err != nil {
			return created, updated, err
		}
		updated++
	}

	log.Printf("[Store] 门店目录刷新完成: 共 %d 条, 新建 %d, 更新 %d", len(records), created, updated)
	return created, updated, nil
}

// ==================== 读路径 ====================

// EnsureFresh 读路径的按需新鲜度检查
// 过期则同步拉取一次；同步失败只打日志，读请求降级为返回现有（可能过期）数据
func (s *StoreService) EnsureFresh(ctx context.Context, storeID int64) error {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}

	if !s.syncService.NeedsRefresh(store) {
		return nil
	}

	outcome, _, err := s.syncService.SyncStore(ctx, storeID, model.SyncTriggerRead)
	if outcome != SyncSuccess {
		// 降级：照常返回旧数据，失败只是运维关注点
		log.Printf("[Store] 门店 %d 读时同步失败 (%s): %v", storeID, outcome, err)
	}
	return nil
}

// GetStore 门店详情（含商品与分类）
func (s *StoreService) GetStore(ctx context.Context, storeID int64) (*model.Store, error) {
	store, err := s.storeRepo.GetByIDWithProducts(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// ListStores 门店列表
func (s *StoreService) ListStores(ctx context.Context, filter repository.StoreFilter) ([]model.Store, int64, error) {
	return s.storeRepo.List(ctx, filter)
}

// ListStoresByZip 按邮编查门店
func (s *StoreService) ListStoresByZip(ctx context.Context, zipCode string) ([]model.Store, error) {
	return s.storeRepo.ListByZip(ctx, zipCode)
}

// GetStoreProducts 门店商品分页列表
func (s *StoreService) GetStoreProducts(ctx context.Context, storeID int64, page, pageSize int) ([]model.Product, int64, error) {
	return s.productRepo.ListByStorePaged(ctx, storeID, page, pageSize)
}

// ==================== 转换 ====================

func storeFromRecord(rec *salling.StoreRecord) *model.Store {
	return &model.Store{
		SallingStoreID: rec.SallingStoreID,
		Name:           rec.Name,
		Brand:          model.BrandFromFeed(rec.Brand),
		Street:         rec.Street,
		ZipCode:        rec.ZipCode,
		City:           rec.City,
		Longitude:      rec.Longitude,
		Latitude:       rec.Latitude,
	}
}

// applyStoreRecord 更新目录字段，不动同步状态字段
func applyStoreRecord(store *model.Store, rec *salling.StoreRecord) {
	store.Name = rec.Name
	store.Brand = model.BrandFromFeed(rec.Brand)
	store.Street = rec.Street
	store.ZipCode = rec.ZipCode
	store.City = rec.City
	store.Longitude = rec.Longitude
	store.Latitude = rec.Latitude
}
