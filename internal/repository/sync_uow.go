package repository

import (
	"context"

	"gorm.io/gorm"
)

// ==================== SyncUnitOfWork 同步工作单元 ====================

// SyncUnitOfWork 一次对账运行涉及的三张表（门店/商品/分类）共用一个事务
// 事务内任何一步失败整体回滚，不留半套 diff
type SyncUnitOfWork struct {
	db         *gorm.DB
	Stores     StoreRepository
	Products   ProductRepository
	Categories CategoryRepository
}

// NewSyncUnitOfWork 创建工作单元
func NewSyncUnitOfWork(db *gorm.DB) *SyncUnitOfWork {
	return &SyncUnitOfWork{
		db:         db,
		Stores:     NewStoreRepository(db),
		Products:   NewProductRepository(db),
		Categories: NewCategoryRepository(db),
	}
}

// Transaction 执行事务
func (u *SyncUnitOfWork) Transaction(ctx context.Context, fn func(uow *SyncUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &SyncUnitOfWork{
			db:         tx,
			Stores:     NewStoreRepository(tx),
			Products:   NewProductRepository(tx),
			Categories: NewCategoryRepository(tx),
		}
		return fn(txUow)
	})
}
