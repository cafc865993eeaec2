package repository

import (
	"context"

	"gorm.io/gorm"

	"foodwaste_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SyncLogRepository 同步日志仓储接口
type SyncLogRepository interface {
	Create(ctx context.Context, syncLog *model.SyncLog) error
	ListRecent(ctx context.Context, limit int) ([]model.SyncLog, error)
	ListByStore(ctx context.Context, storeID int64, limit int) ([]model.SyncLog, error)
}

// ==================== 仓储实现 ====================

type syncLogRepo struct {
	db *gorm.DB
}

// NewSyncLogRepository 创建同步日志仓储
func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepo{db: db}
}

func (r *syncLogRepo) Create(ctx context.Context, syncLog *model.SyncLog) error {
	return r.db.WithContext(ctx).Create(syncLog).Error
}

func (r *syncLogRepo) ListRecent(ctx context.Context, limit int) ([]model.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.SyncLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *syncLogRepo) ListByStore(ctx context.Context, storeID int64, limit int) ([]model.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.SyncLog
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
