package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/pkg/salling"
)

// ==================== 同步结果 ====================

// SyncOutcome 一次 SyncStore 的结果分类
type SyncOutcome string

const (
	SyncSuccess          SyncOutcome = "success"
	SyncNotFound         SyncOutcome = "not_found"         // 门店不存在
	SyncFeedError        SyncOutcome = "feed_error"        // 拉取/解析远端快照失败，未做任何落库
	SyncPersistenceError SyncOutcome = "persistence_error" // 落库失败，整体已回滚
)

// ==================== 配置 ====================

// SyncConfig 同步策略配置
type SyncConfig struct {
	// MaxAge 商品数据的最大可用年龄，超过即视为过期（新鲜度阈值）
	MaxAge time.Duration
	// FetchTimeout 单次 feed 拉取的超时上限
	FetchTimeout time.Duration
}

// DefaultSyncConfig 默认配置
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		MaxAge:       24 * time.Hour,
		FetchTimeout: 30 * time.Second,
	}
}

// ==================== SyncService 同步编排器 ====================

// SyncService 单个门店一次完整同步的编排器：
// 拉取快照 → 商品对账 → 更新门店新鲜度标记，三步在一个事务内完成。
// 读路径和定时扫描都只走这一个入口，不存在第二份对账逻辑
type SyncService struct {
	uow         *repository.SyncUnitOfWork
	syncLogRepo repository.SyncLogRepository
	feed        salling.FeedClient
	cfg         SyncConfig

	// 同店互斥：同一门店的两次对账不允许并发执行，
	// 否则两边各自基于过期的在库快照算 diff，会丢更新或复活已删行。
	// 不同门店的运行互不阻塞
	storeLocks sync.Map // storeID -> *sync.Mutex
}

// NewSyncService 创建同步编排器
func NewSyncService(
	uow *repository.SyncUnitOfWork,
	syncLogRepo repository.SyncLogRepository,
	feed salling.FeedClient,
	cfg SyncConfig,
) *SyncService {
	return &SyncService{
		uow:         uow,
		syncLogRepo: syncLogRepo,
		feed:        feed,
		cfg:         cfg,
	}
}

// NeedsRefresh 新鲜度判定（阈值来自配置）
func (s *SyncService) NeedsRefresh(store *model.Store) bool {
	return store.NeedsRefresh(time.Now(), s.cfg.MaxAge)
}

// MaxAge 当前配置的新鲜度阈值
func (s *SyncService) MaxAge() time.Duration {
	return s.cfg.MaxAge
}

// SyncStore 同步一个门店
// trigger 标记触发来源（read/cron/manual），只用于日志
// feedError / persistenceError 时门店的 HasProducts / LastSyncedAt 保持原值，
// 下次触发时新鲜度判定会再次要求同步
func (s *SyncService) SyncStore(ctx context.Context, storeID int64, trigger string) (SyncOutcome, *ReconcileResult, error) {
	lock := s.lockFor(storeID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	runID := uuid.NewString()

	outcome, result, err := s.syncStoreLocked(ctx, storeID)
	s.writeLog(storeID, trigger, runID, outcome, result, started, err)

	return outcome, result, err
}

func (s *SyncService) syncStoreLocked(ctx context.Context, storeID int64) (SyncOutcome, *ReconcileResult, error) {
	// 1. 门店必须存在
	store, err := s.uow.Stores.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SyncNotFound, nil, err
		}
		return SyncPersistenceError, nil, err
	}

	// 2. 拉取远端快照（限时，超时按 feed 失败处理）
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	snapshot, err := s.feed.FetchClearances(fetchCtx, store.SallingStoreID)
	if err != nil {
		return SyncFeedError, nil, err
	}

	// 3. 对账 + 新鲜度标记，单事务
	var result *ReconcileResult
	err = s.uow.Transaction(ctx, func(uow *repository.SyncUnitOfWork) error {
		reconciler := NewProductReconciler(uow.Products, uow.Categories)

		r, err := reconciler.Reconcile(ctx, store.ID, snapshot)
		if err != nil {
			return err
		}
		result = r

		now := time.Now()
		return uow.Stores.UpdateFields(ctx, store.ID, map[string]interface{}{
			"has_products":   true,
			"last_synced_at": &now,
		})
	})
	if err != nil {
		return SyncPersistenceError, nil, err
	}

	return SyncSuccess, result, nil
}

// lockFor 取该门店的互斥锁（懒创建）
func (s *SyncService) lockFor(storeID int64) *sync.Mutex {
	actual, _ := s.storeLocks.LoadOrStore(storeID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// writeLog 落一条同步日志（成功失败都记）
// 日志写失败只打日志，不影响同步结果
func (s *SyncService) writeLog(storeID int64, trigger, runID string, outcome SyncOutcome, result *ReconcileResult, started time.Time, runErr error) {
	entry := &model.SyncLog{
		RunID:      runID,
		StoreID:    storeID,
		Trigger:    trigger,
		Outcome:    string(outcome),
		DurationMs: time.Since(started).Milliseconds(),
	}
	if result != nil {
		entry.Created = result.Created
		entry.Updated = result.Updated
		entry.Deleted = result.Deleted
		entry.Skipped = result.Skipped
		if detail, err := json.Marshal(result); err == nil {
			entry.Detail = detail
		}
	}
	if runErr != nil {
		entry.ErrorMsg = runErr.Error()
	}

	// 同步日志独立于业务事务，回滚不该抹掉失败记录
	if err := s.syncLogRepo.Create(context.Background(), entry); err != nil {
		log.Printf("[Sync] 写同步日志失败 (store=%d run=%s): %v", storeID, runID, err)
	}
}
