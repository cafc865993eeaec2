package task

import (
	"log"

	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：门店目录刷新、每日清仓商品扫描
type TaskManager struct {
	catalogTask *StoreCatalogTask
	offerTask   *OfferSyncTask
}

// TaskManagerConfig 任务配置
type TaskManagerConfig struct {
	// 目录刷新
	CatalogEnabled  bool
	CatalogCronSpec string

	// 清仓扫描
	OfferEnabled     bool
	OfferCronSpec    string
	OfferConcurrency int
}

// DefaultTaskConfig 默认配置
func DefaultTaskConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		CatalogEnabled:   true,
		OfferEnabled:     true,
		OfferConcurrency: 3,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(
	storeRepo repository.StoreRepository,
	storeService *service.StoreService,
	syncService *service.SyncService,
	cfg *TaskManagerConfig,
) *TaskManager {
	if cfg == nil {
		cfg = DefaultTaskConfig()
	}

	tm := &TaskManager{}

	if cfg.CatalogEnabled {
		tm.catalogTask = NewStoreCatalogTask(storeService)
		tm.catalogTask.SetCronSpec(cfg.CatalogCronSpec)
	}

	if cfg.OfferEnabled {
		tm.offerTask = NewOfferSyncTask(storeRepo, syncService)
		tm.offerTask.SetCronSpec(cfg.OfferCronSpec)
		if cfg.OfferConcurrency > 0 {
			tm.offerTask.SetConcurrency(cfg.OfferConcurrency, tm.offerTask.perStoreTimeout, tm.offerTask.sleepTime)
		}
	}

	return tm
}

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.catalogTask != nil {
		tm.catalogTask.Start()
	}
	if tm.offerTask != nil {
		tm.offerTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.catalogTask != nil {
		tm.catalogTask.Stop()
	}
	if tm.offerTask != nil {
		tm.offerTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发 ====================

// TriggerOfferSweep 立即扫描所有活跃门店
func (tm *TaskManager) TriggerOfferSweep() {
	if tm.offerTask != nil {
		tm.offerTask.SyncAllNow()
	}
}

// TriggerCatalogRefresh 立即刷新门店目录
func (tm *TaskManager) TriggerCatalogRefresh() {
	if tm.catalogTask != nil {
		tm.catalogTask.RefreshNow()
	}
}
