package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/internal/service"
)

// ==================== OfferSyncTask 清仓商品同步任务 ====================

// OfferSyncTask 每日定时扫描：对所有已落库过商品的门店逐个重新对账
// 单店失败只记日志，不影响本轮其余门店
type OfferSyncTask struct {
	storeRepo   repository.StoreRepository
	syncService *service.SyncService
	cron        *cron.Cron

	// cron 表达式（带秒字段），默认每日凌晨 3 点
	cronSpec string

	// 并发控制
	concurrencyLimit int
	perStoreTimeout  time.Duration
	sleepTime        time.Duration
}

// NewOfferSyncTask 创建清仓同步任务
func NewOfferSyncTask(storeRepo repository.StoreRepository, syncService *service.SyncService) *OfferSyncTask {
	return &OfferSyncTask{
		storeRepo:        storeRepo,
		syncService:      syncService,
		cron:             cron.New(cron.WithSeconds()),
		cronSpec:         "0 0 3 * * *",
		concurrencyLimit: 3,
		perStoreTimeout:  2 * time.Minute,
		sleepTime:        200 * time.Millisecond,
	}
}

// SetCronSpec 覆盖扫描时间
func (t *OfferSyncTask) SetCronSpec(spec string) {
	if spec != "" {
		t.cronSpec = spec
	}
}

// SetConcurrency 设置并发参数
func (t *OfferSyncTask) SetConcurrency(limit int, perStoreTimeout, sleep time.Duration) {
	t.concurrencyLimit = limit
	t.perStoreTimeout = perStoreTimeout
	t.sleepTime = sleep
}

// Start 启动定时任务
func (t *OfferSyncTask) Start() {
	_, err := t.cron.AddFunc(t.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		t.syncAllStores(ctx)
	})
	if err != nil {
		log.Printf("[OfferSyncTask] cron 表达式无效 (%s): %v", t.cronSpec, err)
		return
	}

	t.cron.Start()
	log.Printf("[OfferSyncTask] 已启动 (spec: %s)", t.cronSpec)
}

// Stop 停止任务
func (t *OfferSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[OfferSyncTask] 已停止")
}

// syncAllStores 扫描所有活跃门店
func (t *OfferSyncTask) syncAllStores(ctx context.Context) {
	log.Println("[OfferSyncTask] 开始每日清仓商品同步...")

	stores, err := t.storeRepo.ListWithProducts(ctx)
	if err != nil {
		log.Printf("[OfferSyncTask] 获取门店列表失败: %v", err)
		return
	}
	if len(stores) == 0 {
		log.Println("[OfferSyncTask] 无活跃门店需要同步")
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	var (
		successCount int
		failCount    int
		totalCreated int
		totalUpdated int
		totalDeleted int
		mu           sync.Mutex
	)

	log.Printf("[OfferSyncTask] 开始处理 %d 个门店", len(stores))

	for i := range stores {
		store := stores[i]
		select {
		case <-ctx.Done():
			log.Println("[OfferSyncTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(storeID int64, storeName string) {
			defer wg.Done()
			defer func() { <-sem }()

			// 单店限时，避免一个慢门店拖垮整轮扫描
			storeCtx, cancel := context.WithTimeout(ctx, t.perStoreTimeout)
			defer cancel()

			outcome, result, err := t.syncService.SyncStore(storeCtx, storeID, model.SyncTriggerCron)

			mu.Lock()
			defer mu.Unlock()

			if outcome != service.SyncSuccess {
				log.Printf("[OfferSyncTask] 门店 %s(%d) 同步失败 (%s): %v", storeName, storeID, outcome, err)
				failCount++
				return
			}

			successCount++
			if result != nil {
				totalCreated += result.Created
				totalUpdated += result.Updated
				totalDeleted += result.Deleted
				if result.Created > 0 || result.Deleted > 0 {
					log.Printf("[OfferSyncTask] 门店 %s: 新增 %d, 更新 %d, 删除 %d",
						storeName, result.Created, result.Updated, result.Deleted)
				}
			}
		}(store.ID, store.Name)
	}

	wg.Wait()
	log.Printf("[OfferSyncTask] 每日同步完成: 门店成功 %d, 失败 %d, 新增 %d, 更新 %d, 删除 %d",
		successCount, failCount, totalCreated, totalUpdated, totalDeleted)
}

// ==================== 手动触发 ====================

// SyncAllNow 立即扫描所有活跃门店
func (t *OfferSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		t.syncAllStores(ctx)
	}()
}
