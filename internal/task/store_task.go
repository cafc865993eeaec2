package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"foodwaste_dev_v1_202608/internal/service"
)

// ==================== StoreCatalogTask 门店目录刷新任务 ====================

// StoreCatalogTask 门店目录刷新：启动时跑一次，之后每日凌晨 2 点刷新
// 只维护目录（名称/地址/品牌），不触发商品同步
type StoreCatalogTask struct {
	storeService *service.StoreService
	cron         *cron.Cron
	cronSpec     string
}

// NewStoreCatalogTask 创建目录刷新任务
func NewStoreCatalogTask(storeService *service.StoreService) *StoreCatalogTask {
	return &StoreCatalogTask{
		storeService: storeService,
		cron:         cron.New(cron.WithSeconds()),
		cronSpec:     "0 0 2 * * *",
	}
}

// SetCronSpec 覆盖刷新时间
func (t *StoreCatalogTask) SetCronSpec(spec string) {
	if spec != "" {
		t.cronSpec = spec
	}
}

// Start 启动任务
func (t *StoreCatalogTask) Start() {
	// 首次刷新（异步，不阻塞启动）
	go t.refresh()

	_, err := t.cron.AddFunc(t.cronSpec, t.refresh)
	if err != nil {
		log.Printf("[StoreCatalogTask] cron 表达式无效 (%s): %v", t.cronSpec, err)
		return
	}

	t.cron.Start()
	log.Printf("[StoreCatalogTask] 已启动 (spec: %s)", t.cronSpec)
}

// Stop 停止任务
func (t *StoreCatalogTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[StoreCatalogTask] 已停止")
}

// RefreshNow 立即刷新目录
func (t *StoreCatalogTask) RefreshNow() {
	go t.refresh()
}

func (t *StoreCatalogTask) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, _, err := t.storeService.SyncAllStores(ctx); err != nil {
		log.Printf("[StoreCatalogTask] 目录刷新失败: %v", err)
	}
}
