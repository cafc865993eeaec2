package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/pkg/salling"
)

// ==================== 假 feed 实现 ====================

// fakeFeed 可编程的清仓数据源
type fakeFeed struct {
	mu        sync.Mutex
	snapshots map[string][]salling.OfferRecord
	stores    []salling.StoreRecord
	err       error
	delay     time.Duration

	fetchCalls int32
	// inFlight / maxInFlight 用于验证同店互斥
	inFlight    int32
	maxInFlight int32
}

func (f *fakeFeed) FetchClearances(ctx context.Context, sallingStoreID string) ([]salling.OfferRecord, error) {
	atomic.AddInt32(&f.fetchCalls, 1)

	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, cur) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots[sallingStoreID], nil
}

func (f *fakeFeed) FetchStores(ctx context.Context) ([]salling.StoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.stores, nil
}

func (f *fakeFeed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// ==================== 测试辅助 ====================

func setupSyncTest(t *testing.T) (*gorm.DB, *SyncService, *fakeFeed, *model.Store) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(&model.Store{}, &model.Product{}, &model.Category{}, &model.SyncLog{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	store := &model.Store{SallingStoreID: "sync-store", Name: "Netto Vesterbro", Brand: model.BrandNetto}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("创建门店失败: %v", err)
	}

	feed := &fakeFeed{snapshots: make(map[string][]salling.OfferRecord)}
	svc := NewSyncService(
		repository.NewSyncUnitOfWork(db),
		repository.NewSyncLogRepository(db),
		feed,
		DefaultSyncConfig(),
	)
	return db, svc, feed, store
}

// ==================== 单元测试 ====================

func TestSyncStore_Success(t *testing.T) {
	db, svc, feed, store := setupSyncTest(t)
	feed.snapshots["sync-store"] = []salling.OfferRecord{
		testOffer("100", "Mælk", 5.00),
		testOffer("200", "Smør", 12.00),
	}

	outcome, result, err := svc.SyncStore(context.Background(), store.ID, model.SyncTriggerManual)
	if err != nil {
		t.Fatalf("SyncStore() error = %v", err)
	}
	if outcome != SyncSuccess {
		t.Fatalf("outcome = %s, want success", outcome)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}

	// 成功后新鲜度标记必须置位
	var after model.Store
	db.First(&after, store.ID)
	if !after.HasProducts || after.LastSyncedAt == nil {
		t.Errorf("新鲜度标记未置位: has_products=%v last_synced_at=%v", after.HasProducts, after.LastSyncedAt)
	}

	// 日志落了一条成功记录
	var logs []model.SyncLog
	db.Find(&logs)
	if len(logs) != 1 || logs[0].Outcome != string(SyncSuccess) || logs[0].Trigger != model.SyncTriggerManual {
		t.Errorf("同步日志不符: %+v", logs)
	}
	if logs[0].Created != 2 {
		t.Errorf("日志统计 created = %d, want 2", logs[0].Created)
	}
}

func TestSyncStore_NotFound(t *testing.T) {
	_, svc, feed, _ := setupSyncTest(t)

	outcome, _, err := svc.SyncStore(context.Background(), 9999, model.SyncTriggerManual)
	if outcome != SyncNotFound {
		t.Errorf("outcome = %s, want not_found", outcome)
	}
	if err == nil {
		t.Error("不存在的门店应返回错误")
	}
	if n := atomic.LoadInt32(&feed.fetchCalls); n != 0 {
		t.Errorf("门店不存在时不应请求 feed, 请求了 %d 次", n)
	}
}

// feed 失败：不落任何商品，新鲜度标记保持原值
func TestSyncStore_FeedErrorPreservesMarkers(t *testing.T) {
	db, svc, feed, store := setupSyncTest(t)

	// 先成功一次
	feed.snapshots["sync-store"] = []salling.OfferRecord{testOffer("100", "Mælk", 5.00)}
	if outcome, _, _ := svc.SyncStore(context.Background(), store.ID, model.SyncTriggerCron); outcome != SyncSuccess {
		t.Fatal("预置同步应成功")
	}
	var before model.Store
	db.First(&before, store.ID)

	// 再让 feed 挂掉
	feed.setErr(salling.ErrRateLimited)
	outcome, _, err := svc.SyncStore(context.Background(), store.ID, model.SyncTriggerCron)
	if outcome != SyncFeedError {
		t.Errorf("outcome = %s, want feed_error", outcome)
	}
	if !errors.Is(err, salling.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}

	// 旧数据与新鲜度标记原样保留
	var after model.Store
	db.First(&after, store.ID)
	if !after.HasProducts || after.LastSyncedAt == nil || !after.LastSyncedAt.Equal(*before.LastSyncedAt) {
		t.Error("feed 失败不应改动新鲜度标记")
	}
	var count int64
	db.Model(&model.Product{}).Where("store_id = ?", store.ID).Count(&count)
	if count != 1 {
		t.Errorf("feed 失败不应改动在库商品, count = %d", count)
	}

	// 失败也要落日志
	var failLogs int64
	db.Model(&model.SyncLog{}).Where("outcome = ?", string(SyncFeedError)).Count(&failLogs)
	if failLogs != 1 {
		t.Errorf("失败日志数 = %d, want 1", failLogs)
	}
}

// 首次同步把 has_products=false 的门店转成已落库状态
func TestSyncStore_FirstSync(t *testing.T) {
	db, svc, feed, store := setupSyncTest(t)
	feed.snapshots["sync-store"] = nil // 空快照也算成功同步

	outcome, result, err := svc.SyncStore(context.Background(), store.ID, model.SyncTriggerRead)
	if err != nil {
		t.Fatalf("SyncStore() error = %v", err)
	}
	if outcome != SyncSuccess || result.Created != 0 {
		t.Errorf("outcome=%s created=%d, want success/0", outcome, result.Created)
	}

	var after model.Store
	db.First(&after, store.ID)
	if !after.HasProducts {
		t.Error("空快照的成功同步也应置位 has_products")
	}
}

// 同店并发：两次运行必须串行
func TestSyncStore_PerStoreMutex(t *testing.T) {
	_, svc, feed, store := setupSyncTest(t)
	feed.snapshots["sync-store"] = []salling.OfferRecord{testOffer("100", "Mælk", 5.00)}
	feed.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.SyncStore(context.Background(), store.ID, model.SyncTriggerManual)
		}()
	}
	wg.Wait()

	if max := atomic.LoadInt32(&feed.maxInFlight); max > 1 {
		t.Errorf("同店同步并发度 = %d, want 1", max)
	}
}

// 新鲜度判定走配置的阈值
func TestSyncService_NeedsRefresh(t *testing.T) {
	_, svc, _, _ := setupSyncTest(t)

	past := time.Now().Add(-2 * time.Hour)
	fresh := &model.Store{HasProducts: true, LastSyncedAt: &past}
	if svc.NeedsRefresh(fresh) {
		t.Error("2 小时前同步过的门店不应判定为过期（默认阈值 24h）")
	}

	stale := &model.Store{HasProducts: false}
	if !svc.NeedsRefresh(stale) {
		t.Error("从未落库的门店应判定为过期")
	}
}
