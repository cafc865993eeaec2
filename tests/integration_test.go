package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodwaste_dev_v1_202608/internal/controller"
	"foodwaste_dev_v1_202608/internal/middleware"
	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/internal/router"
	"foodwaste_dev_v1_202608/internal/service"
	"foodwaste_dev_v1_202608/pkg/salling"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 假 feed ====================

type stubFeed struct {
	mu        sync.Mutex
	snapshots map[string][]salling.OfferRecord
	err       error
}

func (f *stubFeed) FetchClearances(ctx context.Context, sallingStoreID string) ([]salling.OfferRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots[sallingStoreID], nil
}

func (f *stubFeed) FetchStores(ctx context.Context) ([]salling.StoreRecord, error) {
	return nil, nil
}

func offer(ean, name string, newPrice, percent float64) salling.OfferRecord {
	return salling.OfferRecord{
		Ean:  ean,
		Name: name,
		Price: &salling.PriceBlock{
			OriginalPrice:   newPrice * 2,
			NewPrice:        newPrice,
			Discount:        newPrice,
			PercentDiscount: percent,
		},
		Stock: &salling.StockBlock{Quantity: 1, Unit: "each"},
		Categories: []salling.CategoryDescriptor{
			{NameDa: "Mejeri", NameEn: "Dairy", PathDa: "Mejeri", PathEn: "Dairy"},
		},
	}
}

// ==================== 组装 ====================

type suite struct {
	DB     *gorm.DB
	Feed   *stubFeed
	Router *gin.Engine
}

func newSuite(t *testing.T) *suite {
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

	feed := &stubFeed{snapshots: make(map[string][]salling.OfferRecord)}

	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	syncSvc := service.NewSyncService(
		repository.NewSyncUnitOfWork(db),
		syncLogRepo,
		feed,
		service.DefaultSyncConfig(),
	)
	storeSvc := service.NewStoreService(storeRepo, productRepo, syncSvc, feed)

	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r,
		controller.NewStoreController(storeSvc),
		controller.NewProductController(storeSvc),
		controller.NewSyncController(syncSvc, syncLogRepo, middleware.NewSyncCooldown()),
	)

	return &suite{DB: db, Feed: feed, Router: r}
}

func (s *suite) request(method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req, _ := http.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

// ==================== 读路径 ====================

func TestIntegration_ReadPath(t *testing.T) {
	s := newSuite(t)

	store := &model.Store{SallingStoreID: "read-1", Name: "Netto Østerport", Brand: model.BrandNetto, ZipCode: "2100"}
	s.DB.Create(store)
	s.Feed.snapshots["read-1"] = []salling.OfferRecord{
		offer("100", "Mælk", 5.00, 50),
		offer("200", "Smør", 12.00, 40),
	}

	t.Run("首次读取触发同步", func(t *testing.T) {
		w, body := s.request("GET", fmt.Sprintf("/api/stores/%d", store.ID))
		assert.Equal(t, 200, w.Code)

		data := body["data"].(map[string]interface{})
		products := data["products"].([]interface{})
		assert.Len(t, products, 2, "读路径应已拉取并落库商品")

		var after model.Store
		s.DB.First(&after, store.ID)
		assert.True(t, after.HasProducts)
		assert.NotNil(t, after.LastSyncedAt)
	})

	t.Run("新鲜数据不再请求feed", func(t *testing.T) {
		// feed 挂掉也能读，因为数据还新鲜
		s.Feed.mu.Lock()
		s.Feed.err = salling.ErrRateLimited
		s.Feed.mu.Unlock()

		w, body := s.request("GET", fmt.Sprintf("/api/stores/%d", store.ID))
		assert.Equal(t, 200, w.Code)
		data := body["data"].(map[string]interface{})
		assert.Len(t, data["products"].([]interface{}), 2)
	})

	t.Run("过期数据降级返回旧值", func(t *testing.T) {
		// 同步时间推回 48 小时并保持 feed 故障
		stale := time.Now().Add(-48 * time.Hour)
		s.DB.Model(&model.Store{}).Where("id = ?", store.ID).Update("last_synced_at", &stale)

		w, body := s.request("GET", fmt.Sprintf("/api/stores/%d", store.ID))
		assert.Equal(t, 200, w.Code, "feed 故障读请求应降级而不是 5xx")
		data := body["data"].(map[string]interface{})
		assert.Len(t, data["products"].([]interface{}), 2, "降级时返回旧数据")
	})

	t.Run("未知门店404", func(t *testing.T) {
		w, _ := s.request("GET", "/api/stores/99999")
		assert.Equal(t, 404, w.Code)
	})
}

// ==================== 商品与门店列表 ====================

func TestIntegration_Listings(t *testing.T) {
	s := newSuite(t)

	store := &model.Store{SallingStoreID: "list-1", Name: "Bilka Hundige", Brand: model.BrandBilka, ZipCode: "2670"}
	s.DB.Create(store)
	s.Feed.snapshots["list-1"] = []salling.OfferRecord{
		offer("100", "Mælk", 5.00, 30),
		offer("200", "Smør", 12.00, 70),
		offer("300", "Ost", 20.00, 50),
	}

	// 先通过手动同步落库
	w, _ := s.request("POST", fmt.Sprintf("/api/stores/%d/sync", store.ID))
	assert.Equal(t, 200, w.Code)

	t.Run("商品分页按折扣排序", func(t *testing.T) {
		w, body := s.request("GET", fmt.Sprintf("/api/stores/%d/products?page=1&page_size=2", store.ID))
		assert.Equal(t, 200, w.Code)
		assert.EqualValues(t, 3, body["total"])

		products := body["data"].([]interface{})
		assert.Len(t, products, 2)
		first := products[0].(map[string]interface{})
		assert.EqualValues(t, 70, first["percent_discount"], "折扣力度最大的排第一")
	})

	t.Run("门店列表品牌过滤", func(t *testing.T) {
		s.DB.Create(&model.Store{SallingStoreID: "n-1", Name: "Netto Greve", Brand: model.BrandNetto, ZipCode: "2670"})

		_, body := s.request("GET", "/api/stores?brand=BILKA")
		assert.EqualValues(t, 1, body["total"])
	})

	t.Run("邮编查询", func(t *testing.T) {
		w, body := s.request("GET", "/api/stores/zip/2670")
		assert.Equal(t, 200, w.Code)
		assert.Len(t, body["data"].([]interface{}), 2)
	})
}

// ==================== 手动同步 ====================

func TestIntegration_ManualSync(t *testing.T) {
	s := newSuite(t)

	store := &model.Store{SallingStoreID: "manual-1", Name: "Føtex Frederiksberg", Brand: model.BrandFoetex}
	s.DB.Create(store)
	s.Feed.snapshots["manual-1"] = []salling.OfferRecord{offer("100", "Mælk", 5.00, 50)}

	t.Run("触发同步并落日志", func(t *testing.T) {
		w, body := s.request("POST", fmt.Sprintf("/api/stores/%d/sync", store.ID))
		assert.Equal(t, 200, w.Code)

		data := body["data"].(map[string]interface{})
		assert.EqualValues(t, 1, data["created"])

		_, logsBody := s.request("GET", fmt.Sprintf("/api/sync/logs?store_id=%d", store.ID))
		logs := logsBody["data"].([]interface{})
		assert.Len(t, logs, 1)
		entry := logs[0].(map[string]interface{})
		assert.Equal(t, "success", entry["outcome"])
		assert.Equal(t, "manual", entry["trigger"])
	})

	t.Run("冷却期内重复触发429", func(t *testing.T) {
		w, body := s.request("POST", fmt.Sprintf("/api/stores/%d/sync", store.ID))
		assert.Equal(t, 429, w.Code)
		assert.NotNil(t, body["retry_after"])
	})

	t.Run("未知门店404", func(t *testing.T) {
		w, _ := s.request("POST", "/api/stores/99999/sync")
		assert.Equal(t, 404, w.Code)
	})
}
