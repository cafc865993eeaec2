package router

import (
	"github.com/gin-gonic/gin"

	"foodwaste_dev_v1_202608/internal/controller"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	storeCtl *controller.StoreController,
	productCtl *controller.ProductController,
	syncCtl *controller.SyncController) {
	// API 路由组
	api := r.Group("/api")
	{
		// store 门店查询
		stores := api.Group("/stores")
		{
			// GET /api/stores
			stores.GET("", storeCtl.ListStores)
			// GET /api/stores/zip/:zip
			stores.GET("/zip/:zip", storeCtl.GetStoresByZip)
			// GET /api/stores/:id （读取时自动补刷新）
			stores.GET("/:id", storeCtl.GetStore)
			// GET /api/stores/:id/products
			stores.GET("/:id/products", productCtl.GetStoreProducts)
			// POST /api/stores/:id/sync
			stores.POST("/:id/sync", syncCtl.TriggerSync)
		}
		// sync 同步运维
		sync := api.Group("/sync")
		{
			// GET /api/sync/logs
			sync.GET("/logs", syncCtl.ListSyncLogs)
		}
	}
}
