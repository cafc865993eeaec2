package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodwaste_dev_v1_202608/internal/controller"
	"foodwaste_dev_v1_202608/internal/middleware"
	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/internal/router"
	"foodwaste_dev_v1_202608/internal/service"
	"foodwaste_dev_v1_202608/internal/task"
	"foodwaste_dev_v1_202608/pkg/database"
	"foodwaste_dev_v1_202608/pkg/salling"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Store, deps.Controllers.Product, deps.Controllers.Sync)

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Tasks       *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	Store    repository.StoreRepository
	Product  repository.ProductRepository
	Category repository.CategoryRepository
	SyncLog  repository.SyncLogRepository
	SyncUow  *repository.SyncUnitOfWork
}

// Services 服务集合
type Services struct {
	Sync  *service.SyncService
	Store *service.StoreService
}

// Controllers 控制器集合
type Controllers struct {
	Store   *controller.StoreController
	Product *controller.ProductController
	Sync    *controller.SyncController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DB_DSN",
		"host=localhost user=postgres password=postgres dbname=foodwaste port=5432 sslmode=disable TimeZone=Europe/Copenhagen")
	return database.InitDB(dsn,
		&model.Store{},
		&model.Product{},
		&model.Category{},
		&model.SyncLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Store:    repository.NewStoreRepository(db),
		Product:  repository.NewProductRepository(db),
		Category: repository.NewCategoryRepository(db),
		SyncLog:  repository.NewSyncLogRepository(db),
		SyncUow:  repository.NewSyncUnitOfWork(db),
	}

	// -------- 外部平台客户端 --------
	apiKey := getEnv("SALLING_API_KEY", "")
	if apiKey == "" {
		log.Println("警告: SALLING_API_KEY 未配置，拉取远端数据会失败")
	}
	feed := salling.NewClient(apiKey, getEnv("SALLING_BASE_URL", ""))

	// -------- 业务服务 --------
	syncCfg := service.DefaultSyncConfig()
	if hours := getEnvInt("SYNC_MAX_AGE_HOURS", 0); hours > 0 {
		syncCfg.MaxAge = time.Duration(hours) * time.Hour
	}
	if secs := getEnvInt("SYNC_FETCH_TIMEOUT_SECONDS", 0); secs > 0 {
		syncCfg.FetchTimeout = time.Duration(secs) * time.Second
	}

	services := &Services{}
	services.Sync = service.NewSyncService(repos.SyncUow, repos.SyncLog, feed, syncCfg)
	services.Store = service.NewStoreService(repos.Store, repos.Product, services.Sync, feed)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Store:   controller.NewStoreController(services.Store),
		Product: controller.NewProductController(services.Store),
		Sync:    controller.NewSyncController(services.Sync, repos.SyncLog, middleware.NewSyncCooldown()),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	cfg := task.DefaultTaskConfig()
	cfg.CatalogCronSpec = getEnv("CATALOG_CRON_SPEC", "")
	cfg.OfferCronSpec = getEnv("SYNC_CRON_SPEC", "")
	if n := getEnvInt("SYNC_CONCURRENCY", 0); n > 0 {
		cfg.OfferConcurrency = n
	}
	if getEnv("TASKS_ENABLED", "true") == "false" {
		cfg.CatalogEnabled = false
		cfg.OfferEnabled = false
	}

	deps.Tasks = task.NewTaskManager(deps.Repos.Store, deps.Services.Store, deps.Services.Sync, cfg)
	deps.Tasks.Start()
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停后台任务，再关 HTTP
	if deps.Tasks != nil {
		deps.Tasks.Stop()
	}

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
