package controller

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"foodwaste_dev_v1_202608/internal/api/dto"
	"foodwaste_dev_v1_202608/internal/middleware"
	"foodwaste_dev_v1_202608/internal/model"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/internal/service"
)

// 同一门店手动同步的最短间隔
const manualSyncCooldown = 5 * time.Minute

type SyncController struct {
	syncService *service.SyncService
	syncLogRepo repository.SyncLogRepository
	cooldown    *middleware.SyncCooldown
}

func NewSyncController(syncService *service.SyncService, syncLogRepo repository.SyncLogRepository, cooldown *middleware.SyncCooldown) *SyncController {
	return &SyncController{
		syncService: syncService,
		syncLogRepo: syncLogRepo,
		cooldown:    cooldown,
	}
}

// ==================== 手动触发 ====================

// TriggerSync 手动触发门店同步
// @Summary 立即同步一个门店的清仓商品
// @Tags Sync
// @Param id path int true "门店ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/stores/{id}/sync [post]
func (ctrl *SyncController) TriggerSync(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的门店 ID"})
		return
	}

	// 冷却限流
	key := fmt.Sprintf("store:%d:sync", storeID)
	check := ctrl.cooldown.Check(key, manualSyncCooldown)
	if !check.Allowed {
		c.JSON(429, gin.H{
			"code":        429,
			"message":     "同步过于频繁",
			"retry_after": int(check.RetryAfter.Seconds()),
		})
		return
	}

	outcome, result, err := ctrl.syncService.SyncStore(c.Request.Context(), storeID, model.SyncTriggerManual)
	switch outcome {
	case service.SyncSuccess:
		c.JSON(200, gin.H{"code": 0, "message": "success", "data": result})
	case service.SyncNotFound:
		c.JSON(404, gin.H{"code": 404, "message": "门店不存在"})
	case service.SyncFeedError:
		c.JSON(502, gin.H{"code": 502, "message": "拉取清仓数据失败: " + err.Error()})
	default:
		c.JSON(500, gin.H{"code": 500, "message": "同步失败: " + err.Error()})
	}
}

// ==================== 日志查询 ====================

// ListSyncLogs 查询最近的同步日志
// @Summary 最近的同步运行记录
// @Tags Sync
// @Param store_id query int false "门店ID筛选"
// @Param limit query int false "条数" default(50)
// @Success 200 {object} dto.SyncLogListResp
// @Router /api/sync/logs [get]
func (ctrl *SyncController) ListSyncLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var logs []model.SyncLog
	var err error

	if storeIDStr := c.Query("store_id"); storeIDStr != "" {
		storeID, parseErr := strconv.ParseInt(storeIDStr, 10, 64)
		if parseErr != nil || storeID <= 0 {
			c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
			return
		}
		logs, err = ctrl.syncLogRepo.ListByStore(c.Request.Context(), storeID, limit)
	} else {
		logs, err = ctrl.syncLogRepo.ListRecent(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	respList := make([]dto.SyncLogResp, 0, len(logs))
	for i := range logs {
		respList = append(respList, dto.ToSyncLogResp(&logs[i]))
	}

	c.JSON(200, dto.SyncLogListResp{Code: 0, Message: "success", Data: respList})
}
