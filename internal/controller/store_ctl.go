package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodwaste_dev_v1_202608/internal/api/dto"
	"foodwaste_dev_v1_202608/internal/repository"
	"foodwaste_dev_v1_202608/internal/service"
)

type StoreController struct {
	storeService *service.StoreService
}

func NewStoreController(storeService *service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

// ==================== 查询接口 ====================

// ListStores 门店列表
// @Summary 门店列表（不含商品）
// @Tags Store
// @Param brand query string false "品牌筛选 NETTO/BILKA/FØTEX"
// @Param zip query string false "邮编筛选"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} dto.StoreListResp
// @Router /api/stores [get]
func (ctrl *StoreController) ListStores(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	stores, total, err := ctrl.storeService.ListStores(c.Request.Context(), repository.StoreFilter{
		Brand:    c.Query("brand"),
		ZipCode:  c.Query("zip"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	respList := make([]dto.StoreResp, 0, len(stores))
	for i := range stores {
		respList = append(respList, dto.ToStoreResp(&stores[i]))
	}

	c.JSON(200, dto.StoreListResp{
		Code:     0,
		Message:  "success",
		Data:     respList,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetStore 门店详情
// 读路径先做按需新鲜度检查：数据过期则同步拉一次 feed 再返回；
// 同步失败不阻塞请求，降级返回现有（可能过期）数据
// @Summary 门店详情（含清仓商品）
// @Tags Store
// @Param id path int true "门店ID"
// @Success 200 {object} dto.StoreResp
// @Router /api/stores/{id} [get]
func (ctrl *StoreController) GetStore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的门店 ID"})
		return
	}

	ctx := c.Request.Context()

	if err := ctrl.storeService.EnsureFresh(ctx, id); err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "门店不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	store, err := ctrl.storeService.GetStore(ctx, id)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"code": 0, "message": "success", "data": dto.ToStoreDetailResp(store)})
}

// GetStoresByZip 按邮编查门店
// @Summary 按邮编查门店
// @Tags Store
// @Param zip path string true "邮编"
// @Success 200 {object} dto.StoreListResp
// @Router /api/stores/zip/{zip} [get]
func (ctrl *StoreController) GetStoresByZip(c *gin.Context) {
	zip := c.Param("zip")
	if zip == "" {
		c.JSON(400, gin.H{"code": 400, "message": "无效的邮编"})
		return
	}

	stores, err := ctrl.storeService.ListStoresByZip(c.Request.Context(), zip)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	respList := make([]dto.StoreResp, 0, len(stores))
	for i := range stores {
		respList = append(respList, dto.ToStoreResp(&stores[i]))
	}

	c.JSON(200, dto.StoreListResp{
		Code:    0,
		Message: "success",
		Data:    respList,
		Total:   int64(len(respList)),
	})
}
