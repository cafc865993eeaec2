package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"foodwaste_dev_v1_202608/internal/api/dto"
	"foodwaste_dev_v1_202608/internal/service"
)

type ProductController struct {
	storeService *service.StoreService
}

func NewProductController(storeService *service.StoreService) *ProductController {
	return &ProductController{storeService: storeService}
}

// GetStoreProducts 门店商品分页列表
// @Summary 获取指定门店的清仓商品列表
// @Tags Product
// @Param id path int true "门店ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResp
// @Router /api/stores/{id}/products [get]
func (ctrl *ProductController) GetStoreProducts(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的门店 ID"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := ctrl.storeService.GetStoreProducts(c.Request.Context(), storeID, page, pageSize)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	respList := make([]dto.ProductResp, 0, len(products))
	for i := range products {
		respList = append(respList, dto.ToProductResp(&products[i]))
	}

	c.JSON(200, dto.ProductListResp{
		Code:     0,
		Message:  "success",
		Data:     respList,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
