package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/middleware"
	"feedback_dev_v1_202608/internal/service"
)

// ==================== DashboardController 看板控制器 ====================

// DashboardController 店主看板控制器
type DashboardController struct {
	analyticsSvc *service.AnalyticsService
}

// NewDashboardController 创建看板控制器
func NewDashboardController(analyticsSvc *service.AnalyticsService) *DashboardController {
	return &DashboardController{analyticsSvc: analyticsSvc}
}

// GetShopStats 单店看板统计
// @Summary 单店看板统计
// @Tags Dashboard (看板)
// @Produce json
// @Param shopId path int true "店铺ID"
// @Success 200 {object} dto.ShopStatsResp
// @Failure 403 {object} map[string]string "无权访问"
// @Failure 500 {object} map[string]string "统计失败"
// @Router /api/dashboard/shop/{shopId} [get]
func (c *DashboardController) GetShopStats(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shopId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "无效的店铺ID"})
		return
	}

	resp, err := c.analyticsSvc.GetShopStats(ctx.Request.Context(), shopID, middleware.GetUserID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrShopAccessDenied) {
			ctx.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetBatchStats 批量看板统计
// @Summary 批量看板统计
// @Description 返回请求列表中属于当前店主的店铺统计，键为店铺ID
// @Tags Dashboard (看板)
// @Accept json
// @Produce json
// @Param request body dto.BatchStatsReq true "店铺ID列表"
// @Success 200 {object} map[string]dto.ShopStatsResp
// @Failure 500 {object} map[string]string "统计失败"
// @Router /api/dashboard/batch [post]
func (c *DashboardController) GetBatchStats(ctx *gin.Context) {
	var req dto.BatchStatsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "参数错误: " + err.Error()})
		return
	}

	stats, err := c.analyticsSvc.GetBatchStats(ctx.Request.Context(), middleware.GetUserID(ctx), req.ShopIDs)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Batch failed"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
