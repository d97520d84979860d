package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"feedback_dev_v1_202608/internal/middleware"
	"feedback_dev_v1_202608/internal/service"
)

// ==================== AnalyticsController 统计控制器 ====================

// AnalyticsController 统计控制器
type AnalyticsController struct {
	analyticsSvc *service.AnalyticsService
}

// NewAnalyticsController 创建统计控制器
func NewAnalyticsController(analyticsSvc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsSvc: analyticsSvc}
}

// GetCouponStats 店铺优惠券统计
// @Summary 店铺优惠券统计
// @Description 店铺维度的评分分布、日趋势、高分数、发券设备数与转化率
// @Tags Analytics (统计)
// @Produce json
// @Param shopId path int true "店铺ID"
// @Success 200 {object} dto.ShopAnalyticsResp
// @Failure 400 {object} map[string]string "无效店铺"
// @Failure 403 {object} map[string]string "无权访问"
// @Failure 500 {object} map[string]string "统计失败"
// @Router /api/analytics/coupon/{shopId} [get]
func (c *AnalyticsController) GetCouponStats(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shopId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "无效的店铺ID"})
		return
	}

	resp, err := c.analyticsSvc.GetShopAnalytics(ctx.Request.Context(), shopID, middleware.GetUserID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid shop"})
			return
		}
		if errors.Is(err, service.ErrShopAccessDenied) {
			ctx.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load coupon stats"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetGlobalAnalytics 全局统计
// @Summary 全局统计
// @Description 全部店铺合并的总量、评分分布与日趋势
// @Tags Analytics (统计)
// @Produce json
// @Success 200 {object} dto.GlobalAnalyticsResp
// @Failure 500 {object} map[string]string "统计失败"
// @Router /api/analytics/global [get]
func (c *AnalyticsController) GetGlobalAnalytics(ctx *gin.Context) {
	resp, err := c.analyticsSvc.GetGlobalAnalytics(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Global analytics failed"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
