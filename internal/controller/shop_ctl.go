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

// ==================== ShopController 店铺控制器 ====================

// ShopController 店铺控制器
type ShopController struct {
	shopSvc     *service.ShopService
	feedbackSvc *service.FeedbackService
}

// NewShopController 创建店铺控制器
func NewShopController(shopSvc *service.ShopService, feedbackSvc *service.FeedbackService) *ShopController {
	return &ShopController{
		shopSvc:     shopSvc,
		feedbackSvc: feedbackSvc,
	}
}

// CreateShop 创建店铺
// @Summary 创建店铺
// @Description 创建店铺并配置评价维度（最多 3 个）、配额、优惠券
// @Tags Shop (店铺管理)
// @Accept json
// @Produce json
// @Param request body dto.ShopCreateReq true "店铺配置"
// @Success 201 {object} dto.ShopInfo
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 500 {object} map[string]interface{} "创建失败"
// @Router /api/shops [post]
func (c *ShopController) CreateShop(ctx *gin.Context) {
	var req dto.ShopCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	info, err := c.shopSvc.CreateShop(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, info)
}

// GetMyShops 获取店铺列表
// @Summary 我的店铺列表
// @Tags Shop (店铺管理)
// @Produce json
// @Success 200 {array} dto.ShopInfo
// @Failure 500 {object} map[string]interface{} "查询失败"
// @Router /api/shops [get]
func (c *ShopController) GetMyShops(ctx *gin.Context) {
	shops, err := c.shopSvc.ListMyShops(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, shops)
}

// GetShop 店铺详情
// @Summary 店铺详情
// @Tags Shop (店铺管理)
// @Produce json
// @Param shopId path int true "店铺ID"
// @Success 200 {object} dto.ShopInfo
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Router /api/shops/{shopId} [get]
func (c *ShopController) GetShop(ctx *gin.Context) {
	shopID, ok := c.shopIDParam(ctx)
	if !ok {
		return
	}

	info, err := c.shopSvc.GetShop(ctx.Request.Context(), shopID, middleware.GetUserID(ctx))
	if err != nil {
		c.writeShopError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, info)
}

// AddParameter 新增评价维度
// @Summary 新增评价维度
// @Tags Shop (店铺管理)
// @Accept json
// @Produce json
// @Param shopId path int true "店铺ID"
// @Param request body dto.AddParameterReq true "维度名"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]interface{} "超过上限或参数错误"
// @Router /api/shops/{shopId}/parameters [post]
func (c *ShopController) AddParameter(ctx *gin.Context) {
	shopID, ok := c.shopIDParam(ctx)
	if !ok {
		return
	}

	var req dto.AddParameterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	err := c.shopSvc.AddParameter(ctx.Request.Context(), shopID, middleware.GetUserID(ctx), req.Label)
	if err != nil {
		c.writeShopError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Parameter added"})
}

// GetShopFeedback 店铺反馈列表
// @Summary 店铺反馈列表
// @Tags Shop (店铺管理)
// @Produce json
// @Param shopId path int true "店铺ID"
// @Success 200 {array} dto.FeedbackItem
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Router /api/shops/{shopId}/feedback [get]
func (c *ShopController) GetShopFeedback(ctx *gin.Context) {
	shopID, ok := c.shopIDParam(ctx)
	if !ok {
		return
	}

	items, err := c.feedbackSvc.ListShopFeedback(ctx.Request.Context(), shopID, middleware.GetUserID(ctx))
	if err != nil {
		c.writeShopError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// UpdateSettings 更新店铺设置
// @Summary 更新店铺设置
// @Description 更新配额、优惠券、评价链接、挂件 Origin 白名单
// @Tags Shop (店铺管理)
// @Accept json
// @Produce json
// @Param shopId path int true "店铺ID"
// @Param request body dto.ShopSettingsUpdateReq true "更新内容"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Router /api/shops/{shopId}/settings [put]
func (c *ShopController) UpdateSettings(ctx *gin.Context) {
	shopID, ok := c.shopIDParam(ctx)
	if !ok {
		return
	}

	var req dto.ShopSettingsUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	err := c.shopSvc.UpdateSettings(ctx.Request.Context(), shopID, middleware.GetUserID(ctx), &req)
	if err != nil {
		c.writeShopError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteShop 删除店铺
// @Summary 删除店铺
// @Description 删除店铺并级联清理反馈记录与评价维度
// @Tags Shop (店铺管理)
// @Produce json
// @Param shopId path int true "店铺ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Router /api/shops/{shopId} [delete]
func (c *ShopController) DeleteShop(ctx *gin.Context) {
	shopID, ok := c.shopIDParam(ctx)
	if !ok {
		return
	}

	err := c.shopSvc.DeleteShop(ctx.Request.Context(), shopID, middleware.GetUserID(ctx))
	if err != nil {
		c.writeShopError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ==================== 私有方法 ====================

func (c *ShopController) shopIDParam(ctx *gin.Context) (int64, bool) {
	shopID, err := strconv.ParseInt(ctx.Param("shopId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的店铺ID",
		})
		return 0, false
	}
	return shopID, true
}

func (c *ShopController) writeShopError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShopAccessDenied):
		ctx.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrShopNotFound):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrMaxParameters), errors.Is(err, service.ErrEmptyParameterLabel):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
	}
}
