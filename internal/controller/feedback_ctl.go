package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/service"
)

// ==================== FeedbackController 反馈控制器 ====================

// FeedbackController 挂件反馈控制器
type FeedbackController struct {
	feedbackSvc *service.FeedbackService
}

// NewFeedbackController 创建反馈控制器
func NewFeedbackController(feedbackSvc *service.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackSvc: feedbackSvc}
}

// WidgetConfig 获取挂件配置
// @Summary 挂件配置
// @Description 挂件嵌入脚本通过公开令牌拉取店铺名与评价维度
// @Tags Feedback (反馈)
// @Produce json
// @Param token path string true "挂件公开令牌"
// @Success 200 {object} dto.WidgetConfigResp
// @Failure 400 {object} map[string]string "无效店铺"
// @Router /api/feedback/widget/{token} [get]
func (c *FeedbackController) WidgetConfig(ctx *gin.Context) {
	resp, err := c.feedbackSvc.WidgetConfig(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid shop"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load widget config"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Submit 挂件提交反馈
// @Summary 提交反馈
// @Description 顾客通过店铺挂件提交评分与评价，返回是否展示评价跳转和优惠券
// @Tags Feedback (反馈)
// @Accept json
// @Produce json
// @Param shopId path int true "店铺ID"
// @Param request body dto.FeedbackSubmitReq true "反馈内容"
// @Success 200 {object} dto.FeedbackSubmitResp
// @Failure 400 {object} map[string]string "无效店铺或参数错误"
// @Failure 429 {object} map[string]string "当日已提交"
// @Failure 500 {object} map[string]string "提交失败"
// @Router /api/feedback/{shopId} [post]
func (c *FeedbackController) Submit(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shopId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid shop"})
		return
	}

	var req dto.FeedbackSubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid feedback payload: " + err.Error()})
		return
	}

	// 店铺级 Origin 白名单
	allowed, err := c.feedbackSvc.AllowedOrigin(ctx.Request.Context(), shopID, ctx.GetHeader("Origin"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit feedback"})
		return
	}
	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"message": "Origin not allowed"})
		return
	}

	resp, err := c.feedbackSvc.Submit(ctx.Request.Context(), shopID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShopNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid shop"})
		case errors.Is(err, service.ErrQuotaExceeded):
			ctx.JSON(http.StatusTooManyRequests, gin.H{
				"message": "You already submitted feedback today. Please try again tomorrow.",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit feedback"})
		}
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
