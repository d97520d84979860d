package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedback_dev_v1_202608/internal/api/dto"
	"feedback_dev_v1_202608/internal/task"
)

// ==================== TaskController 后台任务控制器 ====================

// TaskController 后台任务运维接口，仅管理员角色可用
type TaskController struct {
	tasks *task.TaskManager
}

// NewTaskController 创建任务控制器
func NewTaskController(tasks *task.TaskManager) *TaskController {
	return &TaskController{tasks: tasks}
}

// GetStatus 任务状态
// @Summary 后台任务状态
// @Tags Admin (运维)
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/admin/tasks/status [get]
func (c *TaskController) GetStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.tasks.Status())
}

// TriggerSnapshot 手动触发快照（补数用）
// @Summary 手动触发统计快照
// @Description 对指定日期重算快照，同日重跑覆盖旧值
// @Tags Admin (运维)
// @Accept json
// @Produce json
// @Param request body dto.TaskSnapshotReq true "快照日期"
// @Success 202 {object} map[string]string "已触发"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 503 {object} map[string]string "任务未启用"
// @Router /api/admin/tasks/snapshot [post]
func (c *TaskController) TriggerSnapshot(ctx *gin.Context) {
	var req dto.TaskSnapshotReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "参数错误: " + err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Day); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "日期格式应为 YYYY-MM-DD"})
		return
	}

	if err := c.tasks.TriggerSnapshot(req.Day); err != nil {
		if errors.Is(err, task.ErrTaskDisabled) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"message": "快照任务未启用"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "触发快照失败"})
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"message": "快照任务已触发", "day": req.Day})
}

// TriggerLinkCheck 手动触发链接巡检
// @Summary 手动触发评价链接巡检
// @Tags Admin (运维)
// @Produce json
// @Success 202 {object} map[string]string "已触发"
// @Router /api/admin/tasks/linkcheck [post]
func (c *TaskController) TriggerLinkCheck(ctx *gin.Context) {
	c.tasks.TriggerLinkCheck()
	ctx.JSON(http.StatusAccepted, gin.H{"message": "链接巡检已触发"})
}
