package cfsync

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
	"github.com/tle-mentors/student-progress-backend/pkg/lifecycle"
)

// Handler 暴露同步配置与手动触发的HTTP接口
// 配置变更后立即重启调度器，新表达式当场生效
type Handler struct {
	db        *gorm.DB
	scheduler *Scheduler
	orch      *Orchestrator
	runner    *Runner
}

// NewHandler 创建同步模块的HTTP处理器
func NewHandler(scheduler *Scheduler, orch *Orchestrator, runner *Runner) *Handler {
	return &Handler{db: database.DB, scheduler: scheduler, orch: orch, runner: runner}
}

// GetSettings 处理获取全局同步配置的请求
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := GetOrCreateSettings(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取同步配置"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	CronSchedule   *string `json:"cronSchedule"`
	FrequencyUnit  *string `json:"cronFrequencyUnit"`
	FrequencyValue *int    `json:"cronFrequencyValue"`
}

// UpdateSettings 处理修改全局同步配置的请求
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	scheduleChanged := req.CronSchedule != nil && *req.CronSchedule != h.scheduler.CurrentSpec()

	settings, err := UpdateSettings(h.db, SettingsUpdate{
		CronSchedule:   req.CronSchedule,
		FrequencyUnit:  req.FrequencyUnit,
		FrequencyValue: req.FrequencyValue,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCronSchedule) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的cron表达式"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法保存同步配置"})
		return
	}

	if scheduleChanged {
		if err := h.scheduler.Restart(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "配置已保存，但调度器重启失败"})
			return
		}
	}
	c.JSON(http.StatusOK, settings)
}

// TriggerFullSync 处理手动触发一轮全量同步的请求
// 同步在后台执行，请求立即返回，不等待整轮结束
func (h *Handler) TriggerFullSync(c *gin.Context) {
	orch := h.orch
	ok := h.runner.Submit("manual-full-sync", func(handle *lifecycle.Handle) {
		if _, err := orch.RunFullSync(handle.Ctx()); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				fmt.Println("手动触发时已有全量同步在执行，本次跳过。")
				return
			}
			fmt.Printf("警告: 手动触发的全量同步失败: %v\n", err)
		}
	})
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "后台任务队列已满，请稍后再试"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "全量同步已提交执行"})
}
