package cfsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler 按全局同步配置中的cron表达式定时触发全量同步
// 配置更新后调用Restart重新装载表达式；任何时刻最多只有一个活动的定时器
type Scheduler struct {
	mu   sync.Mutex
	db   *gorm.DB
	orch *Orchestrator

	runner *cron.Cron
	spec   string
}

// NewScheduler 创建一个Scheduler，此时尚未启动定时器
func NewScheduler(db *gorm.DB, orch *Orchestrator) *Scheduler {
	return &Scheduler{db: db, orch: orch}
}

// Start 读取当前配置并装载定时器
// 可重复调用：已有定时器会先被停掉，绝不会产生两个并存的定时器
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := GetOrCreateSettings(s.db)
	if err != nil {
		return err
	}

	s.stopLocked()

	// cron表达式按UTC解释，与数据源的时间戳保持同一时区
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(settings.CronSchedule, s.fire); err != nil {
		return fmt.Errorf("无法装载cron表达式 %q: %w", settings.CronSchedule, err)
	}
	c.Start()

	s.runner = c
	s.spec = settings.CronSchedule
	fmt.Printf("同步调度器已启动，cron表达式: %q (UTC)。\n", settings.CronSchedule)
	return nil
}

// Restart 在配置变更后重新装载定时器
func (s *Scheduler) Restart() error {
	return s.Start()
}

// Stop 停掉定时器；正在执行中的同步不会被打断
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.runner != nil {
		s.runner.Stop()
		s.runner = nil
		s.spec = ""
		fmt.Println("同步调度器已停止。")
	}
}

// IsRunning 返回定时器当前是否处于装载状态
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner != nil
}

// CurrentSpec 返回当前装载的cron表达式，未启动时为空串
func (s *Scheduler) CurrentSpec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// fire 是定时器的触发入口：记录触发时间并执行一轮全量同步
func (s *Scheduler) fire() {
	if err := TouchLastRun(s.db, time.Now().UTC()); err != nil {
		fmt.Printf("警告: 无法记录定时同步触发时间: %v\n", err)
	}
	if _, err := s.orch.RunFullSync(context.Background()); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			fmt.Println("定时同步触发时上一轮仍在执行，本次跳过。")
			return
		}
		fmt.Printf("警告: 定时全量同步失败: %v\n", err)
	}
}
