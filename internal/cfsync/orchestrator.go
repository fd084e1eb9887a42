package cfsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
	"github.com/tle-mentors/student-progress-backend/internal/student"
)

const (
	// fullSyncLockKey 是全量同步的Redis互斥锁键
	fullSyncLockKey = "cfsync:full-run-lock"
	// fullSyncLockTTL 是锁的自动过期时间，防止进程异常退出后锁泄漏
	fullSyncLockTTL = time.Hour
)

// ErrRunInProgress 表示已有一次全量同步在执行中，本次触发被跳过
var ErrRunInProgress = errors.New("已有全量同步正在执行")

// RunSummary 汇总一次全量同步的执行结果
type RunSummary struct {
	RunID      string    `json:"runId"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Orchestrator 驱动同步流程：遍历学员，逐个对齐数据并评估活跃度
// 单个学员的失败互相隔离，不会中断整轮同步
type Orchestrator struct {
	db         *gorm.DB
	reconciler *Reconciler
	evaluator  *Evaluator
}

// NewOrchestrator 创建一个Orchestrator
func NewOrchestrator(db *gorm.DB, reconciler *Reconciler, evaluator *Evaluator) *Orchestrator {
	return &Orchestrator{db: db, reconciler: reconciler, evaluator: evaluator}
}

// RunFullSync 对全部学员执行一轮同步
// 通过Redis锁避免重叠执行（定时触发与手动触发可能同时发生）；
// Redis不可用时退化为无锁执行，同步本身不依赖Redis
func (o *Orchestrator) RunFullSync(ctx context.Context) (*RunSummary, error) {
	unlock, err := o.acquireRunLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	targets, err := student.ListSyncTargets(o.db)
	if err != nil {
		return nil, err
	}
	fmt.Printf("全量同步 %s 开始，共 %d 名学员。\n", summary.RunID, len(targets))

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			fmt.Printf("全量同步 %s 被中断: %v\n", summary.RunID, err)
			break
		}
		if target.Handle == "" {
			summary.Skipped++
			continue
		}
		if err := o.syncOne(ctx, target.ID); err != nil {
			summary.Failed++
			fmt.Printf("警告: 学员 %s (ID %d) 同步失败: %v\n", target.Name, target.ID, err)
			continue
		}
		summary.Succeeded++
	}

	summary.FinishedAt = time.Now().UTC()
	fmt.Printf("全量同步 %s 完成: 成功 %d, 失败 %d, 跳过 %d。\n",
		summary.RunID, summary.Succeeded, summary.Failed, summary.Skipped)
	return summary, nil
}

// RunSingleStudentSync 同步单个学员并评估其活跃度
// 用于学员创建或handle变更后的即时同步
func (o *Orchestrator) RunSingleStudentSync(ctx context.Context, studentID uint) error {
	return o.syncOne(ctx, studentID)
}

// syncOne 对齐一个学员的数据并随即评估活跃度
func (o *Orchestrator) syncOne(ctx context.Context, studentID uint) error {
	s, err := o.reconciler.Reconcile(ctx, studentID)
	if err != nil {
		return err
	}
	if _, err := o.evaluator.Evaluate(ctx, s); err != nil {
		return fmt.Errorf("活跃度评估失败: %w", err)
	}
	return nil
}

// acquireRunLock 尝试获取全量同步互斥锁，返回释放函数
func (o *Orchestrator) acquireRunLock(ctx context.Context) (func(), error) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return func() {}, nil
	}

	ok, err := database.RDB.SetNX(ctx, fullSyncLockKey, time.Now().UTC().Format(time.RFC3339), fullSyncLockTTL).Result()
	if err != nil {
		// 锁只是防重叠的优化，Redis故障时放行
		fmt.Printf("警告: 无法获取同步锁，放弃加锁继续执行: %v\n", err)
		return func() {}, nil
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		if err := database.RDB.Del(context.Background(), fullSyncLockKey).Err(); err != nil {
			fmt.Printf("警告: 无法释放同步锁: %v\n", err)
		}
	}, nil
}
