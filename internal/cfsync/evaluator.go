package cfsync

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tle-mentors/student-progress-backend/internal/student"
)

// inactivityWindow 是判定学员不活跃的时间窗口
const inactivityWindow = 7 * 24 * time.Hour

// ReminderSender 抽象了提醒邮件的发送渠道
type ReminderSender interface {
	SendReminder(ctx context.Context, email, name string, reminderCount int) error
}

// Evaluator 在每次成功同步后评估学员的近期活跃度
// 窗口内没有任何评测通过的提交即视为不活跃
type Evaluator struct {
	db     *gorm.DB
	sender ReminderSender

	// now 可在测试中替换以固定时间基准
	now func() time.Time
}

// NewEvaluator 创建一个Evaluator
func NewEvaluator(db *gorm.DB, sender ReminderSender) *Evaluator {
	return &Evaluator{db: db, sender: sender, now: time.Now}
}

// Evaluate 评估单个学员的活跃度并维护提醒计数
// 返回本次是否发送了提醒邮件。
// 不活跃时先递增计数并落库，再尽力发送邮件；发送失败只记日志，
// 计数不回滚，避免邮件渠道抖动导致重复打扰。
// 恢复活跃时计数清零。关闭了自动邮件的学员整体跳过
func (e *Evaluator) Evaluate(ctx context.Context, s *student.Student) (bool, error) {
	if !s.AutoEmailEnabled {
		return false, nil
	}

	since := e.now().UTC().Add(-inactivityWindow)
	active, err := student.HasAcceptedSubmissionSince(e.db, s.ID, since)
	if err != nil {
		return false, err
	}

	if active {
		if s.ReminderEmailCount != 0 {
			s.ReminderEmailCount = 0
			if err := student.Save(e.db, s); err != nil {
				return false, fmt.Errorf("无法重置学员 %d 的提醒计数: %w", s.ID, err)
			}
		}
		return false, nil
	}

	s.ReminderEmailCount++
	if err := student.Save(e.db, s); err != nil {
		return false, fmt.Errorf("无法更新学员 %d 的提醒计数: %w", s.ID, err)
	}

	if err := e.sender.SendReminder(ctx, s.Email, s.Name, s.ReminderEmailCount); err != nil {
		fmt.Printf("警告: 学员 %s 的提醒邮件发送失败: %v\n", s.Name, err)
	}
	return true, nil
}
