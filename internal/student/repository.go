package student

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// --- 模块错误 ---

var (
	// ErrNotFound 表示指定的学员不存在（或在操作期间被删除）
	ErrNotFound = errors.New("学员不存在")
	// ErrDuplicateEmail 表示邮箱已被其他学员占用
	ErrDuplicateEmail = errors.New("该邮箱已被其他学员使用")
	// ErrDuplicateHandle 表示Codeforces handle已被其他学员占用
	ErrDuplicateHandle = errors.New("该Codeforces handle已被其他学员使用")
)

// NormalizeHandle 统一handle的存储格式
// Codeforces的handle不区分大小写，入库前统一转为小写
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// GetByID 按ID加载完整的学员记录
func GetByID(db *gorm.DB, id uint) (*Student, error) {
	var s Student
	err := db.First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ID为 %d 的学员: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("无法加载学员 %d: %w", id, err)
	}
	return &s, nil
}

// ListAll 返回全部学员
func ListAll(db *gorm.DB) ([]Student, error) {
	var students []Student
	if err := db.Order("id asc").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("无法读取学员列表: %w", err)
	}
	return students, nil
}

// SyncTarget 是同步任务遍历学员时所需的最小字段集
type SyncTarget struct {
	ID     uint
	Name   string
	Handle string
}

// ListSyncTargets 返回同步任务所需的学员摘要列表
func ListSyncTargets(db *gorm.DB) ([]SyncTarget, error) {
	var targets []SyncTarget
	err := db.Model(&Student{}).Select("id", "name", "handle").Order("id asc").Scan(&targets).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取同步目标列表: %w", err)
	}
	return targets, nil
}

// findConflict 检查邮箱或handle是否与其他学员冲突
// excludeID 为0时检查全部学员
func findConflict(db *gorm.DB, email, handle string, excludeID uint) error {
	var existing []Student
	query := db.Where("email = ? OR handle = ?", email, handle)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Find(&existing).Error; err != nil {
		return fmt.Errorf("无法检查学员唯一性: %w", err)
	}
	for _, s := range existing {
		if s.Email == email {
			return ErrDuplicateEmail
		}
		if s.Handle == handle {
			return ErrDuplicateHandle
		}
	}
	return nil
}

// Create 插入一条新学员记录，插入前做唯一性检查
func Create(db *gorm.DB, s *Student) error {
	s.Handle = NormalizeHandle(s.Handle)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))

	if err := findConflict(db, s.Email, s.Handle, 0); err != nil {
		return err
	}
	if err := db.Create(s).Error; err != nil {
		return fmt.Errorf("无法创建学员: %w", err)
	}
	return nil
}

// Save 持久化学员记录的全部字段
func Save(db *gorm.DB, s *Student) error {
	if err := db.Save(s).Error; err != nil {
		return fmt.Errorf("无法保存学员 %d: %w", s.ID, err)
	}
	return nil
}

// DeleteWithData 在一个事务中删除学员及其全部比赛和提交记录
// 学员独占其派生数据，删除必须级联
func DeleteWithData(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Delete(&Student{}, id)
		if result.Error != nil {
			return fmt.Errorf("无法删除学员 %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("ID为 %d 的学员: %w", id, ErrNotFound)
		}
		if err := tx.Unscoped().Where("student_id = ?", id).Delete(&ContestResult{}).Error; err != nil {
			return fmt.Errorf("无法删除学员 %d 的比赛记录: %w", id, err)
		}
		if err := tx.Unscoped().Where("student_id = ?", id).Delete(&SubmissionRecord{}).Error; err != nil {
			return fmt.Errorf("无法删除学员 %d 的提交记录: %w", id, err)
		}
		return nil
	})
}

// ClearExternalData 删除学员名下的全部比赛与提交记录
// 由同步任务在整体替换前调用；需要在调用方的事务内执行
func ClearExternalData(tx *gorm.DB, studentID uint) error {
	if err := tx.Unscoped().Where("student_id = ?", studentID).Delete(&ContestResult{}).Error; err != nil {
		return fmt.Errorf("无法清除学员 %d 的旧比赛数据: %w", studentID, err)
	}
	if err := tx.Unscoped().Where("student_id = ?", studentID).Delete(&SubmissionRecord{}).Error; err != nil {
		return fmt.Errorf("无法清除学员 %d 的旧提交数据: %w", studentID, err)
	}
	return nil
}

// ContestsByStudent 返回学员的比赛记录，按比赛时间升序
func ContestsByStudent(db *gorm.DB, studentID uint) ([]ContestResult, error) {
	var contests []ContestResult
	err := db.Where("student_id = ?", studentID).Order("contest_time asc").Find(&contests).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取学员 %d 的比赛记录: %w", studentID, err)
	}
	return contests, nil
}

// SubmissionsByStudent 返回学员的提交记录，按提交时间升序
func SubmissionsByStudent(db *gorm.DB, studentID uint) ([]SubmissionRecord, error) {
	var submissions []SubmissionRecord
	err := db.Where("student_id = ?", studentID).Order("submission_time asc").Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取学员 %d 的提交记录: %w", studentID, err)
	}
	return submissions, nil
}

// HasAcceptedSubmissionSince 判断学员在since之后是否有评测通过("OK")的提交
// 边界为闭区间：提交时间等于since也算有效
func HasAcceptedSubmissionSince(db *gorm.DB, studentID uint, since time.Time) (bool, error) {
	var record SubmissionRecord
	err := db.Select("id").
		Where("student_id = ? AND verdict = ? AND submission_time >= ?", studentID, "OK", since).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("无法查询学员 %d 的近期提交: %w", studentID, err)
	}
	return true, nil
}

// CountUniqueSolvedSince 统计学员在since之后解出的不同题目数
// 同一题的多次通过只计一次（按ProblemID去重）
func CountUniqueSolvedSince(db *gorm.DB, studentID uint, since time.Time) (int, error) {
	var count int64
	err := db.Model(&SubmissionRecord{}).
		Where("student_id = ? AND verdict = ? AND submission_time >= ?", studentID, "OK", since).
		Distinct("problem_id").Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("无法统计学员 %d 的近期解题数: %w", studentID, err)
	}
	return int(count), nil
}
