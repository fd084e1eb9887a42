package student

import (
	"fmt"
	"math"
	"time"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
)

// --- Service-Level Data Transfer Objects (DTOs) ---

// OverviewDTO 是学员列表API的数据载体
// 在学员记录基础上附加仪表盘所需的派生统计
type OverviewDTO struct {
	Student
	// AverageProblemsPerDay 是最近7天平均每日解题数（去重后/7，保留1位小数）
	AverageProblemsPerDay float64 `json:"averageProblemsPerDay"`
}

// ProfileDTO 是学员档案API的数据载体
type ProfileDTO struct {
	Student        Student            `json:"student"`
	ContestHistory []ContestResult    `json:"contestHistory"`
	Submissions    []SubmissionRecord `json:"submissions"`
}

// CreateInput 定义了创建学员所需的字段
type CreateInput struct {
	Name             string
	Email            string
	PhoneNumber      string
	Handle           string
	AutoEmailEnabled *bool
}

// UpdateInput 定义了编辑学员时可修改的字段，nil表示不修改
type UpdateInput struct {
	Name             *string
	Email            *string
	PhoneNumber      *string
	Handle           *string
	AutoEmailEnabled *bool
}

// syncTrigger 是由装配层注入的即时同步入口
// 学员创建或handle变更后，通过它在后台触发一次该学员的数据同步。
// 解耦本模块与同步引擎，避免包间循环依赖。
var syncTrigger func(studentID uint, handle string)

// SetSyncTrigger 注入即时同步入口，由应用装配时调用一次
func SetSyncTrigger(trigger func(studentID uint, handle string)) {
	syncTrigger = trigger
}

// requestSync 在注入过同步入口时触发一次后台同步
func requestSync(studentID uint, handle string) {
	if syncTrigger == nil {
		return
	}
	syncTrigger(studentID, handle)
}

// --- Service Functions ---

// GetOverview 返回全部学员及其最近7天的解题统计
func GetOverview() ([]OverviewDTO, error) {
	students, err := ListAll(database.DB)
	if err != nil {
		return nil, err
	}

	sevenDaysAgo := time.Now().Add(-7 * 24 * time.Hour)
	overviews := make([]OverviewDTO, 0, len(students))
	for _, s := range students {
		solved, err := CountUniqueSolvedSince(database.DB, s.ID, sevenDaysAgo)
		if err != nil {
			return nil, err
		}
		average := 0.0
		if solved > 0 {
			// 固定按7天折算日均值，保留1位小数
			average = math.Round(float64(solved)/7.0*10) / 10
		}
		overviews = append(overviews, OverviewDTO{Student: s, AverageProblemsPerDay: average})
	}
	return overviews, nil
}

// GetStudentByID 按ID返回单个学员
func GetStudentByID(id uint) (*Student, error) {
	return GetByID(database.DB, id)
}

// GetProfile 返回学员档案：基础信息、比赛历史（升序）和提交记录（升序）
func GetProfile(id uint) (*ProfileDTO, error) {
	s, err := GetByID(database.DB, id)
	if err != nil {
		return nil, err
	}
	contests, err := ContestsByStudent(database.DB, id)
	if err != nil {
		return nil, err
	}
	submissions, err := SubmissionsByStudent(database.DB, id)
	if err != nil {
		return nil, err
	}
	return &ProfileDTO{
		Student:        *s,
		ContestHistory: contests,
		Submissions:    submissions,
	}, nil
}

// CreateStudent 创建一条学员记录，并在后台触发首次数据同步
// 同步结果不影响本次调用的返回值
func CreateStudent(input CreateInput) (*Student, error) {
	autoEmail := true
	if input.AutoEmailEnabled != nil {
		autoEmail = *input.AutoEmailEnabled
	}

	s := &Student{
		Name:             input.Name,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		Handle:           input.Handle,
		AutoEmailEnabled: autoEmail,
	}
	if err := Create(database.DB, s); err != nil {
		return nil, err
	}

	fmt.Printf("学员模块: 已创建学员 %s (handle: %s)，正在后台触发首次同步...\n", s.Name, s.Handle)
	requestSync(s.ID, s.Handle)
	return s, nil
}

// UpdateStudent 修改学员记录
// handle发生实际变化时，在后台触发一次重新同步（旧handle的数据会被整体替换）
func UpdateStudent(id uint, input UpdateInput) (*Student, error) {
	s, err := GetByID(database.DB, id)
	if err != nil {
		return nil, err
	}

	oldHandle := s.Handle
	if input.Name != nil {
		s.Name = *input.Name
	}
	if input.Email != nil {
		s.Email = *input.Email
	}
	if input.PhoneNumber != nil {
		s.PhoneNumber = *input.PhoneNumber
	}
	if input.Handle != nil {
		s.Handle = NormalizeHandle(*input.Handle)
	}
	if input.AutoEmailEnabled != nil {
		s.AutoEmailEnabled = *input.AutoEmailEnabled
	}

	if err := findConflict(database.DB, s.Email, s.Handle, s.ID); err != nil {
		return nil, err
	}
	if err := Save(database.DB, s); err != nil {
		return nil, err
	}

	if s.Handle != oldHandle {
		fmt.Printf("学员模块: 学员 %s 的handle已由 %s 变更为 %s，正在后台触发重新同步...\n", s.Name, oldHandle, s.Handle)
		requestSync(s.ID, s.Handle)
	}
	return s, nil
}

// RemoveStudent 删除学员及其全部派生数据
func RemoveStudent(id uint) error {
	return DeleteWithData(database.DB, id)
}
