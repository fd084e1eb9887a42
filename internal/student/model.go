package student

import (
	"time"

	"gorm.io/gorm"
)

// Student 定义了数据库中被跟踪学员的数据结构
type Student struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// Name 是学员的显示名称
	Name string `gorm:"not null" json:"name"`

	// Email 是学员的联系邮箱，全局唯一
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// PhoneNumber 是可选的联系电话
	PhoneNumber string `json:"phoneNumber"`

	// Handle 是学员在Codeforces上的用户名
	// 存储时统一转为小写，Codeforces的handle不区分大小写
	Handle string `gorm:"uniqueIndex;not null" json:"codeforcesHandle"`

	// CurrentRating 是最近一场Rated比赛后的rating，由同步任务维护
	CurrentRating int `gorm:"default:0" json:"currentRating"`

	// MaxRating 是历史最高rating，由同步任务维护
	MaxRating int `gorm:"default:0" json:"maxRating"`

	// LastSyncedAt 是最近一次成功同步Codeforces数据的时间
	LastSyncedAt *time.Time `json:"lastSyncedAt"`

	// ReminderEmailCount 记录已发送的不活跃提醒邮件次数
	ReminderEmailCount int `gorm:"default:0" json:"reminderEmailCount"`

	// AutoEmailEnabled 控制是否为该学员自动发送提醒邮件
	AutoEmailEnabled bool `gorm:"default:true" json:"autoEmailEnabled"`
}

// ContestResult 定义了一条学员的Rated比赛记录
// 每次成功同步时按学员整体替换，不做增量修补
type ContestResult struct {
	gorm.Model

	// StudentID 是所属学员的ID
	StudentID uint `gorm:"index;uniqueIndex:idx_student_contest;not null" json:"studentId"`

	// ContestID 是Codeforces的比赛ID，同一学员下唯一
	ContestID int `gorm:"uniqueIndex:idx_student_contest;not null" json:"contestId"`

	// ContestName 是比赛名称
	ContestName string `json:"contestName"`

	// ContestTime 是rating更新时间
	ContestTime time.Time `json:"contestTime"`

	// Rank 是学员在该场比赛中的排名
	Rank int `json:"rank"`

	// OldRating 是赛前rating
	OldRating int `json:"oldRating"`

	// NewRating 是赛后rating
	NewRating int `json:"newRating"`

	// RatingChange 是本场rating变化量，入库前重新计算为 NewRating-OldRating
	RatingChange int `json:"ratingChange"`

	// ProblemsSolved 是本场解出的题数（数据源未提供时为0）
	ProblemsSolved int `json:"problemsSolved"`
}

// SubmissionRecord 定义了一条学员的提交记录
// 与ContestResult采用相同的整体替换策略
type SubmissionRecord struct {
	gorm.Model

	// StudentID 是所属学员的ID
	StudentID uint `gorm:"index;uniqueIndex:idx_student_submission;not null" json:"studentId"`

	// SubmissionID 是Codeforces的提交ID，同一学员下唯一
	SubmissionID int64 `gorm:"uniqueIndex:idx_student_submission;not null" json:"submissionId"`

	// ProblemID 是复合题目标识，格式为 {题号索引}-{比赛ID或"problemset"}
	// 例如 "A-1700" 或 "B-problemset"
	ProblemID string `gorm:"index" json:"problemId"`

	// ProblemName 是题目名称
	ProblemName string `json:"problemName"`

	// ProblemRating 是题目难度分，未定难度的题为nil
	ProblemRating *int `json:"problemRating"`

	// Verdict 是评测结果，如 "OK"、"WRONG_ANSWER"
	Verdict string `gorm:"index" json:"verdict"`

	// SubmissionTime 是提交时间
	SubmissionTime time.Time `gorm:"index" json:"submissionTime"`

	// ContestID 是所属比赛ID，练习题库的提交为nil
	ContestID *int `json:"contestId"`

	// ProgrammingLanguage 是提交使用的编程语言
	ProgrammingLanguage string `json:"programmingLanguage"`
}
