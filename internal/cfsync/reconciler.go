package cfsync

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/tle-mentors/student-progress-backend/internal/codeforces"
	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
	"github.com/tle-mentors/student-progress-backend/internal/student"
)

// ProfileFetcher 抽象了外部数据源的抓取入口，便于测试时替换
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, handle string) (*codeforces.Profile, error)
}

// Reconciler 负责把单个学员的本地数据与Codeforces对齐
// 策略是整体替换：清空旧的比赛与提交记录，再写入本次抓取的全量数据
type Reconciler struct {
	db      *gorm.DB
	fetcher ProfileFetcher
}

// NewReconciler 创建一个Reconciler
func NewReconciler(db *gorm.DB, fetcher ProfileFetcher) *Reconciler {
	return &Reconciler{db: db, fetcher: fetcher}
}

const maxReconcileRetries = 3

// Reconcile 同步一个学员的全部Codeforces数据
// 抓取在事务外进行；落库在单个事务内完成，失败时旧数据原样保留。
// SQLite短暂锁冲突时重试整个事务
func (r *Reconciler) Reconcile(ctx context.Context, studentID uint) (*student.Student, error) {
	s, err := student.GetByID(r.db, studentID)
	if err != nil {
		return nil, err
	}

	profile, err := r.fetcher.FetchProfile(ctx, s.Handle)
	if err != nil {
		return nil, fmt.Errorf("抓取 %s 的数据失败: %w", s.Handle, err)
	}

	var lastErr error
	for attempt := 0; attempt < maxReconcileRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt*100) * time.Millisecond)
		}
		lastErr = r.store(s, profile)
		if lastErr == nil {
			return s, nil
		}
		if !database.IsRetryableError(lastErr) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("同步学员 %d 重试%d次后仍失败: %w", studentID, maxReconcileRetries, lastErr)
}

// store 在一个事务中整体替换学员的外部数据并重算rating
func (r *Reconciler) store(s *student.Student, profile *codeforces.Profile) error {
	contests := buildContestResults(s.ID, profile.ContestHistory)
	submissions := buildSubmissionRecords(s.ID, profile.Submissions)

	// rating以时间顺序的最后一场为准；历史为空时归零，
	// 保证改绑handle后不会残留旧handle的rating
	currentRating, maxRating := ratingsFromContests(contests)
	now := time.Now().UTC()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := student.ClearExternalData(tx, s.ID); err != nil {
			return err
		}
		if len(contests) > 0 {
			if err := tx.CreateInBatches(contests, 200).Error; err != nil {
				return fmt.Errorf("无法写入学员 %d 的比赛记录: %w", s.ID, err)
			}
		}
		if len(submissions) > 0 {
			if err := tx.CreateInBatches(submissions, 500).Error; err != nil {
				return fmt.Errorf("无法写入学员 %d 的提交记录: %w", s.ID, err)
			}
		}

		s.CurrentRating = currentRating
		s.MaxRating = maxRating
		s.LastSyncedAt = &now
		if err := tx.Save(s).Error; err != nil {
			return fmt.Errorf("无法更新学员 %d 的同步状态: %w", s.ID, err)
		}
		return nil
	})
}

// ProblemKey 生成复合题目标识：{题号索引}-{比赛ID}
// 练习题库（无比赛ID）的提交使用固定后缀"problemset"
func ProblemKey(index string, contestID *int) string {
	if contestID == nil {
		return index + "-problemset"
	}
	return index + "-" + strconv.Itoa(*contestID)
}

// buildContestResults 把规范化的比赛历史转换为待入库的记录
// 赛后rating优先取数据源的newRating，缺失时按 oldRating+ratingChange 推算；
// ratingChange统一重算为 NewRating-OldRating，两字段永远自洽
func buildContestResults(studentID uint, history []codeforces.ContestEntry) []student.ContestResult {
	contests := make([]student.ContestResult, 0, len(history))
	for _, entry := range history {
		newRating := entry.OldRating + entry.RatingChange
		if entry.NewRating != nil {
			newRating = *entry.NewRating
		}
		contests = append(contests, student.ContestResult{
			StudentID:    studentID,
			ContestID:    entry.ContestID,
			ContestName:  entry.ContestName,
			ContestTime:  entry.RatingUpdatedAt,
			Rank:         entry.Rank,
			OldRating:    entry.OldRating,
			NewRating:    newRating,
			RatingChange: newRating - entry.OldRating,
		})
	}
	// 数据源按时间升序返回，这里再排一次以不依赖该约定
	sort.Slice(contests, func(i, j int) bool {
		return contests[i].ContestTime.Before(contests[j].ContestTime)
	})
	return contests
}

// buildSubmissionRecords 把规范化的提交列表转换为待入库的记录
func buildSubmissionRecords(studentID uint, entries []codeforces.SubmissionEntry) []student.SubmissionRecord {
	records := make([]student.SubmissionRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, student.SubmissionRecord{
			StudentID:           studentID,
			SubmissionID:        entry.ID,
			ProblemID:           ProblemKey(entry.ProblemIndex, entry.ContestID),
			ProblemName:         entry.ProblemName,
			ProblemRating:       entry.ProblemRating,
			Verdict:             entry.Verdict,
			SubmissionTime:      entry.SubmittedAt,
			ContestID:           entry.ContestID,
			ProgrammingLanguage: entry.ProgrammingLanguage,
		})
	}
	return records
}

// ratingsFromContests 从按时间排好序的比赛记录中取当前rating与历史最高rating
func ratingsFromContests(contests []student.ContestResult) (current, max int) {
	if len(contests) == 0 {
		return 0, 0
	}
	current = contests[len(contests)-1].NewRating
	for _, c := range contests {
		if c.NewRating > max {
			max = c.NewRating
		}
	}
	return current, max
}
