package cfsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tle-mentors/student-progress-backend/internal/codeforces"
	"github.com/tle-mentors/student-progress-backend/internal/student"
)

// newTestDB 创建一个独立的内存数据库并迁移全部相关表
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&student.Student{}, &student.ContestResult{}, &student.SubmissionRecord{},
		&SyncSettings{},
	))
	return db
}

func mustCreateStudent(t *testing.T, db *gorm.DB, name, email, handle string) *student.Student {
	t.Helper()
	s := &student.Student{Name: name, Email: email, Handle: handle, AutoEmailEnabled: true}
	require.NoError(t, student.Create(db, s))
	return s
}

// fakeFetcher 按handle返回预置的抓取结果或错误
type fakeFetcher struct {
	profiles map[string]*codeforces.Profile
	errs     map[string]error
	calls    int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		profiles: make(map[string]*codeforces.Profile),
		errs:     make(map[string]error),
	}
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, handle string) (*codeforces.Profile, error) {
	f.calls++
	if err, ok := f.errs[handle]; ok {
		return nil, err
	}
	if profile, ok := f.profiles[handle]; ok {
		return profile, nil
	}
	return &codeforces.Profile{}, nil
}

// reminderCall 记录一次提醒邮件的发送参数
type reminderCall struct {
	Email string
	Name  string
	Count int
}

// fakeSender 记录全部发送调用，可注入发送失败
type fakeSender struct {
	calls []reminderCall
	err   error
}

func (f *fakeSender) SendReminder(ctx context.Context, email, name string, reminderCount int) error {
	f.calls = append(f.calls, reminderCall{Email: email, Name: name, Count: reminderCount})
	return f.err
}

func intPtr(v int) *int { return &v }
