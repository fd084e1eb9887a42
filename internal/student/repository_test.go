package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 创建一个独立的内存数据库并完成迁移
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Student{}, &ContestResult{}, &SubmissionRecord{}))
	return db
}

func mustCreateStudent(t *testing.T, db *gorm.DB, name, email, handle string) *Student {
	t.Helper()
	s := &Student{Name: name, Email: email, Handle: handle, AutoEmailEnabled: true}
	require.NoError(t, Create(db, s))
	return s
}

func TestCreateNormalizesHandle(t *testing.T) {
	db := newTestDB(t)
	s := mustCreateStudent(t, db, "Alice", "alice@example.com", "  TouRist ")
	assert.Equal(t, "tourist", s.Handle)
}

func TestCreateRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")

	err := Create(db, &Student{Name: "Bob", Email: "alice@example.com", Handle: "bob_cf"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// handle不区分大小写，大小写不同也算冲突
	err = Create(db, &Student{Name: "Bob", Email: "bob@example.com", Handle: "Alice_CF"})
	assert.ErrorIs(t, err, ErrDuplicateHandle)
}

func TestDeleteWithDataCascades(t *testing.T) {
	db := newTestDB(t)
	s := mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")
	require.NoError(t, db.Create(&ContestResult{StudentID: s.ID, ContestID: 100}).Error)
	require.NoError(t, db.Create(&SubmissionRecord{StudentID: s.ID, SubmissionID: 1, Verdict: "OK"}).Error)

	require.NoError(t, DeleteWithData(db, s.ID))

	var contests, submissions int64
	db.Model(&ContestResult{}).Where("student_id = ?", s.ID).Count(&contests)
	db.Model(&SubmissionRecord{}).Where("student_id = ?", s.ID).Count(&submissions)
	assert.Zero(t, contests)
	assert.Zero(t, submissions)

	_, err := GetByID(db, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWithDataMissingStudent(t *testing.T) {
	db := newTestDB(t)
	assert.ErrorIs(t, DeleteWithData(db, 999), ErrNotFound)
}

func TestHasAcceptedSubmissionSince(t *testing.T) {
	db := newTestDB(t)
	s := mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// 窗口内只有未通过的提交
	require.NoError(t, db.Create(&SubmissionRecord{
		StudentID: s.ID, SubmissionID: 1, Verdict: "WRONG_ANSWER",
		SubmissionTime: since.Add(time.Hour),
	}).Error)
	active, err := HasAcceptedSubmissionSince(db, s.ID, since)
	require.NoError(t, err)
	assert.False(t, active)

	// 窗口之前的通过提交不计入
	require.NoError(t, db.Create(&SubmissionRecord{
		StudentID: s.ID, SubmissionID: 2, Verdict: "OK",
		SubmissionTime: since.Add(-time.Minute),
	}).Error)
	active, err = HasAcceptedSubmissionSince(db, s.ID, since)
	require.NoError(t, err)
	assert.False(t, active)

	// 提交时间正好等于窗口边界，闭区间应算有效
	require.NoError(t, db.Create(&SubmissionRecord{
		StudentID: s.ID, SubmissionID: 3, Verdict: "OK",
		SubmissionTime: since,
	}).Error)
	active, err = HasAcceptedSubmissionSince(db, s.ID, since)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestCountUniqueSolvedSince(t *testing.T) {
	db := newTestDB(t)
	s := mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	records := []SubmissionRecord{
		// 同一题两次通过只计一次
		{StudentID: s.ID, SubmissionID: 1, ProblemID: "A-1700", Verdict: "OK", SubmissionTime: since.Add(time.Hour)},
		{StudentID: s.ID, SubmissionID: 2, ProblemID: "A-1700", Verdict: "OK", SubmissionTime: since.Add(2 * time.Hour)},
		{StudentID: s.ID, SubmissionID: 3, ProblemID: "B-problemset", Verdict: "OK", SubmissionTime: since.Add(3 * time.Hour)},
		// 未通过与窗口外的提交不计入
		{StudentID: s.ID, SubmissionID: 4, ProblemID: "C-1701", Verdict: "WRONG_ANSWER", SubmissionTime: since.Add(4 * time.Hour)},
		{StudentID: s.ID, SubmissionID: 5, ProblemID: "D-1702", Verdict: "OK", SubmissionTime: since.Add(-time.Hour)},
	}
	require.NoError(t, db.Create(&records).Error)

	count, err := CountUniqueSolvedSince(db, s.ID, since)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
