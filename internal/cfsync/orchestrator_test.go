package cfsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tle-mentors/student-progress-backend/internal/codeforces"
	"github.com/tle-mentors/student-progress-backend/internal/student"
)

func newTestOrchestrator(db *gorm.DB, fetcher *fakeFetcher, sender *fakeSender) *Orchestrator {
	evaluator := NewEvaluator(db, sender)
	evaluator.now = func() time.Time { return evalNow }
	return NewOrchestrator(db, NewReconciler(db, fetcher), evaluator)
}

func profileWithRating(rating int) *codeforces.Profile {
	return &codeforces.Profile{
		ContestHistory: []codeforces.ContestEntry{
			{ContestID: 1700, RatingUpdatedAt: evalNow.Add(-30 * 24 * time.Hour),
				OldRating: 0, NewRating: intPtr(rating)},
		},
	}
}

func TestRunFullSyncIsolatesFailures(t *testing.T) {
	db := newTestDB(t)
	alice := mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")
	bob := mustCreateStudent(t, db, "Bob", "bob@example.com", "bob_cf")
	carol := mustCreateStudent(t, db, "Carol", "carol@example.com", "carol_cf")

	fetcher := newFakeFetcher()
	fetcher.profiles["alice_cf"] = profileWithRating(1200)
	fetcher.profiles["carol_cf"] = profileWithRating(1500)
	// 第二名学员的数据源临时故障，不应影响其他人
	fetcher.errs["bob_cf"] = codeforces.ErrUnavailable

	summary, err := newTestOrchestrator(db, fetcher, &fakeSender{}).RunFullSync(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Skipped)

	reloaded, err := student.GetByID(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, reloaded.CurrentRating)

	reloaded, err = student.GetByID(db, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500, reloaded.CurrentRating)

	// 失败的学员保持原状，等下一轮自然重试
	reloaded, err = student.GetByID(db, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.CurrentRating)
	assert.Nil(t, reloaded.LastSyncedAt)
}

func TestRunFullSyncSkipsBlankHandles(t *testing.T) {
	db := newTestDB(t)
	// 历史数据可能存在没有handle的学员，直接绕过服务层写入
	require.NoError(t, db.Create(&student.Student{
		Name: "NoHandle", Email: "nohandle@example.com", Handle: "",
	}).Error)
	mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")

	fetcher := newFakeFetcher()
	fetcher.profiles["alice_cf"] = profileWithRating(1200)

	summary, err := newTestOrchestrator(db, fetcher, &fakeSender{}).RunFullSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, fetcher.calls)
}

func TestRunFullSyncEvaluatesInactivity(t *testing.T) {
	db := newTestDB(t)
	mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")

	// 抓取结果里没有任何近7天的通过提交
	fetcher := newFakeFetcher()
	fetcher.profiles["alice_cf"] = profileWithRating(1200)

	sender := &fakeSender{}
	summary, err := newTestOrchestrator(db, fetcher, sender).RunFullSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, "alice@example.com", sender.calls[0].Email)
}

func TestRunSingleStudentSync(t *testing.T) {
	db := newTestDB(t)
	s := mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")

	fetcher := newFakeFetcher()
	fetcher.profiles["alice_cf"] = profileWithRating(1200)

	require.NoError(t, newTestOrchestrator(db, fetcher, &fakeSender{}).
		RunSingleStudentSync(context.Background(), s.ID))

	reloaded, err := student.GetByID(db, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, reloaded.CurrentRating)
	assert.NotNil(t, reloaded.LastSyncedAt)
}

func TestRunFullSyncHonorsCancellation(t *testing.T) {
	db := newTestDB(t)
	mustCreateStudent(t, db, "Alice", "alice@example.com", "alice_cf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestOrchestrator(db, newFakeFetcher(), &fakeSender{}).RunFullSync(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Succeeded)
	assert.Zero(t, summary.Failed)
}
