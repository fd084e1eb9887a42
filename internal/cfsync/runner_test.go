package cfsync

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tle-mentors/student-progress-backend/pkg/lifecycle"
)

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	manager := lifecycle.NewManager()
	runner := NewRunner(8)
	require.NoError(t, manager.Go("test-runner", runner.Serve))

	var executed atomic.Int32
	for i := 0; i < 5; i++ {
		ok := runner.Submit("task", func(h *lifecycle.Handle) {
			executed.Add(1)
		})
		assert.True(t, ok)
	}

	runner.Wait()
	assert.EqualValues(t, 5, executed.Load())

	manager.Shutdown()
	assert.Empty(t, manager.WaitWithTimeout(2*time.Second))
}

func TestRunnerDropsTasksWhenQueueFull(t *testing.T) {
	// 不启动工作循环，队列容量为1
	runner := NewRunner(1)

	ok := runner.Submit("first", func(h *lifecycle.Handle) {})
	assert.True(t, ok)
	ok = runner.Submit("second", func(h *lifecycle.Handle) {})
	assert.False(t, ok)
}
