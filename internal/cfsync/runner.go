package cfsync

import (
	"fmt"
	"sync"

	"github.com/tle-mentors/student-progress-backend/pkg/lifecycle"
)

// Runner 是进程内的后台任务队列
// 学员创建或handle变更后的即时同步由HTTP请求提交到队列，
// 在请求之外异步执行，请求本身不等待同步结果
type Runner struct {
	tasks chan func(h *lifecycle.Handle)
	wg    sync.WaitGroup
}

// NewRunner 创建一个后台任务队列，queueSize是队列容量上限
func NewRunner(queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = 32
	}
	return &Runner{
		tasks: make(chan func(h *lifecycle.Handle), queueSize),
	}
}

// Serve 是队列的工作循环，由lifecycle.Manager作为后台服务拉起
// 收到关闭信号后不再取出新任务，正在执行的任务自然结束
func (r *Runner) Serve(handle *lifecycle.Handle) {
	defer handle.Close()
	for {
		select {
		case <-handle.Done():
			return
		case task := <-r.tasks:
			task(handle)
			r.wg.Done()
		}
	}
}

// Submit 把一个任务放入队列
// 队列已满时直接丢弃并返回false，提交方不应被后台积压阻塞
func (r *Runner) Submit(name string, run func(h *lifecycle.Handle)) bool {
	r.wg.Add(1)
	select {
	case r.tasks <- run:
		return true
	default:
		r.wg.Done()
		fmt.Printf("警告: 后台任务队列已满，丢弃任务 %q。\n", name)
		return false
	}
}

// Wait 阻塞直到所有已提交的任务执行完毕，仅用于测试
func (r *Runner) Wait() {
	r.wg.Wait()
}
