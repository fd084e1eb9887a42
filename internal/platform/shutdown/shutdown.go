package shutdown

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tle-mentors/student-progress-backend/internal/cfsync"
	"github.com/tle-mentors/student-progress-backend/pkg/lifecycle"
)

const (
	httpShutdownTimeout    = 10 * time.Second
	serviceShutdownTimeout = 30 * time.Second
)

// Coordinator 负责进程的优雅停机
// 停机顺序：先停HTTP入口，再停定时器，最后广播信号等待后台服务退出
type Coordinator struct {
	// ServiceManager 管理所有后台服务（健康检查、任务队列等）
	ServiceManager *lifecycle.Manager
}

// NewCoordinator 创建停机协调器及其服务管理器
func NewCoordinator() *Coordinator {
	return &Coordinator{ServiceManager: lifecycle.NewManager()}
}

// WaitAndShutdown 阻塞等待停机信号（SIGINT/SIGTERM），然后按序关闭
func (c *Coordinator) WaitAndShutdown(server *http.Server, scheduler *cfsync.Scheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	fmt.Printf("\n收到信号 %s，开始优雅停机...\n", sig)

	// 1. 停止接收新的HTTP请求，等待在途请求完成
	ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("警告: HTTP服务器未能在期限内关闭: %v\n", err)
	} else {
		fmt.Println("HTTP服务器已关闭。")
	}

	// 2. 停掉定时器，不再触发新的同步
	scheduler.Stop()

	// 3. 通知后台服务退出并等待
	c.ServiceManager.Shutdown()
	if remaining := c.ServiceManager.WaitWithTimeout(serviceShutdownTimeout); len(remaining) > 0 {
		fmt.Printf("警告: 以下服务未能在期限内退出: %v\n", remaining)
	} else {
		fmt.Println("所有后台服务已退出。")
	}

	fmt.Println("停机完成。")
}
