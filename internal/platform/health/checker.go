package health

import (
	"context"
	"fmt"
	"time"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
	"github.com/tle-mentors/student-progress-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次Redis连通性检查并更新全局状态。
func PerformCheck() {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	if _, err := database.RDB.Ping(ctx).Result(); err != nil {
		database.UpdateStatus(false)
		return
	}
	database.UpdateStatus(true)
}

// StartRedisHealthCheck 启动一个后台Goroutine来定期执行健康检查。
// 它接收一个lifecycle.Handle来管理其生命周期。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	for {
		// 使用可中断的休眠，收到停机信号时立刻退出
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("健康检查器: 休眠被中断，正在关闭...")
			return
		}
		PerformCheck()
	}
}
