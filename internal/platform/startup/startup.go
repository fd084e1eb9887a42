package startup

import (
	"fmt"

	"github.com/tle-mentors/student-progress-backend/internal/account"
	"github.com/tle-mentors/student-progress-backend/internal/cfsync"
	"github.com/tle-mentors/student-progress-backend/internal/student"
)

// InitializeApplication 按依赖顺序初始化各业务模块
// 任何一步失败都会中止启动
func InitializeApplication() error {
	fmt.Println("开始初始化应用模块...")

	if err := student.PrimeModule(); err != nil {
		return fmt.Errorf("初始化student模块失败: %w", err)
	}
	if err := account.PrimeModule(); err != nil {
		return fmt.Errorf("初始化account模块失败: %w", err)
	}
	if err := cfsync.PrimeModule(); err != nil {
		return fmt.Errorf("初始化同步模块失败: %w", err)
	}

	fmt.Println("所有应用模块初始化完成。")
	return nil
}
