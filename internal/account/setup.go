package account

import (
	"fmt"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
)

// PrimeModule 负责初始化account模块的数据库表结构
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&Account{}); err != nil {
		return fmt.Errorf("无法迁移account相关表: %w", err)
	}
	fmt.Println("Account数据库表迁移成功。")
	return nil
}
