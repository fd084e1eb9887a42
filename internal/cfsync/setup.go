package cfsync

import (
	"fmt"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
)

// PrimeModule 负责初始化同步模块的数据库表结构
// 同时确保全局同步配置的单例行存在，首次启动即有可用的默认计划
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&SyncSettings{}); err != nil {
		return fmt.Errorf("无法迁移同步配置表: %w", err)
	}
	if _, err := GetOrCreateSettings(database.DB); err != nil {
		return err
	}
	fmt.Println("同步模块数据库表迁移成功。")
	return nil
}
