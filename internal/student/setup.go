package student

import (
	"fmt"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
)

// PrimeModule 负责初始化student模块的数据库表结构
func PrimeModule() error {
	if err := migrateDB(); err != nil {
		return err
	}
	return nil
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	err := database.DB.AutoMigrate(&Student{}, &ContestResult{}, &SubmissionRecord{})
	if err != nil {
		return fmt.Errorf("无法迁移student相关表: %w", err)
	}
	fmt.Println("Student数据库表迁移成功。")
	return nil
}
