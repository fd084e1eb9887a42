package database

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tle-mentors/student-progress-backend/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的GORM实例，供项目其他部分使用
var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB(cfg config.SqliteConfig) {
	var err error

	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	// 连接到SQLite数据库
	DB, err = gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	fmt.Println("数据库连接成功！")
}

// IsRetryableError 判断一个数据库错误是否是可以通过重试解决的瞬时错误
// SQLite在并发写入时可能返回 busy/locked
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
