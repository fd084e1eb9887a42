package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tle-mentors/student-progress-backend/internal/platform/config"
)

// RDB 是一个全局的Redis客户端实例，供项目其他部分使用
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接
func InitRedis(cfg config.RedisConfig) {
	// 创建一个新的Redis客户端
	// 使用从配置文件加载的参数
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	// Redis在本系统中仅承担协调职责（同步运行锁），连接失败不阻止启动
	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		fmt.Printf("警告: 无法连接到Redis: %v（同步运行锁将被禁用）\n", err)
		UpdateStatus(false)
		return
	}

	fmt.Println("Redis 连接成功！")
}
