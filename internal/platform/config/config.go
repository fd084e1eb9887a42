package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Codeforces CodeforcesConfig `mapstructure:"codeforces"`
	Email      EmailConfig      `mapstructure:"email"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CodeforcesConfig 定义了Codeforces外部数据源的配置
type CodeforcesConfig struct {
	BaseURL           string  `mapstructure:"baseUrl"`
	TimeoutSeconds    int     `mapstructure:"timeoutSeconds"`
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
}

// EmailConfig 定义了提醒邮件SMTP发送的配置
// 密码等敏感信息推荐通过环境变量 EMAIL_PASSWORD 覆盖
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件；
// 文件不存在时回退到内置默认值（环境变量仍可覆盖）。
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 内置默认值
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.sqlite.path", "students.db")
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("codeforces.baseUrl", "https://codeforces.com/api")
	v.SetDefault("codeforces.timeoutSeconds", 15)
	v.SetDefault("codeforces.requestsPerSecond", 1)
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.port", 587)

	// 4. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 EMAIL_PASSWORD=xxx
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 5. 读取配置文件；找不到文件不是致命错误
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// 6. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}
