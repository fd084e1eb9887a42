package cfsync

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	// settingsKey 是全局同步配置单例行的固定键
	settingsKey = "app_settings"

	// DefaultCronSchedule 是默认的同步计划：每天UTC凌晨2点
	DefaultCronSchedule = "0 2 * * *"
)

// ErrInvalidCronSchedule 表示提交的cron表达式无法解析
var ErrInvalidCronSchedule = errors.New("无效的cron表达式")

// SyncSettings 定义了全局同步配置的单例表结构
// 整个系统只有一行记录，由固定的SingletonKey标识
type SyncSettings struct {
	gorm.Model

	// SingletonKey 是固定标识，保证全表只有一行
	SingletonKey string `gorm:"uniqueIndex;not null" json:"-"`

	// CronSchedule 是同步任务的cron表达式（5字段，UTC语义）
	// 该字符串会被持久化并原样返回给前端表单
	CronSchedule string `gorm:"not null" json:"cronSchedule"`

	// FrequencyUnit / FrequencyValue 仅用于前端表单回显，
	// 不参与调度判断，CronSchedule才是唯一权威
	FrequencyUnit  string `json:"cronFrequencyUnit"`
	FrequencyValue int    `json:"cronFrequencyValue"`

	// LastRunAt 是最近一次定时同步开始执行的时间
	LastRunAt *time.Time `json:"lastCronRun"`
}

// ValidateCronSchedule 校验5字段cron表达式
func ValidateCronSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidCronSchedule, schedule, err)
	}
	return nil
}

// GetOrCreateSettings 读取全局同步配置；首次读取时以默认值惰性创建
func GetOrCreateSettings(db *gorm.DB) (*SyncSettings, error) {
	var settings SyncSettings
	err := db.Where("singleton_key = ?", settingsKey).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("无法读取同步配置: %w", err)
	}

	settings = SyncSettings{
		SingletonKey:   settingsKey,
		CronSchedule:   DefaultCronSchedule,
		FrequencyUnit:  "day",
		FrequencyValue: 1,
	}
	if err := db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("无法创建默认同步配置: %w", err)
	}
	fmt.Println("同步配置: 已按默认值创建全局配置。")
	return &settings, nil
}

// SettingsUpdate 定义了可修改的配置字段，nil表示不修改
type SettingsUpdate struct {
	CronSchedule   *string
	FrequencyUnit  *string
	FrequencyValue *int
}

// UpdateSettings 修改全局同步配置并返回最新值
// cron表达式在落库前校验，保证调度器重启时读到的永远是合法表达式
func UpdateSettings(db *gorm.DB, update SettingsUpdate) (*SyncSettings, error) {
	settings, err := GetOrCreateSettings(db)
	if err != nil {
		return nil, err
	}

	if update.CronSchedule != nil {
		if err := ValidateCronSchedule(*update.CronSchedule); err != nil {
			return nil, err
		}
		settings.CronSchedule = *update.CronSchedule
	}
	if update.FrequencyUnit != nil {
		settings.FrequencyUnit = *update.FrequencyUnit
	}
	if update.FrequencyValue != nil {
		settings.FrequencyValue = *update.FrequencyValue
	}

	if err := db.Save(settings).Error; err != nil {
		return nil, fmt.Errorf("无法保存同步配置: %w", err)
	}
	return settings, nil
}

// TouchLastRun 记录一次定时同步的开始时间
func TouchLastRun(db *gorm.DB, at time.Time) error {
	settings, err := GetOrCreateSettings(db)
	if err != nil {
		return err
	}
	settings.LastRunAt = &at
	if err := db.Save(settings).Error; err != nil {
		return fmt.Errorf("无法更新LastRunAt: %w", err)
	}
	return nil
}
