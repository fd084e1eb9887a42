package cfsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGetOrCreateSettingsDefaults(t *testing.T) {
	db := newTestDB(t)

	settings, err := GetOrCreateSettings(db)
	require.NoError(t, err)
	assert.Equal(t, DefaultCronSchedule, settings.CronSchedule)
	assert.Nil(t, settings.LastRunAt)

	// 第二次读取返回同一行，不会重复创建
	again, err := GetOrCreateSettings(db)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)

	var count int64
	db.Model(&SyncSettings{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpdateSettingsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	updated, err := UpdateSettings(db, SettingsUpdate{
		CronSchedule:   strPtr("*/15 * * * *"),
		FrequencyUnit:  strPtr("minute"),
		FrequencyValue: intPtr(15),
	})
	require.NoError(t, err)
	assert.Equal(t, "*/15 * * * *", updated.CronSchedule)
	assert.Equal(t, "minute", updated.FrequencyUnit)
	assert.Equal(t, 15, updated.FrequencyValue)

	reloaded, err := GetOrCreateSettings(db)
	require.NoError(t, err)
	assert.Equal(t, "*/15 * * * *", reloaded.CronSchedule)
}

func TestUpdateSettingsRejectsInvalidCron(t *testing.T) {
	db := newTestDB(t)

	_, err := UpdateSettings(db, SettingsUpdate{CronSchedule: strPtr("not a cron")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCronSchedule)

	// 非法表达式不应污染已存储的配置
	settings, err := GetOrCreateSettings(db)
	require.NoError(t, err)
	assert.Equal(t, DefaultCronSchedule, settings.CronSchedule)
}

func TestTouchLastRun(t *testing.T) {
	db := newTestDB(t)
	at := time.Date(2026, 8, 29, 2, 0, 0, 0, time.UTC)

	require.NoError(t, TouchLastRun(db, at))

	settings, err := GetOrCreateSettings(db)
	require.NoError(t, err)
	require.NotNil(t, settings.LastRunAt)
	assert.True(t, settings.LastRunAt.Equal(at))
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 2 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.Error(t, ValidateCronSchedule(""))
	assert.Error(t, ValidateCronSchedule("61 * * * *"))
}
