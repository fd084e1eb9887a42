package account

import "gorm.io/gorm"

// Account 定义了可登录后台的教练/管理员账号
type Account struct {
	gorm.Model

	// Email 是登录用的邮箱，全局唯一
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// DisplayName 是展示用的名称
	DisplayName string `json:"displayName"`

	// PasswordHash 是bcrypt加密后的密码，绝不对外返回
	PasswordHash string `gorm:"not null" json:"-"`
}
