package account

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tle-mentors/student-progress-backend/pkg/token"
)

var (
	// ErrEmailTaken 表示该邮箱已注册
	ErrEmailTaken = errors.New("该邮箱已被注册")
	// ErrInvalidCredentials 表示邮箱或密码不正确
	// 对外不区分具体哪一项错误，避免泄露账号是否存在
	ErrInvalidCredentials = errors.New("邮箱或密码不正确")
)

// Signup 创建一个新账号并返回登录token
func Signup(db *gorm.DB, email, displayName, password string) (*Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("邮箱和密码不能为空: %w", ErrInvalidCredentials)
	}

	var existing Account
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("无法检查账号唯一性: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("无法加密密码: %w", err)
	}

	acc := Account{Email: email, DisplayName: displayName, PasswordHash: string(hash)}
	if err := db.Create(&acc).Error; err != nil {
		return nil, "", fmt.Errorf("无法创建账号: %w", err)
	}

	t, err := token.GenerateToken(acc.ID, acc.Email)
	if err != nil {
		return nil, "", err
	}
	return &acc, t, nil
}

// Login 校验邮箱密码并返回登录token
func Login(db *gorm.DB, email, password string) (*Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var acc Account
	err := db.Where("email = ?", email).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("无法查询账号: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	t, err := token.GenerateToken(acc.ID, acc.Email)
	if err != nil {
		return nil, "", err
	}
	return &acc, t, nil
}
