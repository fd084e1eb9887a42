package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// secretKey 存储用于签发JWT的HMAC密钥。
// 优先读取环境变量 JWT_SECRET；未配置时在启动期生成随机密钥
// （随机密钥会导致重启后所有旧token失效，仅适合开发环境）。
var secretKey []byte

const tokenTTL = 24 * time.Hour

// Claims 定义了登录token中携带的数据。
type Claims struct {
	AccountID uint   `json:"uid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// InitSecretKey 在应用启动时初始化签名密钥。
func InitSecretKey() {
	if env := os.Getenv("JWT_SECRET"); env != "" {
		secretKey = []byte(env)
		fmt.Println("JWT密钥已从环境变量加载。")
		return
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("JWT密钥已随机生成（仅限开发环境使用）。")
}

// GenerateToken 为指定账号签发一个带过期时间的JWT。
func GenerateToken(accountID uint, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("无法签发token: %w", err)
	}
	return signed, nil
}

// ParseToken 验证签名与有效期，并返回token中的Claims。
func ParseToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("无效的token")
	}
	return claims, nil
}
