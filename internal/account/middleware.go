package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tle-mentors/student-progress-backend/pkg/token"
)

// ContextKeyAccountID 是存入gin上下文的当前登录账号ID的键
const ContextKeyAccountID = "accountID"

// RequireAuth 校验Authorization头中的Bearer token
// 校验通过后把账号ID写入上下文供后续处理器使用
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少Authorization头"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization头格式应为 Bearer {token}"})
			return
		}

		claims, err := token.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效或已过期的token"})
			return
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Next()
	}
}
