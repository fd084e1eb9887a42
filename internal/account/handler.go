package account

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authResponse 是注册/登录成功后的统一响应体
type authResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

// SignupHandler 处理账号注册请求
func SignupHandler(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体：需要合法邮箱和至少8位的密码"})
		return
	}

	acc, t, err := Signup(database.DB, req.Email, req.DisplayName, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "该邮箱已被注册"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败"})
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: t, Account: acc})
}

// LoginHandler 处理账号登录请求
func LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	acc, t, err := Login(database.DB, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "邮箱或密码不正确"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败"})
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: t, Account: acc})
}
