package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tle-mentors/student-progress-backend/internal/account"
	"github.com/tle-mentors/student-progress-backend/internal/cfsync"
	"github.com/tle-mentors/student-progress-backend/internal/platform/config"
	"github.com/tle-mentors/student-progress-backend/internal/student"
)

// SetupRouter 装配gin引擎：CORS、健康检查和全部业务路由
func SetupRouter(cfg *config.Config, syncHandler *cfsync.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.Cors.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/signup", account.SignupHandler)
			authGroup.POST("/login", account.LoginHandler)
		}

		// 业务接口统一要求登录
		protected := apiGroup.Group("")
		protected.Use(account.RequireAuth())
		{
			students := protected.Group("/students")
			{
				students.GET("", student.GetStudents)
				students.POST("", student.AddStudent)
				students.GET("/csv", student.DownloadStudentsCsv)
				students.GET("/:id", student.GetStudent)
				students.GET("/:id/profile", student.GetStudentProfile)
				students.PUT("/:id", student.UpdateStudentByID)
				students.DELETE("/:id", student.DeleteStudent)
			}

			settings := protected.Group("/settings")
			{
				settings.GET("", syncHandler.GetSettings)
				settings.PUT("", syncHandler.UpdateSettings)
			}

			protected.POST("/sync/run", syncHandler.TriggerFullSync)
		}
	}

	return router
}
