package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tle-mentors/student-progress-backend/api"
	"github.com/tle-mentors/student-progress-backend/internal/cfsync"
	"github.com/tle-mentors/student-progress-backend/internal/codeforces"
	"github.com/tle-mentors/student-progress-backend/internal/notifier"
	"github.com/tle-mentors/student-progress-backend/internal/platform/config"
	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
	"github.com/tle-mentors/student-progress-backend/internal/platform/health"
	"github.com/tle-mentors/student-progress-backend/internal/platform/shutdown"
	"github.com/tle-mentors/student-progress-backend/internal/platform/startup"
	"github.com/tle-mentors/student-progress-backend/internal/student"
	"github.com/tle-mentors/student-progress-backend/pkg/lifecycle"
	"github.com/tle-mentors/student-progress-backend/pkg/token"
)

func main() {
	// .env 仅用于本地开发，不存在时静默跳过
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("致命错误: 无法加载配置: %v\n", err)
		os.Exit(1)
	}

	token.InitSecretKey()

	database.InitDB(cfg.Database.Sqlite)
	// Redis不可用不阻止启动，同步锁与健康状态会自动降级
	database.InitRedis(cfg.Database.Redis)

	if err := startup.InitializeApplication(); err != nil {
		fmt.Printf("致命错误: 应用初始化失败: %v\n", err)
		os.Exit(1)
	}

	// --- 组装同步引擎 ---
	client := codeforces.NewClient(cfg.Codeforces)
	sender := notifier.NewEmailNotifier(cfg.Email)
	reconciler := cfsync.NewReconciler(database.DB, client)
	evaluator := cfsync.NewEvaluator(database.DB, sender)
	orchestrator := cfsync.NewOrchestrator(database.DB, reconciler, evaluator)
	scheduler := cfsync.NewScheduler(database.DB, orchestrator)
	runner := cfsync.NewRunner(64)

	// 学员创建或handle变更后，由后台队列执行即时同步
	student.SetSyncTrigger(func(studentID uint, handle string) {
		name := fmt.Sprintf("sync-student-%d", studentID)
		runner.Submit(name, func(h *lifecycle.Handle) {
			if err := orchestrator.RunSingleStudentSync(h.Ctx(), studentID); err != nil {
				fmt.Printf("警告: 学员 %d (%s) 的即时同步失败: %v\n", studentID, handle, err)
			}
		})
	})

	// --- 后台服务 ---
	coordinator := shutdown.NewCoordinator()
	if err := coordinator.ServiceManager.Go("redis-health-checker", health.StartRedisHealthCheck); err != nil {
		fmt.Printf("致命错误: 无法启动Redis健康检查: %v\n", err)
		os.Exit(1)
	}
	if err := coordinator.ServiceManager.Go("sync-task-runner", runner.Serve); err != nil {
		fmt.Printf("致命错误: 无法启动后台任务队列: %v\n", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		fmt.Printf("致命错误: 无法启动同步调度器: %v\n", err)
		os.Exit(1)
	}

	// --- HTTP入口 ---
	syncHandler := cfsync.NewHandler(scheduler, orchestrator, runner)
	router := api.SetupRouter(cfg, syncHandler)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		fmt.Printf("服务器启动，监听地址 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("致命错误: HTTP服务器异常退出: %v\n", err)
			os.Exit(1)
		}
	}()

	coordinator.WaitAndShutdown(server, scheduler)
}
