package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alainmurenzi/smart-edu-task-manager/config"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/api/handler"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/api/middleware"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/jwt"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/redis"
)

const (
	// 附件上传（任务/提交）允许的最大请求体
	maxBodyBytes = 20 << 20

	// 认证入口限流：同一 IP 每分钟最多 10 次
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, authRateLimit, authRateWindow))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/register/teacher", h.Auth.RegisterTeacher)
			auth.POST("/register/student", h.Auth.RegisterStudent)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.Me)
				users.GET("", middleware.RoleAuth("admin"), h.User.List)
				users.GET("/:id", h.User.Get) // 学生仅可查本人（Service 层鉴权）
				users.PUT("/:id", h.User.Update)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.Delete)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.List)
				classes.GET("/:id", h.Class.Get)
				classes.POST("", middleware.RoleAuth("admin"), h.Class.Create)
				classes.PUT("/:id", middleware.RoleAuth("admin"), h.Class.Update)
				classes.DELETE("/:id", middleware.RoleAuth("admin"), h.Class.Delete)
				classes.GET("/:id/students", middleware.RoleAuth("teacher", "admin"), h.Class.ListStudents)

				// 班级-科目-教师 任教关系
				classes.POST("/:id/subjects/:sid/teachers", middleware.RoleAuth("admin"), h.Subject.AssignTeacher)
				classes.DELETE("/:id/subjects/:sid/teachers/:tid", middleware.RoleAuth("admin"), h.Subject.RemoveTeacher)
			}

			// 科目模块
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.List)
				subjects.GET("/:id", h.Subject.Get)
				subjects.POST("", middleware.RoleAuth("admin"), h.Subject.Create)
				subjects.PUT("/:id", middleware.RoleAuth("admin"), h.Subject.Update)
				subjects.DELETE("/:id", middleware.RoleAuth("admin"), h.Subject.Delete)
			}
			authorized.GET("/teachers/:id/teaching", h.Subject.ListTeaching)

			// 任务模块（教师/管理员）
			tasks := authorized.Group("/tasks")
			tasks.Use(middleware.RoleAuth("teacher", "admin"))
			{
				tasks.POST("", h.Task.Create)
				tasks.GET("", h.Task.List)
				tasks.GET("/:id", h.Task.Get)
				tasks.PUT("/:id", middleware.RoleAuth("admin"), h.Task.Update)
				tasks.DELETE("/:id", middleware.RoleAuth("admin"), h.Task.Delete)
				tasks.POST("/:id/assign", h.Task.Assign)
				tasks.POST("/:id/reassign", h.Task.Reassign)
				tasks.POST("/priority/suggest", h.Task.SuggestPriority)
			}
			// 任务附件：学生也可下载（Service 层校验其持有该任务的分配记录）
			authorized.GET("/tasks/:id/file", h.Task.DownloadFile)

			// 任务分配模块（学生侧）
			assignments := authorized.Group("/assignments")
			{
				assignments.GET("", h.Assignment.Dashboard)
				assignments.GET("/calendar.ics", h.Assignment.Calendar)
				assignments.GET("/:id", h.Assignment.Get)
				assignments.POST("/:id/start", h.Assignment.Start)
				assignments.POST("/:id/submissions", h.Assignment.Submit)
				assignments.GET("/:id/submissions", h.Assignment.ListSubmissions)
			}

			// 提交模块（批改与附件）
			submissions := authorized.Group("/submissions")
			{
				submissions.POST("/:id/feedback", middleware.RoleAuth("teacher", "admin"), h.Assignment.Feedback)
				submissions.GET("/:id/file", h.Assignment.DownloadSubmissionFile)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.POST("/read/:id", h.Notification.MarkRead)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
				notifications.POST("/broadcast", middleware.RoleAuth("admin"), h.Notification.Broadcast)
			}

			// 导出模块
			export := authorized.Group("/export")
			export.Use(middleware.RoleAuth("admin"))
			{
				export.GET("/users.xlsx", h.Export.ExportUsers)
				export.GET("/tasks.xlsx", h.Export.ExportTasks)
			}

			// 统计模块
			stats := authorized.Group("/stats")
			{
				stats.GET("/overview", middleware.RoleAuth("admin"), h.Stats.Overview)
				stats.GET("/students", middleware.RoleAuth("teacher", "admin"), h.Stats.StudentProgress)
			}
		}
	}

	return r
}
