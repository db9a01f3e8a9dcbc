package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/tuition-backend/internal/config"
	"github.com/stemsi/tuition-backend/internal/handler"
	"github.com/stemsi/tuition-backend/internal/middleware"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/response"
	"github.com/stemsi/tuition-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Portal     *handler.PortalHandler
	Class      *handler.ClassHandler
	Student    *handler.StudentHandler
	Attendance *handler.AttendanceHandler
	Payment    *handler.PaymentHandler
	Setting    *handler.SettingHandler
	Dashboard  *handler.DashboardHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	portalLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// ─── 0. Public Group (No Auth, Rate Limited) ───────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(portalLimiter.Middleware())
	{
		publicAPI.GET("/portal", handlers.Portal.Lookup)
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", portalLimiter.Middleware(), handlers.Auth.AdminLogin)
		auth.POST("/admin/logout", middleware.RequireAdminJWT(authService), handlers.Auth.AdminLogout)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Dashboard
		adminAPI.GET("/dashboard",
			handlers.Dashboard.GetDashboardData, // Open to all admins
		)

		// Classes
		classes := adminAPI.Group("/classes")
		{
			classes.GET("", middleware.RequirePermission(model.PermissionClassesRead), handlers.Class.ListClasses)
			classes.GET("/today", middleware.RequirePermission(model.PermissionClassesRead), handlers.Class.TodayBoard)
			classes.GET("/:id", middleware.RequirePermission(model.PermissionClassesRead), handlers.Class.GetClass)
			classes.POST("", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.CreateClass)
			classes.PUT("/:id", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.UpdateClass)
			classes.DELETE("/:id", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.DeleteClass)
			classes.POST("/:id/close", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.CloseClass)
			classes.POST("/:id/reopen", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.ReopenClass)
		}

		// Students
		students := adminAPI.Group("/students")
		{
			students.GET("", middleware.RequirePermission(model.PermissionStudentsRead), handlers.Student.ListStudents)
			students.GET("/:id", middleware.RequirePermission(model.PermissionStudentsRead), handlers.Student.GetStudent)
			students.POST("", middleware.RequirePermission(model.PermissionStudentsWrite), handlers.Student.CreateStudent)
			students.PUT("/:id", middleware.RequirePermission(model.PermissionStudentsWrite), handlers.Student.UpdateStudent)
			students.DELETE("/:id", middleware.RequirePermission(model.PermissionStudentsWrite), handlers.Student.DeleteStudent)
			students.POST("/:id/suspend", middleware.RequirePermission(model.PermissionStudentsWrite), handlers.Student.SuspendStudent)
			students.POST("/:id/restart", middleware.RequirePermission(model.PermissionStudentsWrite), handlers.Student.RestartStudent)
			students.POST("/:id/deactivate", middleware.RequirePermission(model.PermissionStudentsWrite), handlers.Student.DeactivateStudent)
			students.GET("/:id/payment-status",
				middleware.RequirePermission(model.PermissionPaymentsRead),
				handlers.Student.GetPaymentStatus,
			)
		}

		// Attendance
		attendance := adminAPI.Group("/attendance")
		{
			attendance.GET("", middleware.RequirePermission(model.PermissionAttendanceRead), handlers.Attendance.ListAttendance)
			attendance.GET("/summary", middleware.RequirePermission(model.PermissionAttendanceRead), handlers.Attendance.GetSummary)
			attendance.POST("", middleware.RequirePermission(model.PermissionAttendanceWrite), handlers.Attendance.CreateAttendance)
			attendance.PUT("/:id", middleware.RequirePermission(model.PermissionAttendanceWrite), handlers.Attendance.UpdateAttendance)
			attendance.DELETE("/:id", middleware.RequirePermission(model.PermissionAttendanceWrite), handlers.Attendance.DeleteAttendance)
			attendance.POST("/bulk-delete", middleware.RequirePermission(model.PermissionAttendanceWrite), handlers.Attendance.BulkDelete)
		}

		// Payments
		payments := adminAPI.Group("/payments")
		{
			payments.GET("", middleware.RequirePermission(model.PermissionPaymentsRead), handlers.Payment.ListPayments)
			payments.GET("/quote", middleware.RequirePermission(model.PermissionPaymentsRead), handlers.Payment.GetQuote)
			payments.GET("/:id", middleware.RequirePermission(model.PermissionPaymentsRead), handlers.Payment.GetPayment)
			payments.POST("", middleware.RequirePermission(model.PermissionPaymentsWrite), handlers.Payment.CreatePayment)
			payments.PUT("/:id", middleware.RequirePermission(model.PermissionPaymentsWrite), handlers.Payment.UpdatePayment)
			payments.DELETE("/:id", middleware.RequirePermission(model.PermissionPaymentsWrite), handlers.Payment.DeletePayment)
			payments.POST("/:id/prorate", middleware.RequirePermission(model.PermissionPaymentsProrate), handlers.Payment.ProratePayment)
		}

		// App Settings Routes
		settings := adminAPI.Group("/settings")
		{
			settings.GET("", middleware.RequirePermission(model.PermissionSettingsRead), handlers.Setting.GetAllSettings)
			settings.PUT("", middleware.RequirePermission(model.PermissionSettingsWrite), handlers.Setting.UpdateSettings)
			settings.GET("/fee-mode", middleware.RequirePermission(model.PermissionSettingsRead), handlers.Setting.GetFeeMode)
			settings.PUT("/fee-mode", middleware.RequirePermission(model.PermissionSettingsWrite), handlers.Setting.UpdateFeeMode)
		}
	}

	return router
}
