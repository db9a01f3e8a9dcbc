package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/config"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/handler"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/middleware"
	"github.com/stemsi/tuition-backend/internal/repository"
	"github.com/stemsi/tuition-backend/internal/router"
	"github.com/stemsi/tuition-backend/internal/service"
	"github.com/stemsi/tuition-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Location.String()).
		Msg("Starting Tuition Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	db, err := database.NewPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	settingRepo := repository.NewSettingRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// ─── Initialize Services ──────────────────────────────────────────
	today := service.LocalClock(cfg.Location)

	authService := service.NewAuthService(cfg, rdb, adminRepo, roleRepo)
	adminService := service.NewAdminService(adminRepo, roleRepo)
	settingService := service.NewSettingService(settingRepo, rdb, log)
	classService := service.NewClassService(classRepo, studentRepo, attendanceRepo, today, log)
	studentService := service.NewStudentService(studentRepo, classRepo, today, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, cfg.BulkParallelism, log)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, classRepo, attendanceRepo, settingService, today, log)
	portalService := service.NewPortalService(studentRepo, classRepo, attendanceRepo, paymentService, rdb, cfg.PortalCacheTTL, today, log)
	dashboardService := service.NewDashboardService(dashboardRepo, studentRepo, classService, paymentService, today, log)

	// Cached portal views are dropped whenever a student's data changes.
	studentService.Notify(portalService)
	classService.Notify(portalService)
	settingService.Notify(portalService)
	attendanceService.Notify(portalService)
	paymentService.Notify(portalService)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, adminService),
		Portal:     handler.NewPortalHandler(portalService),
		Class:      handler.NewClassHandler(classService),
		Student:    handler.NewStudentHandler(studentService, paymentService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Payment:    handler.NewPaymentHandler(paymentService),
		Setting:    handler.NewSettingHandler(settingService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": db.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	}

	// ─── Rate Limiter ─────────────────────────────────────────────────
	portalLimiter := middleware.NewRateLimiter(cfg.PortalRatePerMinute, time.Minute)
	go portalLimiter.Run(ctx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, portalLimiter, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
