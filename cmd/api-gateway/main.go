package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/workstream-hq/hr-attend-api/api/swagger"
	"github.com/workstream-hq/hr-attend-api/internal/handler"
	"github.com/workstream-hq/hr-attend-api/internal/middleware"
	"github.com/workstream-hq/hr-attend-api/internal/models"
	"github.com/workstream-hq/hr-attend-api/internal/repository"
	"github.com/workstream-hq/hr-attend-api/internal/service"
	"github.com/workstream-hq/hr-attend-api/pkg/cache"
	"github.com/workstream-hq/hr-attend-api/pkg/config"
	"github.com/workstream-hq/hr-attend-api/pkg/database"
	"github.com/workstream-hq/hr-attend-api/pkg/logger"
	corsmiddleware "github.com/workstream-hq/hr-attend-api/pkg/middleware/cors"
	reqidmiddleware "github.com/workstream-hq/hr-attend-api/pkg/middleware/requestid"
	"github.com/workstream-hq/hr-attend-api/pkg/orgtime"
)

// @title HR Attendance & Leave Reconciliation API
// @version 1.0.0
// @description Attendance ledger, leave state machine and daily reconciliation engine
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	calendar, err := orgtime.NewCalendar(cfg.Attendance.Timezone)
	if err != nil {
		logr.Fatal("invalid organization timezone", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	validate := validator.New()

	attendanceRepo := repository.NewAttendanceRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	runLock := cache.NewRunLock(redisClient, cfg.Scheduler.LockTTL)

	leaveDefaults := map[models.LeaveType]float64{
		models.LeaveTypeCasual: cfg.Leave.CasualDays,
		models.LeaveTypeSick:   cfg.Leave.SickDays,
		models.LeaveTypeAnnual: cfg.Leave.AnnualDays,
	}

	metricsSvc := service.NewMetricsService()
	attendanceSvc := service.NewAttendanceService(attendanceRepo, employeeRepo, cacheRepo, calendar, service.AttendanceConfig{
		LateCutoff:   cfg.Attendance.LateCutoff,
		HalfDayHours: cfg.Attendance.HalfDayHours,
		CacheTTL:     cfg.Attendance.SummaryCacheTTL,
	}, validate, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, balanceRepo, attendanceRepo, employeeRepo, departmentRepo, calendar, leaveDefaults, validate, logr)
	reconciliationSvc := service.NewReconciliationService(attendanceRepo, leaveRepo, employeeRepo, holidayRepo, runLock, metricsSvc, calendar, service.ReconciliationConfig{
		AutoCheckoutAt: cfg.Scheduler.AutoCheckoutAt,
		HalfDayHours:   cfg.Attendance.HalfDayHours,
	}, logr)

	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	leaveHandler := handler.NewLeaveHandler(leaveSvc)
	schedulerHandler := handler.NewSchedulerHandler(reconciliationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))

	attendance := api.Group("/attendance")
	{
		attendance.POST("/check-in", attendanceHandler.CheckIn)
		attendance.POST("/check-out", attendanceHandler.CheckOut)
		attendance.GET("/today", attendanceHandler.Today)
		attendance.GET("", attendanceHandler.Monthly)
		attendance.PUT("/manual", middleware.RequireRoles(models.RoleHR, models.RoleAdmin), attendanceHandler.ManualCorrect)
		attendance.GET("/report/export", middleware.RequireRoles(models.RoleHR, models.RoleAdmin, models.RoleManager), attendanceHandler.Export)
	}

	leaves := api.Group("/leaves")
	{
		leaves.POST("", leaveHandler.Apply)
		leaves.GET("", leaveHandler.List)
		leaves.GET("/pending", middleware.RequireRoles(models.RoleHR, models.RoleAdmin, models.RoleManager), leaveHandler.Pending)
		leaves.GET("/balance", leaveHandler.Balances)
		leaves.PUT("/balance/total", middleware.RequireRoles(models.RoleHR, models.RoleAdmin), leaveHandler.SetBalanceTotal)
		leaves.POST("/:id/cancel", leaveHandler.Cancel)
		leaves.POST("/:id/review", middleware.RequireRoles(models.RoleHR, models.RoleAdmin, models.RoleManager), leaveHandler.Review)
	}

	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin, models.RoleHR))
	{
		admin.POST("/reconciliation/run", schedulerHandler.Run)
		admin.GET("/metrics/summary", metricsHandler.Summary)
	}

	if cfg.Scheduler.Enabled {
		go runDailyReconciliation(cfg, calendar, reconciliationSvc, logr)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// runDailyReconciliation fires the pipeline once per day at the configured
// local wall clock. The Redis run lock keeps replicas from double-running.
func runDailyReconciliation(cfg *config.Config, calendar *orgtime.Calendar, svc *service.ReconciliationService, logr *zap.Logger) {
	for {
		now := time.Now().In(calendar.Location())
		next, err := calendar.ClockOn(calendar.DayOf(now), cfg.Scheduler.TriggerAt)
		if err != nil {
			logr.Error("invalid scheduler trigger clock",
				zap.String("trigger_at", cfg.Scheduler.TriggerAt), zap.Error(err))
			return
		}
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		logr.Info("reconciliation scheduled", zap.Time("next_run", next))
		time.Sleep(time.Until(next))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.LockTTL)
		if _, err := svc.RunForDate(ctx, next); err != nil {
			logr.Error("scheduled reconciliation failed", zap.Error(err))
		}
		cancel()
	}
}
