package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/eventopia/eventopia-api/api/swagger"
	"github.com/eventopia/eventopia-api/internal/handler"
	"github.com/eventopia/eventopia-api/internal/middleware"
	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/repository"
	"github.com/eventopia/eventopia-api/internal/service"
	"github.com/eventopia/eventopia-api/pkg/cache"
	"github.com/eventopia/eventopia-api/pkg/config"
	"github.com/eventopia/eventopia-api/pkg/database"
	"github.com/eventopia/eventopia-api/pkg/logger"
	corsmiddleware "github.com/eventopia/eventopia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eventopia/eventopia-api/pkg/middleware/requestid"
)

// @title Eventopia API
// @version 1.0.0
// @description College event management portal: event proposals, approvals, clubs, registrations and circulars
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	clubRepo := repository.NewClubRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	circularRepo := repository.NewCircularRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		SessionTTL:  cfg.Sessions.TTL,
		Issuer:      cfg.JWT.Issuer,
	})
	eventSvc := service.NewEventService(eventRepo, clubRepo, cacheRepo, cfg.Stats.CacheTTL, metricsSvc, validate, logr)
	clubSvc := service.NewClubService(clubRepo, validate, logr)
	promotionSvc := service.NewPromotionService(promotionRepo, validate, logr, service.PromotionConfig{
		SinglePending: cfg.Promotions.SinglePending,
	})
	circularSvc := service.NewCircularService(circularRepo, validate, logr)
	statsSvc := service.NewStatsService(statsRepo, cacheRepo, cfg.Stats.CacheTTL, metricsSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	clubHandler := handler.NewClubHandler(clubSvc)
	promotionHandler := handler.NewPromotionHandler(promotionSvc)
	circularHandler := handler.NewCircularHandler(circularSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		auth.PUT("/profile", middleware.JWT(authSvc), authHandler.UpdateProfile)
	}

	events := api.Group("/events")
	{
		events.GET("", middleware.OptionalJWT(authSvc), eventHandler.List)
		events.GET("/my", middleware.JWT(authSvc), eventHandler.MyEvents)
		events.GET("/pending", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleDepartmentHead), eventHandler.Pending)
		events.GET("/export", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleDepartmentHead, models.RoleAdmin), eventHandler.Export)
		events.GET("/:id", middleware.OptionalJWT(authSvc), eventHandler.Get)
		events.POST("", middleware.JWT(authSvc),
			middleware.Audit(userRepo, models.AuditActionEventCreate, "events"), eventHandler.Create)
		events.PUT("/:id", middleware.JWT(authSvc),
			middleware.Audit(userRepo, models.AuditActionEventUpdate, "events"), eventHandler.Update)
		events.DELETE("/:id", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionEventDelete, "events"), eventHandler.Delete)
		events.PUT("/:id/approve", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleDepartmentHead),
			middleware.Audit(userRepo, models.AuditActionEventApprove, "events"), eventHandler.Approve)
		events.PUT("/:id/reject", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleDepartmentHead),
			middleware.Audit(userRepo, models.AuditActionEventReject, "events"), eventHandler.Reject)
		events.GET("/:id/approvals", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleDepartmentHead), eventHandler.Approvals)
		events.POST("/:id/register", middleware.JWT(authSvc), eventHandler.Register)
		events.DELETE("/:id/register", middleware.JWT(authSvc), eventHandler.CancelRegistration)
		events.GET("/:id/registrations", middleware.JWT(authSvc), eventHandler.Registrations)
		events.GET("/:id/registrations/export", middleware.JWT(authSvc), eventHandler.ExportRegistrations)
	}

	clubs := api.Group("/clubs")
	{
		clubs.GET("", clubHandler.List)
		clubs.GET("/:id", clubHandler.Get)
		clubs.POST("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionClubCreate, "clubs"), clubHandler.Create)
		clubs.PUT("/:id", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin, models.RoleClubFaculty),
			middleware.Audit(userRepo, models.AuditActionClubUpdate, "clubs"), clubHandler.Update)
		clubs.DELETE("/:id", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionClubDelete, "clubs"), clubHandler.Delete)
		clubs.GET("/:id/members", clubHandler.Members)
		clubs.POST("/:id/members", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin, models.RoleClubFaculty), clubHandler.AddMember)
	}

	promotions := api.Group("/promotions")
	{
		promotions.POST("", middleware.JWT(authSvc), promotionHandler.Request)
		promotions.GET("/pending", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleDepartmentHead), promotionHandler.Pending)
		promotions.PUT("/:id/approve", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleDepartmentHead),
			middleware.Audit(userRepo, models.AuditActionPromotionApprove, "promotions"), promotionHandler.Approve)
		promotions.PUT("/:id/reject", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleDepartmentHead),
			middleware.Audit(userRepo, models.AuditActionPromotionReject, "promotions"), promotionHandler.Reject)
	}

	circulars := api.Group("/circulars")
	{
		circulars.GET("", circularHandler.List)
		circulars.POST("", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin, models.RoleDepartmentHead, models.RoleClubFaculty), circularHandler.Create)
		circulars.PUT("/:id", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin, models.RoleDepartmentHead, models.RoleClubFaculty), circularHandler.Update)
		circulars.DELETE("/:id", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin, models.RoleDepartmentHead), circularHandler.Delete)
	}

	stats := api.Group("/stats")
	{
		stats.GET("", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleDepartmentHead, models.RoleAdmin), statsHandler.System)
		stats.GET("/recent-decisions", middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleDepartmentHead, models.RoleAdmin), statsHandler.RecentDecisions)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Sessions.CleanupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		removed, err := userRepo.DeleteExpiredSessions(ctx, time.Now().UTC())
		if err != nil {
			logr.Error("session cleanup failed", zap.Error(err))
			return
		}
		if removed > 0 {
			logr.Info("expired sessions purged", zap.Int64("count", removed))
		}
	}); err != nil {
		logr.Fatal("invalid session cleanup schedule", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
