package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"court_transfer_app_go/config"
	"court_transfer_app_go/db"
	"court_transfer_app_go/handlers"
	"court_transfer_app_go/logging"
	"court_transfer_app_go/metrics"
	"court_transfer_app_go/middleware"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"
	"court_transfer_app_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.Init(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Sync()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := services.SeedReferenceData(db.DB); err != nil {
		logger.Fatal("failed to seed reference data", zap.Error(err))
	}
	if err := services.SeedAdminFromEnv(db.DB); err != nil {
		logger.Fatal("failed to seed admin user", zap.Error(err))
	}

	services.InitializeStorage(cfg)
	metrics.Register()

	scheduler, err := jobs.StartScheduler(db.DB, cfg, services.Storage)
	if err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	if _, err := scheduler.AddFunc("@every 5m", func() {
		middleware.LoginRateLimiter.Cleanup()
		middleware.APIRateLimiter.Cleanup()
	}); err != nil {
		logger.Fatal("failed to schedule rate limiter cleanup", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))
	e.Use(echomiddleware.BodyLimit("60M"))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	issuer := services.NewTokenIssuer(cfg)
	admin := models.PermissionAdmin

	// Operational routes
	e.GET("/healthz", handlers.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	api.Use(middleware.APIRateLimiter.Middleware())

	// Public routes
	api.POST("/auth/login", handlers.LoginHandler,
		middleware.LoginRateLimiter.Middleware(), middleware.Audited("Auth", "Login"))

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(issuer))
	{
		protected.GET("/auth/me", handlers.GetCurrentUserHandler)

		// Users
		protected.GET("/users/mine", handlers.GetCurrentUserHandler)
		protected.GET("/users", handlers.GetUsersHandler,
			middleware.Audited("User", "GetAll"), middleware.RequirePermission(admin, models.PermissionUserGetAll))
		protected.POST("/users", handlers.RegisterUserHandler,
			middleware.Audited("User", "Register"), middleware.RequirePermission(admin, models.PermissionUserRegister))

		// Reference data
		protected.GET("/courthouses", handlers.GetCourthousesHandler)
		protected.POST("/courthouses", handlers.CreateCourthouseHandler,
			middleware.Audited("Courthouse", "Create"), middleware.RequirePermission(admin, models.PermissionCourthouseCreate))
		protected.GET("/titles", handlers.GetTitlesHandler)
		protected.POST("/titles", handlers.CreateTitleHandler,
			middleware.Audited("Title", "Create"), middleware.RequirePermission(admin, models.PermissionTitleCreate))
		protected.GET("/transfer-request-types", handlers.GetTransferRequestTypesHandler)
		protected.POST("/transfer-request-types", handlers.CreateTransferRequestTypeHandler,
			middleware.Audited("TransferRequestType", "Create"), middleware.RequirePermission(admin, models.PermissionTransferRequestTypeCreate))
		protected.GET("/transfer-request-statuses", handlers.GetTransferRequestStatusesHandler)

		// Permissions
		protected.GET("/permissions", handlers.GetPermissionsHandler)
		protected.POST("/permissions/check", handlers.CheckPermissionsHandler)
		protected.POST("/permissions", handlers.CreatePermissionHandler,
			middleware.Audited("Permission", "Create"), middleware.RequirePermission(admin, models.PermissionPermissionCreate))
		protected.DELETE("/permissions/:id", handlers.DeletePermissionHandler,
			middleware.Audited("Permission", "Delete"), middleware.RequirePermission(admin))
		protected.GET("/permission-claims", handlers.GetPermissionClaimsHandler,
			middleware.RequirePermission(admin, models.PermissionUserPermissionClaimCreate, models.PermissionUserPermissionClaimDelete))
		protected.POST("/permission-claims", handlers.CreatePermissionClaimHandler,
			middleware.Audited("UserPermissionClaim", "Create"), middleware.RequirePermission(admin, models.PermissionUserPermissionClaimCreate))
		protected.DELETE("/permission-claims/:id", handlers.DeletePermissionClaimHandler,
			middleware.Audited("UserPermissionClaim", "Delete"), middleware.RequirePermission(admin, models.PermissionUserPermissionClaimDelete))

		// Transfer requests
		transfers := protected.Group("/transfer-requests")
		{
			reviewers := middleware.RequirePermission(admin, models.PermissionTransferRequestGetAllUsers)

			transfers.POST("", handlers.CreateTransferRequestHandler, middleware.Audited("TransferRequest", "Create"))
			transfers.GET("/mine", handlers.GetMyTransferRequestsHandler, middleware.Audited("TransferRequest", "Mine"))
			transfers.GET("/admin", handlers.GetTransferRequestsForReviewHandler, middleware.Audited("TransferRequest", "GetAllUsers"), reviewers)
			transfers.GET("/export", handlers.ExportTransferRequestsHandler, middleware.Audited("TransferRequest", "Export"), reviewers)
			transfers.GET("/:id", handlers.GetTransferRequestHandler, middleware.Audited("TransferRequest", "Get"))
			transfers.GET("/:id/sources/:sourceId", handlers.DownloadTransferRequestSourceHandler, middleware.Audited("TransferRequest", "GetSource"))
			transfers.DELETE("/:id", handlers.CancelTransferRequestHandler, middleware.Audited("TransferRequest", "Cancel"))
			transfers.PUT("/:id", handlers.DecideTransferRequestHandler,
				middleware.Audited("TransferRequest", "UpdateApproveStatus"), middleware.RequirePermission(admin, models.PermissionTransferRequestUpdateApproveStat))
		}

		// Audit log
		logs := protected.Group("/log-entries")
		logs.Use(middleware.RequirePermission(admin, models.PermissionLogEntryGetAll))
		{
			logs.GET("", handlers.GetLogEntriesHandler)
			logs.GET("/export", handlers.ExportLogEntriesHandler, middleware.Audited("LogEntry", "Export"))
		}
	}

	// Start server
	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
