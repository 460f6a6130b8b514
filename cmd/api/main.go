package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"hogar/internal/config"
	"hogar/internal/database"
	"hogar/internal/handlers"
	"hogar/internal/logger"
	"hogar/internal/middleware"
	"hogar/internal/push"
	"hogar/internal/realtime"
	"hogar/internal/services"
	"hogar/internal/validator"

	_ "hogar/internal/docs" // Import swagger docs
)

// @title           Hogar API
// @version         1.0
// @description     Hogar is a shared household finance backend: households, invites, a common ledger, savings goals, planned and recurring entries.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Realtime and push delivery
	hub := realtime.NewHub(logger.For("realtime"), appConfig.AllowedOrigins...)
	sender := push.NewSender(push.Config{
		VAPIDPublicKey:  appConfig.VAPIDPublicKey,
		VAPIDPrivateKey: appConfig.VAPIDPrivateKey,
		Subscriber:      appConfig.VAPIDSubscriber,
	})
	if !appConfig.PushEnabled() {
		log.Warn("VAPID keys not set, web push disabled")
	}

	// Initialize services
	db := dbManager.DB()
	members := services.NewMembershipService(db)
	notifier := services.NewNotificationService(db, hub, sender)
	auditService := services.NewAuditService(db)

	h := handlers.Handlers{
		Auth:      handlers.NewAuthHandler(services.NewUserService(db), auditService),
		Household: handlers.NewHouseholdHandler(services.NewHouseholdService(db, members), auditService),
		Invite:    handlers.NewInviteHandler(services.NewInviteService(db, members, notifier, appConfig.InvitePepper), auditService),
		Entry:     handlers.NewEntryHandler(services.NewLedgerService(db, members), auditService),
		Savings:   handlers.NewSavingsHandler(services.NewSavingsService(db, members), auditService),
		Planned:   handlers.NewPlannedHandler(services.NewPlannedService(db, members), auditService),
		Recurring: handlers.NewRecurringHandler(services.NewRecurringService(db, members), auditService),
		Device:    handlers.NewDeviceHandler(services.NewDeviceService(db), sender.VAPIDPublicKey()),
		Realtime:  handlers.NewRealtimeHandler(hub),
	}

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "realtime_clients": hub.ClientCount()})
	})

	router.GET("/metrics", middleware.APIKeyMiddleware(appConfig.MetricsAPIKey), gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router.Group("/api/v1"), h, middleware.AuthMiddleware(appConfig.JWTSecret))

	log.Infof("Starting Hogar backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
