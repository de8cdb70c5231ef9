package app

import (
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ofertalia/internal/config"
	"ofertalia/internal/handlers"
	"ofertalia/internal/middleware"
	"ofertalia/internal/pdf"
	"ofertalia/internal/repositories"
	"ofertalia/internal/routes"
	"ofertalia/internal/services"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ofertalia/docs"
)

func Run() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		zap.S().Fatalw("database open failed", "err", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zap.S().Warnw("database close failed", "err", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	userService := services.NewUserService(userRepo, authService)
	notifier := services.NewNotifier(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.AdminEmail,
		cfg.Telegram.BotToken,
	)
	allocator := services.NewAllocatorService(userRepo)
	taskService := services.NewTaskService(taskRepo)
	leadService := services.NewLeadService(leadRepo, activityRepo, userRepo, allocator, taskService, notifier)

	pdfGen := pdf.NewDocumentGenerator(cfg.Files.RootDir, cfg.Files.FontPath)
	verificationService := services.NewVerificationService(
		leadService, pdfGen, services.ApprovalPolicy(cfg.Pipeline.ApprovalPolicy),
	)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	leadHandler := handlers.NewLeadHandler(leadService)
	verifyHandler := handlers.NewVerifyHandler(verificationService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.Metrics())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		[]byte(cfg.Auth.JWTSecret),
		authHandler,
		userHandler,
		leadHandler,
		verifyHandler,
		taskHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	zap.S().Infow("server listening", "addr", listenAddr, "approval_policy", cfg.Pipeline.ApprovalPolicy)
	if err := router.Run(listenAddr); err != nil {
		zap.S().Fatalw("server stopped", "err", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
