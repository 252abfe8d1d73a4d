package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabeshpress/order-panel/internal/catalog"
	"github.com/tabeshpress/order-panel/internal/config"
	"github.com/tabeshpress/order-panel/internal/db"
	"github.com/tabeshpress/order-panel/internal/handlers"
	"github.com/tabeshpress/order-panel/internal/middleware"
	"github.com/tabeshpress/order-panel/internal/models"
	"github.com/tabeshpress/order-panel/internal/realtime"
	"github.com/tabeshpress/order-panel/internal/services/orders"
	"github.com/tabeshpress/order-panel/internal/services/sms"
	"github.com/tabeshpress/order-panel/internal/utils"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	gormDB, err := db.Connect(cfg.DBDSN, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderFile{},
		&models.Setting{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	if err := bootstrapAdmin(gormDB, cfg, logger); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	store := catalog.NewStore(gormDB, rdb, cfg.FormConfigTTL, logger)

	hub := realtime.NewHub()
	go hub.Run()

	smsSvc := sms.New(cfg.SMSBaseURL, cfg.SMSAPIKey, cfg.SMSSender, logger)
	orderSvc := orders.NewService(gormDB, store, smsSvc, hub, logger)

	authHandler := handlers.NewAuthHandler(gormDB, cfg.JWTSecret, cfg.JWTExpiresMin, logger)
	customerHandler := handlers.NewCustomerHandler(gormDB, smsSvc, logger)
	orderHandler := handlers.NewOrderHandler(gormDB, store, orderSvc, hub, logger)
	fileHandler := handlers.NewFileHandler(gormDB, hub, cfg.UploadDir, logger)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret, logger)

	app := fiber.New(fiber.Config{
		AppName:   "tabesh-order-panel",
		BodyLimit: 100 * 1024 * 1024, // book PDFs get large
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)

	protected := api.Group("", middleware.JWTFromCookie(cfg.JWTSecret), middleware.AttachJWTLocals())
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/form-config", orderHandler.FormConfig)
	protected.Post("/calculate-price", orderHandler.CalculatePrice)
	protected.Post("/orders/:id/files", fileHandler.Upload)
	protected.Get("/download-file/:id", fileHandler.Download)

	admin := protected.Group("/admin", middleware.RequireRoles(string(models.RoleAdmin)))
	admin.Get("/search-customers", customerHandler.Search)
	admin.Post("/create-customer", customerHandler.Create)
	admin.Get("/form-config", orderHandler.FormConfig)
	admin.Get("/settings", orderHandler.GetSettings)
	admin.Put("/settings", orderHandler.UpdateSettings)
	admin.Post("/submit-order", orderHandler.Submit)
	admin.Get("/orders", orderHandler.List)
	admin.Get("/orders/export", orderHandler.Export)
	admin.Get("/orders/:id", orderHandler.Get)
	admin.Patch("/orders/:id/status", orderHandler.UpdateStatus)
	admin.Get("/files", fileHandler.List)
	admin.Post("/approve-file/:id", fileHandler.Approve)
	admin.Post("/reject-file/:id", fileHandler.Reject)
	admin.Delete("/files/:id", fileHandler.Delete)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/admin", websocket.New(wsHandler.Serve))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.AppPort))

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// bootstrapAdmin creates the first admin account from env so a fresh install
// can be logged into. Does nothing when any admin already exists.
func bootstrapAdmin(gormDB *gorm.DB, cfg *config.Config, logger *zap.Logger) error {
	if cfg.AdminMobile == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := gormDB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		FirstName: "Admin",
		Mobile:    utils.NormalizeDigits(cfg.AdminMobile),
		Password:  hashed,
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := gormDB.Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	logger.Info("bootstrap admin created", zap.String("mobile", admin.Mobile))
	return nil
}
