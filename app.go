package main

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application is the wired HTTP API plus the background sweeper it shares state with.
type application struct {
	fiber   *fiber.App
	sweeper *services.StatusSweeper
}

// newApp wires repositories, services and handlers over db.
func newApp(cfg *config.Config, db *gorm.DB, publisher events.Publisher, statusCache cache.StatusCache, logger *zap.Logger) *application {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	cardRepo := repositories.NewGORMCardRepository(db)

	// --- Services ---
	emitter := events.NewEmitter(publisher, cfg.ServiceName, logger.Named("events"))
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger.Named("auth"))
	productService := services.NewProductService(productRepo, logger.Named("products"))
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Orders:    orderRepo,
		Carts:     cartRepo,
		Products:  productRepo,
		Addresses: addressRepo,
		Cache:     statusCache,
		Events:    emitter,
		Location:  cfg.Location,
		Logger:    logger.Named("orders"),
	})
	sweeper := services.NewStatusSweeper(userRepo, services.SweeperDeps{
		Cache:    statusCache,
		Events:   emitter,
		Location: cfg.Location,
		Logger:   logger.Named("sweeper"),
	})

	// --- Handlers ---
	validate := handlers.NewValidator()
	hlog := logger.Named("http")

	app := fiber.New(fiber.Config{AppName: cfg.ServiceName})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "up"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "down"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"events":   cfg.EventsDriver,
		})
	})

	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService, hlog)

	handlers.NewAuthHandler(authService, validate, hlog).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, validate, hlog).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(orderService, validate, hlog).RegisterRoutes(apiV1, auth)
	handlers.NewCartHandler(
		services.NewCartService(cartRepo, productRepo),
		services.NewWishlistService(wishlistRepo, productRepo),
		validate, hlog,
	).RegisterRoutes(apiV1, auth)
	handlers.NewProfileHandler(services.NewProfileService(userRepo, addressRepo, cardRepo, logger.Named("profile")), validate, hlog).RegisterRoutes(apiV1, auth)
	handlers.NewUserHandler(services.NewUserService(userRepo, statusCache, logger.Named("users")), hlog).RegisterRoutes(apiV1, auth)
	handlers.NewAdminHandler(services.NewAdminService(userRepo, orderRepo, productRepo), sweeper, hlog).RegisterRoutes(apiV1, auth)

	return &application{fiber: app, sweeper: sweeper}
}

// orderEventLogger returns a queue handler that records every order event it receives.
func orderEventLogger(logger *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var env events.Envelope
		if err := json.Unmarshal(msg.Body, &env); err != nil {
			return fmt.Errorf("decode event envelope: %w", err)
		}
		var p events.OrderPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.EventType, err)
		}
		logger.Info("Order event",
			zap.String("event_id", env.EventID),
			zap.String("event_type", env.EventType),
			zap.String("order_id", p.OrderID),
			zap.String("user_id", p.UserID),
			zap.String("status", string(p.Status)),
			zap.String("prev_status", string(p.PrevStatus)))
		return nil
	}
}

// openStatusCache returns the redis cache when REDIS_ADDR is set and a no-op cache otherwise.
func openStatusCache(cfg *config.Config) (cache.StatusCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}
	rdb := cache.NewRedisClient(cfg.RedisAddr)
	return cache.NewRedisStatusCache(rdb, cfg.StatusCacheTTL), func() { _ = rdb.Close() }
}
