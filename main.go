package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/backend"
	"storefront/pkg/rabbitmq"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

var (
	verbose bool

	// sweep flags
	sweepOnce   bool
	sweepSource string
	backendURL  string
	token       string

	// seed flags
	seedProducts  int
	adminUser     string
	adminPassword string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API and order status sweeper",
	Long: `storefront serves the shop REST API (catalog, cart, wishlist, checkout,
order tracking and back-office) and advances order statuses every few minutes.

Run without arguments to start the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logger.With(zap.String("service", cfg.ServiceName))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API (and the status sweeper when SWEEP_ENABLED)",
	RunE:  runServe,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Advance order statuses",
	Long: `Recomputes the status of every order and writes back the users whose orders changed.

By default the database is swept directly. With --backend-url (or --source=api)
the sweep reads and patches users through that REST API instead, authenticating
with an admin --token.`,
	RunE: runSweep,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create an admin account and demo products",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	sweepCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run a single sweep and exit")
	sweepCmd.Flags().StringVar(&sweepSource, "source", "", "Where to read orders from: db or api (default api when --backend-url is set, else db)")
	sweepCmd.Flags().StringVar(&backendURL, "backend-url", "", "REST API base URL (default BACKEND_URL)")
	sweepCmd.Flags().StringVar(&token, "token", "", "Admin bearer token (default BACKEND_TOKEN)")

	seedCmd.Flags().IntVar(&seedProducts, "products", 20, "Number of demo products to create")
	seedCmd.Flags().StringVar(&adminUser, "admin-user", "admin", "Admin username")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "Admin password (required)")
	_ = seedCmd.MarkFlagRequired("admin-password")

	rootCmd.AddCommand(serveCmd, sweepCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return err
	}

	publisher, err := events.NewPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize %s publisher: %w", cfg.EventsDriver, err)
	}
	defer publisher.Close()

	statusCache, closeCache := openStatusCache(cfg)
	defer closeCache()

	app := newApp(cfg, db, publisher, statusCache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SweepEnabled {
		go app.sweeper.Run(ctx, cfg.SweepInterval)
	}

	if mq, ok := publisher.(*rabbitmq.Client); ok {
		if err := mq.ConsumeOrderEvents(cfg.ServiceName+"-audit", orderEventLogger(logger.Named("audit"))); err != nil {
			logger.Error("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.AppPort))
		errCh <- app.fiber.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	if err := app.fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	logger.Info("Server gracefully stopped")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	source := sweepSource
	if source == "" {
		source = "db"
		if backendURL != "" {
			source = "api"
		}
	}

	var store services.UserOrderStore
	switch source {
	case "db":
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
		if err != nil {
			return err
		}
		store = repositories.NewGORMUserRepository(db)
	case "api":
		client := backend.NewClient(backend.Config{
			BaseURL: firstNonEmpty(backendURL, cfg.BackendURL),
			Token:   firstNonEmpty(token, cfg.BackendToken),
			Timeout: cfg.BackendTimeout,
		})
		store = repositories.NewRESTUserRepository(client)
	default:
		return fmt.Errorf("unknown sweep source %q", source)
	}

	publisher, err := events.NewPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize %s publisher: %w", cfg.EventsDriver, err)
	}
	defer publisher.Close()

	statusCache, closeCache := openStatusCache(cfg)
	defer closeCache()

	sweeper := services.NewStatusSweeper(store, services.SweeperDeps{
		Cache:    statusCache,
		Events:   events.NewEmitter(publisher, cfg.ServiceName, logger.Named("events")),
		Location: cfg.Location,
		Logger:   logger.Named("sweeper"),
	})

	if sweepOnce {
		res := sweeper.Sweep()
		if res.Failed > 0 {
			return fmt.Errorf("sweep finished with %d failures", res.Failed)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sweeper.Run(ctx, cfg.SweepInterval)
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return err
	}

	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.JWTSecret, cfg.TokenTTL, logger)
	admin := &models.User{
		Username: adminUser,
		Email:    adminUser + "@storefront.local",
		Password: adminPassword,
		Role:     models.RoleAdmin,
	}
	switch err := authService.RegisterUser(admin); {
	case errors.Is(err, services.ErrAlreadyExists):
		logger.Info("Admin already exists", zap.String("username", adminUser))
	case err != nil:
		return err
	}

	repo := repositories.NewGORMProductRepository(db)
	for i := 0; i < seedProducts; i++ {
		p := fakeProduct()
		if err := repo.Create(&p); err != nil {
			logger.Error("Error seeding product", zap.String("title", p.Title), zap.Error(err))
			continue
		}
		logger.Debug("Seeded product", zap.String("product_id", p.ID), zap.String("title", p.Title))
	}
	logger.Info("Seed complete", zap.Int("products", seedProducts))
	return nil
}

func fakeProduct() models.Product {
	title := gofakeit.ProductName()
	if len(title) > 100 {
		title = title[:100]
	}
	return models.Product{
		Title:       title,
		Description: gofakeit.ProductDescription(),
		Brand:       gofakeit.Company(),
		Category:    gofakeit.ProductCategory(),
		SKU:         gofakeit.Regex("[A-Z]{3}-[0-9]{5}"),
		Unit:        "1 pc",
		Thumbnail:   gofakeit.URL(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		Discount:    float64(gofakeit.Number(0, 40)),
		Rating:      math.Round(gofakeit.Float64Range(1, 5)*10) / 10,
		Stock:       gofakeit.Number(0, 200),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
