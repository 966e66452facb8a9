package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shoplite/internal/handlers"
	"shoplite/internal/middleware"
	"shoplite/internal/repositories"
	"shoplite/internal/services"
	"shoplite/internal/session"
	"shoplite/pkg/rabbitmq"
)

// Config is the process configuration, read from the environment.
type Config struct {
	AppPort       string
	CatalogSize   int
	CatalogDriver string
	DatabaseDSN   string
	RabbitMQURL   string
	SessionTTL    time.Duration
	LogLevel      string
}

func loadConfig(v *viper.Viper) Config {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("CATALOG_SIZE", 50)
	v.SetDefault("CATALOG_DRIVER", "memory")
	v.SetDefault("DATABASE_DSN", "file:shoplite.db")
	v.SetDefault("RABBITMQ_URL", "") // empty disables order events
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	return Config{
		AppPort:       v.GetString("APP_PORT"),
		CatalogSize:   v.GetInt("CATALOG_SIZE"),
		CatalogDriver: v.GetString("CATALOG_DRIVER"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// openProductRepository picks the catalog store named by CATALOG_DRIVER.
func openProductRepository(cfg Config) (repositories.ProductRepository, error) {
	var dialector gorm.Dialector
	switch cfg.CatalogDriver {
	case "", "memory":
		return repositories.NewInMemoryProductRepository(), nil
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown CATALOG_DRIVER %q", cfg.CatalogDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo := repositories.NewGORMProductRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// newApp wires the catalog, session store and handlers into a Fiber app.
// publisher may be nil, in which case orders emit no events.
func newApp(cfg Config, zl *zap.Logger, publisher services.OrderEventPublisher) (*fiber.App, *session.Store, error) {
	productRepo, err := openProductRepository(cfg)
	if err != nil {
		return nil, nil, err
	}

	catalogService := services.NewCatalogService(productRepo, zl)
	if err := catalogService.Seed(cfg.CatalogSize); err != nil {
		return nil, nil, err
	}
	orderService := services.NewOrderService(publisher, zl)
	store := session.NewStore(cfg.SessionTTL, zl)

	catalogHandler := handlers.NewCatalogHandler(catalogService, zl)
	cartHandler := handlers.NewCartHandler(catalogService, zl)
	orderHandler := handlers.NewOrderHandler(orderService, zl)

	app := fiber.New(fiber.Config{AppName: "shoplite"})
	app.Use(logger.New()) // Request logger

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"sessions": store.Len(),
			"events":   publisher != nil,
		})
	})

	apiV1 := app.Group("/api/v1")
	catalogHandler.RegisterRoutes(apiV1)

	shop := apiV1.Group("", middleware.SessionRequired(store, cfg.SessionTTL))
	cartHandler.RegisterRoutes(shop)
	orderHandler.RegisterRoutes(shop)

	return app, store, nil
}

func main() {
	cfg := loadConfig(viper.GetViper())

	zl, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	var publisher services.OrderEventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zl)
		if err != nil {
			zl.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeOrderEvents(handlers.NewOrderEventHandler(zl)); err != nil {
			zl.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
	} else {
		zl.Info("RABBITMQ_URL not set, order events disabled")
	}

	app, store, err := newApp(cfg, zl, publisher)
	if err != nil {
		zl.Fatal("failed to create app", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.SessionTTL > 0 {
		go store.RunJanitor(ctx, cfg.SessionTTL/4)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			zl.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down server")
	cancel()

	if err := app.Shutdown(); err != nil {
		zl.Error("error during Fiber shutdown", zap.Error(err))
	}
	zl.Info("server gracefully stopped")
}
