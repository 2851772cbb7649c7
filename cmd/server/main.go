package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aeroweather/backend/internal/analytics"
	"github.com/aeroweather/backend/internal/collector"
	"github.com/aeroweather/backend/internal/config"
	httpapi "github.com/aeroweather/backend/internal/delivery/http"
	"github.com/aeroweather/backend/internal/domain"
	"github.com/aeroweather/backend/internal/repository/memory"
	"github.com/aeroweather/backend/internal/repository/postgres"
	"github.com/aeroweather/backend/internal/scheduler"
	"github.com/aeroweather/backend/internal/simulator"
	"github.com/aeroweather/backend/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Database connection; without one we fall back to in-memory storage.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo domain.FlightRepository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			log.Println("Running with in-memory storage only")
			repo = memory.NewFlightRepository()
		} else {
			defer pool.Close()
			log.Println("Connected to PostgreSQL")
			repo = postgres.NewFlightRepository(pool)
		}
	} else {
		log.Println("DATABASE_URL not set; running with in-memory storage only")
		repo = memory.NewFlightRepository()
	}

	// Dependency Injection: gateway, simulator, collector, model store.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gateway := weather.NewGateway(httpClient, cfg.WeatherBaseURL)
	sim := simulator.New(nil)
	coll := collector.New(gateway, sim, repo)
	modelStore := analytics.NewModelStore(cfg.ModelPath)

	if cfg.ForceReinit {
		log.Println("FORCE_REINIT set; reinitializing flight table")
		if err := repo.InitSchema(ctx); err != nil {
			log.Fatalf("failed to initialize schema: %v", err)
		}
	}

	if cfg.InitHistorical {
		existing, err := repo.Query(ctx, time.Time{}, time.Time{})
		if err != nil {
			log.Printf("Warning: could not check for existing data: %v", err)
		} else if len(existing) == 0 {
			log.Println("INIT_HISTORICAL set and table empty; collecting trailing year")
			histCtx, histCancel := context.WithTimeout(context.Background(), 2*time.Hour)
			if _, err := coll.InitializeHistorical(histCtx, false); err != nil {
				log.Printf("Warning: historical initialization failed: %v", err)
			}
			histCancel()
		}
	}

	if cfg.RetrainOnStart {
		records, err := repo.Query(ctx, time.Time{}, time.Time{})
		if err != nil {
			log.Printf("Warning: could not load records for retraining: %v", err)
		} else if _, err := modelStore.Retrain(records); err != nil {
			log.Printf("Warning: startup retrain failed: %v", err)
		}
	}

	// Daily collection trigger.
	if cfg.ScheduleEnabled {
		sched := scheduler.New(coll)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "AeroWeather API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	httpapi.SetupRoutes(app, coll, repo, modelStore)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
