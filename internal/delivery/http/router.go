package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aeroweather/backend/internal/analytics"
	"github.com/aeroweather/backend/internal/collector"
	"github.com/aeroweather/backend/internal/domain"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, c *collector.Collector, repo domain.FlightRepository, modelStore *analytics.ModelStore) {
	handler := NewHandler(c, repo, modelStore)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Collection pipeline
		api.Post("/collect", handler.Collect)

		// Stored flight records and statistics
		api.Get("/flights", handler.GetFlights)
		api.Get("/analysis", handler.GetAnalysis)

		// Prediction model
		api.Post("/model/train", handler.TrainModel)
		api.Get("/model", handler.GetModel)
		api.Post("/predict", handler.Predict)
	}
}
