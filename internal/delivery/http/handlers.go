package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aeroweather/backend/internal/analytics"
	"github.com/aeroweather/backend/internal/collector"
	"github.com/aeroweather/backend/internal/domain"
)

var validate = validator.New()

// Handler contains all HTTP handlers
type Handler struct {
	collector  *collector.Collector
	repo       domain.FlightRepository
	modelStore *analytics.ModelStore
}

// NewHandler creates a new handler
func NewHandler(c *collector.Collector, repo domain.FlightRepository, modelStore *analytics.ModelStore) *Handler {
	return &Handler{
		collector:  c,
		repo:       repo,
		modelStore: modelStore,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if err := h.repo.Health(c.Context()); err != nil {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":  status,
		"service": "aeroweather-backend",
		"version": "1.0.0",
	})
}

// CollectRequest is the body for triggering a collection run.
type CollectRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Force     bool   `json:"force"`
}

// Collect runs the collection pipeline for a date range.
func (h *Handler) Collect(c *fiber.Ctx) error {
	var req CollectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	summary, err := h.collector.Run(c.Context(), start, end, req.Force)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// GetFlights returns stored flight records, optionally range-filtered.
func (h *Handler) GetFlights(c *fiber.Ctx) error {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	records, err := h.repo.Query(c.Context(), from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch flight records")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(records),
		"data":    records,
	})
}

// GetAnalysis returns correlation and severity statistics over stored data.
// With no stored data it reports an empty result instead of failing, so the
// dashboard can show its "no data" state.
func (h *Handler) GetAnalysis(c *fiber.Ctx) error {
	records, err := h.repo.Query(c.Context(), time.Time{}, time.Time{})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch flight records")
	}
	if len(records) == 0 {
		return c.JSON(fiber.Map{
			"success": false,
			"message": "no data",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    analytics.Analyze(records),
	})
}

// TrainModel retrains the delay model on all stored data.
func (h *Handler) TrainModel(c *fiber.Ctx) error {
	records, err := h.repo.Query(c.Context(), time.Time{}, time.Time{})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch flight records")
	}

	model, err := h.modelStore.Retrain(records)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"metrics":            model.Metrics,
			"feature_importance": model.Importances,
			"trained_at":         model.TrainedAt,
		},
	})
}

// GetModel returns the current model's metrics and importance ranking.
func (h *Handler) GetModel(c *fiber.Ctx) error {
	model, err := h.modelStore.Current()
	if err != nil {
		return c.JSON(fiber.Map{
			"success": false,
			"message": "no trained model available; train first",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"metrics":            model.Metrics,
			"feature_importance": model.Importances,
			"trained_at":         model.TrainedAt,
		},
	})
}

// Predict returns a delay estimate with confidence bounds for given weather
// inputs.
func (h *Handler) Predict(c *fiber.Ctx) error {
	var req domain.PredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	model, err := h.modelStore.Current()
	if err != nil {
		return c.JSON(fiber.Map{
			"success": false,
			"message": "no trained model available; train first",
		})
	}

	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	prediction := model.Predict(*req.Temperature, *req.Precipitation, date)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    prediction,
	})
}

func parseDateQuery(c *fiber.Ctx, key string) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+" date; use YYYY-MM-DD")
	}
	return t, nil
}
