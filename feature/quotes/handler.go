package quotes

import (
	"marketdata-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for quotes.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes registers the quote routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/quotes")
	group.Get("/:symbol", h.HandleGet)
	group.Post("/refresh", h.HandleRefresh)
}

// HandleGet returns the latest stored quote for a symbol.
// @Summary Get latest quote
// @Produce json
// @Param symbol path string true "Canonical symbol"
// @Success 200 {object} Quote
// @Failure 404 {object} map[string]string
// @Router /quotes/{symbol} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	symbol := c.Params("symbol")

	q, err := h.service.Latest(c.Context(), symbol)
	if err != nil {
		l.Error("Quote lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if q == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no quote for symbol",
		})
	}
	return c.JSON(q)
}

// RefreshRequest is the body for a quote refresh.
type RefreshRequest struct {
	// Symbols lists the symbols to load.
	Symbols []string `json:"symbols"`
	// Force bypasses the response cache.
	Force bool `json:"force"`
}

// HandleRefresh runs a quote batch for the requested symbols.
// @Summary Refresh quotes
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Symbols to load"
// @Success 200 {object} map[string]interface{}
// @Router /quotes/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if len(req.Symbols) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "symbols is required",
		})
	}

	run, err := h.service.Load(c.Context(), req.Symbols, req.Force)
	if err != nil && run == nil {
		l.Error("Quote refresh failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Warn("Quote refresh finished with errors", zap.String("run_id", run.ID), zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"run_id":    run.ID,
		"state":     run.State,
		"succeeded": run.Succeeded,
		"failed":    run.Failed,
		"skipped":   run.Skipped,
	})
}
