package instruments

import (
	"marketdata-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the instrument registry.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes registers the instrument routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/instruments")
	group.Get("/", h.HandleList)
	group.Get("/:symbol", h.HandleGet)
}

// HandleList returns registered instruments.
// @Summary List instruments
// @Produce json
// @Param limit query int false "Maximum rows to return"
// @Success 200 {array} Instrument
// @Router /instruments [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	out, err := h.service.List(c.Context(), c.QueryInt("limit"))
	if err != nil {
		l.Error("Instrument list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(out)
}

// HandleGet returns one instrument by symbol.
// @Summary Get instrument
// @Produce json
// @Param symbol path string true "Canonical symbol"
// @Success 200 {object} Instrument
// @Failure 404 {object} map[string]string
// @Router /instruments/{symbol} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	symbol := c.Params("symbol")

	inst, err := h.service.Get(c.Context(), symbol)
	if err != nil {
		l.Error("Instrument lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if inst == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown instrument",
		})
	}
	return c.JSON(inst)
}
